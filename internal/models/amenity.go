package models

import (
	"strings"
	"time"

	"github.com/baharkarakas/hbnb-api/internal/validate"
)

const (
	AmenityNameMinLen = 2
	AmenityNameMaxLen = 50
)

type Amenity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a Amenity) Validate() error {
	var errs validate.Errs
	errs.Add(validate.Length("name", a.Name, AmenityNameMinLen, AmenityNameMaxLen))
	return errs.Err()
}

type NewAmenity struct {
	Name string `json:"name"`
}

func (n NewAmenity) Build() (Amenity, error) {
	a := Amenity{Name: strings.TrimSpace(n.Name)}
	return a, a.Validate()
}

type AmenityPatch struct {
	Name *string `json:"name,omitempty"`
}

func (ap AmenityPatch) Apply(a Amenity) (Amenity, error) {
	if ap.Name != nil {
		a.Name = strings.TrimSpace(*ap.Name)
	}
	return a, a.Validate()
}
