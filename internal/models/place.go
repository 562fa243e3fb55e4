package models

import (
	"math"
	"strings"
	"time"

	"github.com/baharkarakas/hbnb-api/internal/validate"
)

const (
	TitleMinLen = 3
	TitleMaxLen = 100
)

type Place struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p Place) Validate() error {
	var errs validate.Errs
	errs.Add(validate.Length("title", p.Title, TitleMinLen, TitleMaxLen))
	errs.Add(validate.Positive("price", p.Price))
	errs.Add(validate.FloatRange("latitude", p.Latitude, -90, 90))
	errs.Add(validate.FloatRange("longitude", p.Longitude, -180, 180))
	errs.Add(validate.Required("owner_id", p.OwnerID))
	return errs.Err()
}

// PlaceSummary is the list projection.
type PlaceSummary struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p Place) Summary() PlaceSummary {
	return PlaceSummary{ID: p.ID, Title: p.Title, Latitude: p.Latitude, Longitude: p.Longitude}
}

// PlaceDetail is the by-id view with relationships resolved.
type PlaceDetail struct {
	Place
	Owner         UserSummary `json:"owner"`
	Amenities     []Amenity   `json:"amenities"`
	Reviews       []Review    `json:"reviews"`
	ReviewsCount  int         `json:"reviews_count"`
	AverageRating float64     `json:"average_rating"`
}

func NewPlaceDetail(p Place, owner User, amenities []Amenity, reviews []Review) PlaceDetail {
	if amenities == nil {
		amenities = []Amenity{}
	}
	if reviews == nil {
		reviews = []Review{}
	}
	d := PlaceDetail{
		Place:        p,
		Owner:        owner.Summary(),
		Amenities:    amenities,
		Reviews:      reviews,
		ReviewsCount: len(reviews),
	}
	if len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.Rating
		}
		d.AverageRating = math.Round(float64(total)/float64(len(reviews))*10) / 10
	}
	return d
}

// NewPlace carries creation input. Pointers mark the required numeric
// fields so a missing key is distinguishable from zero.
type NewPlace struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	OwnerID     string   `json:"owner_id"`
	AmenityIDs  []string `json:"amenities"`
}

// Build checks required keys and returns the place to validate.
func (n NewPlace) Build() (Place, error) {
	var errs validate.Errs
	errs.Add(validate.Required("title", n.Title))
	if n.Price == nil {
		errs.Add(&validate.ErrField{Field: "price", Msg: "required"})
	}
	if n.Latitude == nil {
		errs.Add(&validate.ErrField{Field: "latitude", Msg: "required"})
	}
	if n.Longitude == nil {
		errs.Add(&validate.ErrField{Field: "longitude", Msg: "required"})
	}
	if err := errs.Err(); err != nil {
		return Place{}, err
	}
	p := Place{
		Title:       strings.TrimSpace(n.Title),
		Description: strings.TrimSpace(n.Description),
		Price:       *n.Price,
		Latitude:    *n.Latitude,
		Longitude:   *n.Longitude,
		OwnerID:     n.OwnerID,
	}
	return p, p.Validate()
}

// PlacePatch is a partial update. A non-nil AmenityIDs replaces the whole set.
type PlacePatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	AmenityIDs  *[]string `json:"amenities,omitempty"`
}

// Apply returns p with the patch applied and revalidated.
func (pp PlacePatch) Apply(p Place) (Place, error) {
	if pp.Title != nil {
		p.Title = strings.TrimSpace(*pp.Title)
	}
	if pp.Description != nil {
		p.Description = strings.TrimSpace(*pp.Description)
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Latitude != nil {
		p.Latitude = *pp.Latitude
	}
	if pp.Longitude != nil {
		p.Longitude = *pp.Longitude
	}
	return p, p.Validate()
}

// PlaceFilter narrows the place list. The zero value matches every place.
type PlaceFilter struct {
	Query    string   // case-insensitive title substring
	MinPrice *float64 // inclusive
	MaxPrice *float64 // inclusive
}

func (f PlaceFilter) Validate() error {
	var errs validate.Errs
	bounds := []struct {
		field string
		v     *float64
	}{{"min_price", f.MinPrice}, {"max_price", f.MaxPrice}}
	for _, b := range bounds {
		if b.v != nil && (math.IsNaN(*b.v) || *b.v < 0) {
			errs.Add(&validate.ErrField{Field: b.field, Msg: "must be >= 0"})
		}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		errs.Add(&validate.ErrField{Field: "max_price", Msg: "must be >= min_price"})
	}
	return errs.Err()
}

func (f PlaceFilter) Match(p Place) bool {
	if q := strings.TrimSpace(f.Query); q != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(q)) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}
