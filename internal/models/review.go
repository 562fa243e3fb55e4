package models

import (
	"strings"
	"time"

	"github.com/baharkarakas/hbnb-api/internal/validate"
)

const (
	RatingMin = 1
	RatingMax = 5
)

type Review struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	UserID    string    `json:"user_id"`
	PlaceID   string    `json:"place_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r Review) Validate() error {
	var errs validate.Errs
	errs.Add(validate.Required("text", r.Text))
	errs.Add(validate.IntRange("rating", int64(r.Rating), RatingMin, RatingMax))
	errs.Add(validate.Required("user_id", r.UserID))
	errs.Add(validate.Required("place_id", r.PlaceID))
	return errs.Err()
}

type NewReview struct {
	Text    string `json:"text"`
	Rating  int    `json:"rating"`
	PlaceID string `json:"place_id"`
	UserID  string `json:"user_id"`
}

func (n NewReview) Build() Review {
	return Review{
		Text:    strings.TrimSpace(n.Text),
		Rating:  n.Rating,
		UserID:  n.UserID,
		PlaceID: n.PlaceID,
	}
}

type ReviewPatch struct {
	Text   *string `json:"text,omitempty"`
	Rating *int    `json:"rating,omitempty"`
}

func (rp ReviewPatch) Apply(r Review) (Review, error) {
	if rp.Text != nil {
		r.Text = strings.TrimSpace(*rp.Text)
	}
	if rp.Rating != nil {
		r.Rating = *rp.Rating
	}
	return r, r.Validate()
}
