package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/hbnb-api/internal/validate"
)

func fields(t *testing.T, err error) []string {
	t.Helper()
	var errs validate.Errs
	require.True(t, errors.As(err, &errs), "want validate.Errs, got %v", err)
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestUserValidate(t *testing.T) {
	u := User{Email: "alice@example.com", FirstName: "Alice", LastName: "Smith"}
	assert.NoError(t, u.Validate())

	u = User{Email: "not-an-email", FirstName: "A", LastName: strings.Repeat("x", NameMaxLen+1)}
	assert.ElementsMatch(t, []string{"email", "first_name", "last_name"}, fields(t, u.Validate()))

	errs := u.FieldErrs()
	errs.Add(ValidatePassword("123"))
	assert.Len(t, errs, 4)
	assert.Empty(t, User{Email: "a@b.io", FirstName: "Al", LastName: "Bo"}.FieldErrs())

	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestValidatePassword(t *testing.T) {
	assert.NotNil(t, ValidatePassword(""))
	assert.NotNil(t, ValidatePassword("12345"))
	assert.Nil(t, ValidatePassword("123456"))
	assert.NotNil(t, ValidatePassword(strings.Repeat("p", PasswordMaxLen+1)))
}

func TestUserJSONOmitsHash(t *testing.T) {
	b, err := json.Marshal(User{ID: "u1", Email: "a@b.io", PasswordHash: "$2a$10$secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "password")
}

func TestUserPatchTouchesCredentials(t *testing.T) {
	name := "Al"
	admin := true
	assert.False(t, UserPatch{FirstName: &name}.TouchesCredentials())
	assert.True(t, UserPatch{IsAdmin: &admin}.TouchesCredentials())
}

func TestNewPlaceBuild(t *testing.T) {
	_, err := NewPlace{Title: "Loft"}.Build()
	assert.ElementsMatch(t, []string{"price", "latitude", "longitude"}, fields(t, err))

	price, lat, lng := 120.0, 48.85, 2.35
	p, err := NewPlace{Title: "  Loft  ", Price: &price, Latitude: &lat, Longitude: &lng, OwnerID: "u1"}.Build()
	require.NoError(t, err)
	assert.Equal(t, "Loft", p.Title)

	zero := 0.0
	_, err = NewPlace{Title: "Loft", Price: &zero, Latitude: &lat, Longitude: &lng, OwnerID: "u1"}.Build()
	assert.Equal(t, []string{"price"}, fields(t, err))
}

func TestPlacePatchApply(t *testing.T) {
	p := Place{Title: "Loft", Price: 10, Latitude: 1, Longitude: 1, OwnerID: "u1"}
	lat := 91.0
	_, err := PlacePatch{Latitude: &lat}.Apply(p)
	assert.Equal(t, []string{"latitude"}, fields(t, err))

	title := "Sea view"
	got, err := PlacePatch{Title: &title}.Apply(p)
	require.NoError(t, err)
	assert.Equal(t, "Sea view", got.Title)
	assert.Equal(t, 10.0, got.Price)
}

func TestNewPlaceDetail(t *testing.T) {
	d := NewPlaceDetail(Place{ID: "p1"}, User{ID: "u1", Email: "a@b.io", PasswordHash: "h"}, nil, nil)
	assert.NotNil(t, d.Amenities)
	assert.NotNil(t, d.Reviews)
	assert.Zero(t, d.AverageRating)
	assert.Equal(t, "u1", d.Owner.ID)

	d = NewPlaceDetail(Place{ID: "p1"}, User{}, nil, []Review{{Rating: 5}, {Rating: 4}, {Rating: 4}})
	assert.Equal(t, 3, d.ReviewsCount)
	assert.Equal(t, 4.3, d.AverageRating)
}

func TestReviewPatchApply(t *testing.T) {
	r := NewReview{Text: " nice ", Rating: 4, PlaceID: "p1", UserID: "u1"}.Build()
	assert.Equal(t, "nice", r.Text)
	require.NoError(t, r.Validate())

	zero := 0
	_, err := ReviewPatch{Rating: &zero}.Apply(r)
	assert.Equal(t, []string{"rating"}, fields(t, err))
}

func TestAmenityBuild(t *testing.T) {
	a, err := NewAmenity{Name: " WiFi "}.Build()
	require.NoError(t, err)
	assert.Equal(t, "WiFi", a.Name)

	_, err = NewAmenity{Name: "x"}.Build()
	assert.Equal(t, []string{"name"}, fields(t, err))
}

func TestPlaceFilter(t *testing.T) {
	p := Place{Title: "Sea View Loft", Price: 100}
	assert.True(t, PlaceFilter{}.Match(p))
	assert.True(t, PlaceFilter{Query: " view "}.Match(p))
	assert.False(t, PlaceFilter{Query: "cabin"}.Match(p))

	hundred, fifty := 100.0, 50.0
	assert.True(t, PlaceFilter{MinPrice: &hundred, MaxPrice: &hundred}.Match(p), "bounds are inclusive")
	assert.False(t, PlaceFilter{MaxPrice: &fifty}.Match(p))

	assert.NoError(t, PlaceFilter{MinPrice: &fifty, MaxPrice: &hundred}.Validate())
	assert.Equal(t, []string{"max_price"}, fields(t, PlaceFilter{MinPrice: &hundred, MaxPrice: &fifty}.Validate()))
	neg := -1.0
	assert.Equal(t, []string{"min_price"}, fields(t, PlaceFilter{MinPrice: &neg}.Validate()))
}
