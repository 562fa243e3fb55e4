package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/baharkarakas/hbnb-api/internal/auth"
	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/baharkarakas/hbnb-api/internal/policy"
	repo "github.com/baharkarakas/hbnb-api/internal/repository"
	"github.com/baharkarakas/hbnb-api/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	ctx   context.Context
	store *memory.Store
	c     *Catalog
	admin policy.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	c := NewCatalog(store, auth.NewBcryptHasher(bcrypt.MinCost), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	admin, err := c.EnsureAdmin(ctx, "admin@example.com", "admin-pass")
	require.NoError(t, err)
	return &fixture{ctx: ctx, store: store, c: c, admin: actorOf(admin)}
}

func actorOf(u models.User) policy.Actor {
	return policy.Actor{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}

func (f *fixture) user(t *testing.T, email string) policy.Actor {
	t.Helper()
	u, err := f.c.CreateUser(f.ctx, f.admin, models.NewUser{Email: email, Password: "secret1", FirstName: "Test", LastName: "User"})
	require.NoError(t, err)
	return actorOf(u)
}

func fp(v float64) *float64 { return &v }
func sp(v string) *string   { return &v }
func ip(v int) *int         { return &v }

func (f *fixture) place(t *testing.T, owner policy.Actor) models.PlaceDetail {
	t.Helper()
	d, err := f.c.CreatePlace(f.ctx, owner, models.NewPlace{Title: "Sea view", Price: fp(100), Latitude: fp(10), Longitude: fp(20)})
	require.NoError(t, err)
	return d
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.Is(err, kind), "want %v, got %v", kind, err)
}

func TestRegister_RejectsInvalidEmail(t *testing.T) {
	f := newFixture(t)
	for _, email := range []string{"", "plain", "a@b", "a@b.c", "spaces in@example.com", "@example.com"} {
		_, err := f.c.Register(f.ctx, models.NewUser{Email: email, Password: "secret1", FirstName: "Al", LastName: "Ice"})
		requireKind(t, err, ErrValidation)
	}
	users, err := f.c.ListUsers(f.ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1, "only the seeded admin exists")
}

func TestRegister_ValidationDetails(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.Register(f.ctx, models.NewUser{Email: "x@example.com", Password: "123", FirstName: "A", LastName: ""})
	var se *Error
	require.ErrorAs(t, err, &se)
	fields := map[string]bool{}
	for _, ef := range se.Fields {
		fields[ef.Field] = true
	}
	assert.True(t, fields["password"])
	assert.True(t, fields["first_name"])
	assert.True(t, fields["last_name"])
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	u, err := f.c.Register(f.ctx, models.NewUser{Email: "  Alice@Example.com ", Password: "secret1", FirstName: "Alice", LastName: "Doe"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, err = f.c.Register(f.ctx, models.NewUser{Email: "ALICE@example.com", Password: "secret2", FirstName: "Alice", LastName: "Two"})
	requireKind(t, err, ErrDuplicate)
}

func TestCreateUser_AdminOnly(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")

	_, err := f.c.CreateUser(f.ctx, alice, models.NewUser{Email: "bob@example.com", Password: "secret1", FirstName: "Bob", LastName: "Doe"})
	requireKind(t, err, ErrPermissionDenied)
	_, err = f.c.CreateUser(f.ctx, policy.Actor{}, models.NewUser{Email: "bob@example.com", Password: "secret1", FirstName: "Bob", LastName: "Doe"})
	requireKind(t, err, ErrPermissionDenied)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	f := newFixture(t)
	again, err := f.c.EnsureAdmin(f.ctx, "ADMIN@example.com", "other-pass")
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, again.ID)

	alice := f.user(t, "alice@example.com")
	promoted, err := f.c.EnsureAdmin(f.ctx, "alice@example.com", "ignored")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, promoted.ID)
	assert.True(t, promoted.IsAdmin)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice@example.com")

	u, err := f.c.Authenticate(f.ctx, " Alice@example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "alice@example.com", u.Email)

	u, err = f.c.Authenticate(f.ctx, "alice@example.com", "wrong")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = f.c.Authenticate(f.ctx, "nobody@example.com", "secret1")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUpdateUser_SelfLimited(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")

	u, err := f.c.UpdateUser(f.ctx, alice, alice.ID, models.UserPatch{FirstName: sp("Alicia")})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", u.FirstName)

	_, err = f.c.UpdateUser(f.ctx, alice, alice.ID, models.UserPatch{Email: sp("x@y.com")})
	requireKind(t, err, ErrPermissionDenied)
	_, err = f.c.UpdateUser(f.ctx, alice, alice.ID, models.UserPatch{Password: sp("newpass1")})
	requireKind(t, err, ErrPermissionDenied)
	yes := true
	_, err = f.c.UpdateUser(f.ctx, alice, alice.ID, models.UserPatch{IsAdmin: &yes})
	requireKind(t, err, ErrPermissionDenied)

	got, err := f.c.GetUser(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.False(t, got.IsAdmin)
}

func TestUpdateUser_StrangerAndMissing(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	_, err := f.c.UpdateUser(f.ctx, bob, alice.ID, models.UserPatch{FirstName: sp("Hacked")})
	requireKind(t, err, ErrPermissionDenied)
	_, err = f.c.UpdateUser(f.ctx, f.admin, "missing", models.UserPatch{FirstName: sp("Who")})
	requireKind(t, err, ErrNotFound)
}

func TestUpdateUser_AdminFull(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	f.user(t, "bob@example.com")

	_, err := f.c.UpdateUser(f.ctx, f.admin, alice.ID, models.UserPatch{Email: sp("BOB@example.com")})
	requireKind(t, err, ErrDuplicate)

	// re-saving the same address is not a collision
	_, err = f.c.UpdateUser(f.ctx, f.admin, alice.ID, models.UserPatch{Email: sp("alice@example.com")})
	require.NoError(t, err)

	u, err := f.c.UpdateUser(f.ctx, f.admin, alice.ID, models.UserPatch{Email: sp("Alice.New@Example.com"), Password: sp("brand-new")})
	require.NoError(t, err)
	assert.Equal(t, "alice.new@example.com", u.Email)

	got, err := f.c.Authenticate(f.ctx, "alice.new@example.com", "brand-new")
	require.NoError(t, err)
	require.NotNil(t, got)

	_, err = f.c.UpdateUser(f.ctx, f.admin, alice.ID, models.UserPatch{Password: sp("123")})
	requireKind(t, err, ErrValidation)
	_, err = f.c.UpdateUser(f.ctx, f.admin, alice.ID, models.UserPatch{Email: sp("not-an-email")})
	requireKind(t, err, ErrValidation)
}

func TestCreatePlace_NonAdminOwnerIsCoerced(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	d, err := f.c.CreatePlace(f.ctx, alice, models.NewPlace{
		Title: "Loft", Price: fp(50), Latitude: fp(1), Longitude: fp(2), OwnerID: bob.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, d.OwnerID)
	assert.Equal(t, alice.ID, d.Owner.ID)

	stored, err := f.c.GetPlace(f.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, stored.OwnerID)
}

func TestCreatePlace_Admin(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")

	d, err := f.c.CreatePlace(f.ctx, f.admin, models.NewPlace{Title: "For Alice", Price: fp(5), Latitude: fp(0), Longitude: fp(0), OwnerID: alice.ID})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, d.OwnerID)

	d, err = f.c.CreatePlace(f.ctx, f.admin, models.NewPlace{Title: "Mine", Price: fp(5), Latitude: fp(0), Longitude: fp(0)})
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, d.OwnerID)

	_, err = f.c.CreatePlace(f.ctx, f.admin, models.NewPlace{Title: "Ghost", Price: fp(5), Latitude: fp(0), Longitude: fp(0), OwnerID: "ghost"})
	requireKind(t, err, ErrValidation)
}

func TestCreatePlace_Validation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")

	cases := map[string]models.NewPlace{
		"missing price":    {Title: "Loft", Latitude: fp(0), Longitude: fp(0)},
		"zero price":       {Title: "Loft", Price: fp(0), Latitude: fp(0), Longitude: fp(0)},
		"latitude too big": {Title: "Loft", Price: fp(1), Latitude: fp(91), Longitude: fp(0)},
		"longitude small":  {Title: "Loft", Price: fp(1), Latitude: fp(0), Longitude: fp(-181)},
		"short title":      {Title: " ab ", Price: fp(1), Latitude: fp(0), Longitude: fp(0)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.c.CreatePlace(f.ctx, alice, in)
			requireKind(t, err, ErrValidation)
		})
	}

	_, err := f.c.CreatePlace(f.ctx, policy.Actor{}, models.NewPlace{Title: "Loft", Price: fp(1), Latitude: fp(0), Longitude: fp(0)})
	requireKind(t, err, ErrPermissionDenied)

	places, err := f.c.ListPlaces(f.ctx, models.PlaceFilter{})
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestCreatePlace_IgnoresUnknownAmenities(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	wifi, err := f.c.CreateAmenity(f.ctx, f.admin, models.NewAmenity{Name: "WiFi"})
	require.NoError(t, err)

	d, err := f.c.CreatePlace(f.ctx, alice, models.NewPlace{
		Title: "Loft", Price: fp(1), Latitude: fp(0), Longitude: fp(0),
		AmenityIDs: []string{wifi.ID, "does-not-exist"},
	})
	require.NoError(t, err)
	require.Len(t, d.Amenities, 1)
	assert.Equal(t, wifi.ID, d.Amenities[0].ID)
}

func TestUpdatePlace(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	p := f.place(t, alice)

	_, err := f.c.UpdatePlace(f.ctx, bob, p.ID, models.PlacePatch{Title: sp("Stolen")})
	requireKind(t, err, ErrPermissionDenied)
	_, err = f.c.UpdatePlace(f.ctx, policy.Actor{}, p.ID, models.PlacePatch{Title: sp("Stolen")})
	requireKind(t, err, ErrPermissionDenied)
	unchanged, err := f.c.GetPlace(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sea view", unchanged.Title)

	_, err = f.c.UpdatePlace(f.ctx, alice, p.ID, models.PlacePatch{Price: fp(-1)})
	requireKind(t, err, ErrValidation)
	_, err = f.c.UpdatePlace(f.ctx, alice, "missing", models.PlacePatch{})
	requireKind(t, err, ErrNotFound)

	wifi, err := f.c.CreateAmenity(f.ctx, f.admin, models.NewAmenity{Name: "WiFi"})
	require.NoError(t, err)
	pool, err := f.c.CreateAmenity(f.ctx, f.admin, models.NewAmenity{Name: "Pool"})
	require.NoError(t, err)

	ids := []string{wifi.ID}
	d, err := f.c.UpdatePlace(f.ctx, alice, p.ID, models.PlacePatch{Price: fp(120), AmenityIDs: &ids})
	require.NoError(t, err)
	assert.Equal(t, 120.0, d.Price)
	assert.Equal(t, "Sea view", d.Title, "absent keys are untouched")
	require.Len(t, d.Amenities, 1)

	// replacement, not merge
	ids = []string{pool.ID}
	d, err = f.c.UpdatePlace(f.ctx, f.admin, p.ID, models.PlacePatch{AmenityIDs: &ids})
	require.NoError(t, err)
	require.Len(t, d.Amenities, 1)
	assert.Equal(t, pool.ID, d.Amenities[0].ID)

	// no amenities key leaves the set alone
	d, err = f.c.UpdatePlace(f.ctx, alice, p.ID, models.PlacePatch{Description: sp("cozy")})
	require.NoError(t, err)
	assert.Len(t, d.Amenities, 1)
}

func TestDeletePlace_CascadesReviews(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	carol := f.user(t, "carol@example.com")
	p := f.place(t, alice)

	r1, err := f.c.CreateReview(f.ctx, bob, models.NewReview{Text: "great", Rating: 5, PlaceID: p.ID})
	require.NoError(t, err)
	r2, err := f.c.CreateReview(f.ctx, carol, models.NewReview{Text: "fine", Rating: 3, PlaceID: p.ID})
	require.NoError(t, err)

	requireKind(t, f.c.DeletePlace(f.ctx, bob, p.ID), ErrPermissionDenied)
	require.NoError(t, f.c.DeletePlace(f.ctx, alice, p.ID))

	for _, id := range []string{r1.ID, r2.ID} {
		_, err := f.c.GetReview(f.ctx, id)
		requireKind(t, err, ErrNotFound)
	}
	_, err = f.c.GetPlace(f.ctx, p.ID)
	requireKind(t, err, ErrNotFound)
	requireKind(t, f.c.DeletePlace(f.ctx, alice, p.ID), ErrNotFound)
}

func TestGetPlace_Detail(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	carol := f.user(t, "carol@example.com")
	p := f.place(t, alice)

	_, err := f.c.CreateReview(f.ctx, bob, models.NewReview{Text: "great", Rating: 5, PlaceID: p.ID})
	require.NoError(t, err)
	_, err = f.c.CreateReview(f.ctx, carol, models.NewReview{Text: "meh", Rating: 2, PlaceID: p.ID})
	require.NoError(t, err)

	d, err := f.c.GetPlace(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", d.Owner.Email)
	assert.Equal(t, 2, d.ReviewsCount)
	assert.Equal(t, 3.5, d.AverageRating)
	assert.NotNil(t, d.Amenities)

	list, err := f.c.ListPlaces(f.ctx, models.PlaceFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.PlaceSummary{ID: p.ID, Title: "Sea view", Latitude: 10, Longitude: 20}, list[0])

	reviews, err := f.c.ListPlaceReviews(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
	_, err = f.c.ListPlaceReviews(f.ctx, "missing")
	requireKind(t, err, ErrNotFound)
}

func TestCreateReview_SelfReview(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	p := f.place(t, alice)

	_, err := f.c.CreateReview(f.ctx, alice, models.NewReview{Text: "my own", Rating: 5, PlaceID: p.ID, UserID: alice.ID})
	requireKind(t, err, ErrPermissionDenied)

	// an admin may post on alice's behalf
	rv, err := f.c.CreateReview(f.ctx, f.admin, models.NewReview{Text: "my own", Rating: 5, PlaceID: p.ID, UserID: alice.ID})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, rv.UserID)
}

func TestCreateReview_Rules(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	carol := f.user(t, "carol@example.com")
	p := f.place(t, alice)

	rv, err := f.c.CreateReview(f.ctx, bob, models.NewReview{Text: "sneaky", Rating: 4, PlaceID: p.ID, UserID: carol.ID})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, rv.UserID, "non-admin author is forced to self")

	_, err = f.c.CreateReview(f.ctx, bob, models.NewReview{Text: "x", Rating: 4, PlaceID: "missing"})
	requireKind(t, err, ErrNotFound)
	_, err = f.c.CreateReview(f.ctx, bob, models.NewReview{Text: "x", Rating: 4})
	requireKind(t, err, ErrValidation)
	_, err = f.c.CreateReview(f.ctx, policy.Actor{}, models.NewReview{Text: "x", Rating: 4, PlaceID: p.ID})
	requireKind(t, err, ErrPermissionDenied)
	_, err = f.c.CreateReview(f.ctx, f.admin, models.NewReview{Text: "x", Rating: 4, PlaceID: p.ID, UserID: "ghost"})
	requireKind(t, err, ErrValidation)
	_, err = f.c.CreateReview(f.ctx, carol, models.NewReview{Text: "   ", Rating: 4, PlaceID: p.ID})
	requireKind(t, err, ErrValidation)
}

func TestReviewRatingBounds(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	p := f.place(t, alice)

	for i, r := range []int{0, -1, 6, 100} {
		bob := f.user(t, fmt.Sprintf("bad%d@example.com", i))
		_, err := f.c.CreateReview(f.ctx, bob, models.NewReview{Text: "x", Rating: r, PlaceID: p.ID})
		requireKind(t, err, ErrValidation)
	}
	for r := models.RatingMin; r <= models.RatingMax; r++ {
		u := f.user(t, fmt.Sprintf("ok%d@example.com", r))
		rv, err := f.c.CreateReview(f.ctx, u, models.NewReview{Text: "x", Rating: r, PlaceID: p.ID})
		require.NoError(t, err)

		_, err = f.c.UpdateReview(f.ctx, u, rv.ID, models.ReviewPatch{Rating: ip(6)})
		requireKind(t, err, ErrValidation)
		_, err = f.c.UpdateReview(f.ctx, u, rv.ID, models.ReviewPatch{Rating: ip(0)})
		requireKind(t, err, ErrValidation)
		upd, err := f.c.UpdateReview(f.ctx, u, rv.ID, models.ReviewPatch{Rating: ip(models.RatingMax - r + 1)})
		require.NoError(t, err)
		assert.Equal(t, models.RatingMax-r+1, upd.Rating)
	}
}

func TestUpdateDeleteReview_Permissions(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	p := f.place(t, alice)
	rv, err := f.c.CreateReview(f.ctx, bob, models.NewReview{Text: "nice", Rating: 4, PlaceID: p.ID})
	require.NoError(t, err)

	_, err = f.c.UpdateReview(f.ctx, alice, rv.ID, models.ReviewPatch{Text: sp("edited by owner")})
	requireKind(t, err, ErrPermissionDenied)
	upd, err := f.c.UpdateReview(f.ctx, bob, rv.ID, models.ReviewPatch{Text: sp("  really nice  ")})
	require.NoError(t, err)
	assert.Equal(t, "really nice", upd.Text)
	assert.Equal(t, 4, upd.Rating)

	_, err = f.c.UpdateReview(f.ctx, bob, "missing", models.ReviewPatch{})
	requireKind(t, err, ErrNotFound)

	requireKind(t, f.c.DeleteReview(f.ctx, alice, rv.ID), ErrPermissionDenied)
	require.NoError(t, f.c.DeleteReview(f.ctx, f.admin, rv.ID))
	requireKind(t, f.c.DeleteReview(f.ctx, bob, rv.ID), ErrNotFound)

	d, err := f.c.GetPlace(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, d.Reviews)
}

// alice lists, bob reviews, bob's second review is a duplicate.
func TestScenario_DuplicateReview(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	p, err := f.c.CreatePlace(f.ctx, alice, models.NewPlace{Title: "Alice's flat", Price: fp(100), Latitude: fp(10), Longitude: fp(20)})
	require.NoError(t, err)
	bob := f.user(t, "bob@example.com")

	_, err = f.c.CreateReview(f.ctx, bob, models.NewReview{Text: "Lovely", Rating: 5, PlaceID: p.ID})
	require.NoError(t, err)
	_, err = f.c.CreateReview(f.ctx, bob, models.NewReview{Text: "Changed my mind", Rating: 1, PlaceID: p.ID})
	requireKind(t, err, ErrDuplicate)

	// the admin does not get around it either
	_, err = f.c.CreateReview(f.ctx, f.admin, models.NewReview{Text: "again", Rating: 2, PlaceID: p.ID, UserID: bob.ID})
	requireKind(t, err, ErrDuplicate)
}

func TestScenario_AmenityLifecycle(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")

	wifi, err := f.c.CreateAmenity(f.ctx, f.admin, models.NewAmenity{Name: "WiFi"})
	require.NoError(t, err)
	_, err = f.c.CreateAmenity(f.ctx, alice, models.NewAmenity{Name: "Pool"})
	requireKind(t, err, ErrPermissionDenied)

	_, err = f.c.UpdateAmenity(f.ctx, f.admin, wifi.ID, models.AmenityPatch{Name: sp("Fiber WiFi")})
	require.NoError(t, err)
	got, err := f.c.GetAmenity(f.ctx, wifi.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fiber WiFi", got.Name)
}

func TestAmenities_Rules(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")

	_, err := f.c.CreateAmenity(f.ctx, f.admin, models.NewAmenity{Name: "W"})
	requireKind(t, err, ErrValidation)
	_, err = f.c.CreateAmenity(f.ctx, f.admin, models.NewAmenity{Name: "Sauna"})
	require.NoError(t, err)
	_, err = f.c.CreateAmenity(f.ctx, f.admin, models.NewAmenity{Name: "Sauna"})
	requireKind(t, err, ErrDuplicate)
	// case-sensitive uniqueness
	spa, err := f.c.CreateAmenity(f.ctx, f.admin, models.NewAmenity{Name: "sauna"})
	require.NoError(t, err)

	_, err = f.c.UpdateAmenity(f.ctx, f.admin, spa.ID, models.AmenityPatch{Name: sp("Sauna")})
	requireKind(t, err, ErrDuplicate)
	_, err = f.c.UpdateAmenity(f.ctx, f.admin, spa.ID, models.AmenityPatch{Name: sp("sauna")})
	require.NoError(t, err, "renaming to its own name is fine")
	_, err = f.c.UpdateAmenity(f.ctx, f.admin, "missing", models.AmenityPatch{Name: sp("Gym")})
	requireKind(t, err, ErrNotFound)
	_, err = f.c.UpdateAmenity(f.ctx, alice, spa.ID, models.AmenityPatch{Name: sp("Gym")})
	requireKind(t, err, ErrPermissionDenied)

	list, err := f.c.ListAmenities(f.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAuditLogs(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	p := f.place(t, alice)

	_, err := f.c.ListAuditLogs(f.ctx, alice, 10)
	requireKind(t, err, ErrPermissionDenied)

	logs, err := f.c.ListAuditLogs(f.ctx, f.admin, 0)
	require.NoError(t, err)
	require.Len(t, logs, 3, "admin seed, alice, place")
	assert.Equal(t, "place", logs[0].EntityType)
	assert.Equal(t, p.ID, logs[0].EntityID)
	assert.Equal(t, alice.ID, logs[0].ActorID)

	logs, err = f.c.ListAuditLogs(f.ctx, f.admin, 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

// failingStore breaks every transaction to check that internal errors stay opaque.
type failingStore struct{ repo.Store }

func (failingStore) WithTx(context.Context, func(repo.Repositories) error) error {
	return errors.New("connection reset")
}

func TestUnexpectedErrorsAreWrapped(t *testing.T) {
	f := newFixture(t)
	c := NewCatalog(failingStore{f.store}, auth.NewBcryptHasher(bcrypt.MinCost), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.CreateAmenity(f.ctx, f.admin, models.NewAmenity{Name: "Gym"})
	require.Error(t, err)
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrPermissionDenied, ErrDuplicate} {
		assert.False(t, errors.Is(err, kind))
	}
	assert.Contains(t, err.Error(), "amenity.create")
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "validation", outcome(invalidField("x", "bad")))
	assert.Equal(t, "not_found", outcome(notFound("place")))
	assert.Equal(t, "denied", outcome(denied("no")))
	assert.Equal(t, "duplicate", outcome(duplicate("dup")))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}

// blindLookupStore hides existing rows from the uniqueness lookups so that
// writes reach the storage constraints.
type blindLookupStore struct{ repo.Store }

func (s blindLookupStore) WithTx(ctx context.Context, fn func(repo.Repositories) error) error {
	return s.Store.WithTx(ctx, func(r repo.Repositories) error {
		r.Users = blindUsers{r.Users}
		r.Reviews = blindReviews{r.Reviews}
		r.Amenities = blindAmenities{r.Amenities}
		return fn(r)
	})
}

type blindUsers struct{ repo.Users }

func (blindUsers) GetByEmail(context.Context, string) (models.User, error) {
	return models.User{}, repo.ErrNotFound
}

type blindReviews struct{ repo.Reviews }

func (blindReviews) GetByUserAndPlace(context.Context, string, string) (models.Review, error) {
	return models.Review{}, repo.ErrNotFound
}

type blindAmenities struct{ repo.Amenities }

func (blindAmenities) GetByName(context.Context, string) (models.Amenity, error) {
	return models.Amenity{}, repo.ErrNotFound
}

func TestStorageConflictsSurfaceAsDuplicate(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	p := f.place(t, alice)
	_, err := f.c.CreateReview(f.ctx, bob, models.NewReview{Text: "Nice", Rating: 4, PlaceID: p.ID})
	require.NoError(t, err)
	_, err = f.c.CreateAmenity(f.ctx, f.admin, models.NewAmenity{Name: "WiFi"})
	require.NoError(t, err)

	c := NewCatalog(blindLookupStore{f.store}, auth.NewBcryptHasher(bcrypt.MinCost), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err = c.Register(f.ctx, models.NewUser{Email: "ALICE@example.com", Password: "secret1", FirstName: "Al", LastName: "Ice"})
	requireKind(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "email already registered")

	_, err = c.CreateReview(f.ctx, bob, models.NewReview{Text: "Again", Rating: 2, PlaceID: p.ID})
	requireKind(t, err, ErrDuplicate)

	_, err = c.CreateAmenity(f.ctx, f.admin, models.NewAmenity{Name: "WiFi"})
	requireKind(t, err, ErrDuplicate)

	// the failed transactions left nothing behind
	reviews, err := f.c.ListPlaceReviews(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	users, err := f.c.ListUsers(f.ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestConcurrentRegistration_OneWins(t *testing.T) {
	f := newFixture(t)
	const n = 20
	var (
		wg       sync.WaitGroup
		ok, dups atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.c.CreateUser(f.ctx, f.admin, models.NewUser{
				Email: "race@example.com", Password: "secret1", FirstName: "Racer", LastName: fmt.Sprintf("No%d", i),
			})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrDuplicate):
				dups.Add(1)
			}
		}(i)
	}
	wg.Wait()
	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, n-1, dups.Load())
}

func TestListPlaces_Filter(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	mk := func(title string, price float64) {
		_, err := f.c.CreatePlace(f.ctx, alice, models.NewPlace{Title: title, Price: fp(price), Latitude: fp(0), Longitude: fp(0)})
		require.NoError(t, err)
	}
	mk("Sea view loft", 120)
	mk("Mountain cabin", 80)
	mk("City loft", 60)

	titles := func(flt models.PlaceFilter) []string {
		t.Helper()
		list, err := f.c.ListPlaces(f.ctx, flt)
		require.NoError(t, err)
		out := make([]string, 0, len(list))
		for _, p := range list {
			out = append(out, p.Title)
		}
		return out
	}
	assert.Len(t, titles(models.PlaceFilter{}), 3)
	assert.ElementsMatch(t, []string{"Sea view loft", "City loft"}, titles(models.PlaceFilter{Query: "LOFT"}))
	assert.ElementsMatch(t, []string{"Mountain cabin", "City loft"}, titles(models.PlaceFilter{MaxPrice: fp(80)}))
	assert.Equal(t, []string{"Sea view loft"}, titles(models.PlaceFilter{Query: "loft", MinPrice: fp(100)}))
	assert.Empty(t, titles(models.PlaceFilter{Query: "castle"}))

	_, err := f.c.ListPlaces(f.ctx, models.PlaceFilter{MinPrice: fp(100), MaxPrice: fp(50)})
	requireKind(t, err, ErrValidation)
	_, err = f.c.ListPlaces(f.ctx, models.PlaceFilter{MinPrice: fp(-1)})
	requireKind(t, err, ErrValidation)
}
