package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/baharkarakas/hbnb-api/internal/repository"
	"github.com/google/uuid"
)

type usersRepo struct{ v *view }

func emailTaken(st *state, email, exceptID string) bool {
	for _, u := range st.users.rows {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *usersRepo) Create(_ context.Context, u models.User) (models.User, error) {
	err := r.v.write(func(st *state) error {
		if emailTaken(st, u.Email, "") {
			return repository.ErrConflict
		}
		if u.ID == "" {
			u.ID = uuid.NewString()
		} else if _, ok := st.users.get(u.ID); ok {
			return repository.ErrConflict
		}
		u.CreatedAt = r.v.s.now()
		u.UpdatedAt = u.CreatedAt
		st.users.put(u.ID, u)
		return nil
	})
	return u, err
}

func (r *usersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	var u models.User
	err := r.v.read(func(st *state) error {
		var ok bool
		if u, ok = st.users.get(id); !ok {
			return repository.ErrNotFound
		}
		return nil
	})
	return u, err
}

func (r *usersRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	var out models.User
	err := r.v.read(func(st *state) error {
		for _, u := range st.users.rows {
			if strings.EqualFold(u.Email, email) {
				out = u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *usersRepo) List(_ context.Context) ([]models.User, error) {
	var out []models.User
	err := r.v.read(func(st *state) error {
		out = st.users.list()
		return nil
	})
	return out, err
}

func (r *usersRepo) Update(_ context.Context, u models.User) (models.User, error) {
	err := r.v.write(func(st *state) error {
		cur, ok := st.users.get(u.ID)
		if !ok {
			return repository.ErrNotFound
		}
		if emailTaken(st, u.Email, u.ID) {
			return repository.ErrConflict
		}
		u.CreatedAt = cur.CreatedAt
		u.UpdatedAt = r.v.s.now()
		st.users.put(u.ID, u)
		return nil
	})
	return u, err
}

type placesRepo struct{ v *view }

func (r *placesRepo) Create(_ context.Context, p models.Place) (models.Place, error) {
	err := r.v.write(func(st *state) error {
		if _, ok := st.users.get(p.OwnerID); !ok {
			return repository.ErrInvalidReference
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		} else if _, ok := st.places.get(p.ID); ok {
			return repository.ErrConflict
		}
		p.CreatedAt = r.v.s.now()
		p.UpdatedAt = p.CreatedAt
		st.places.put(p.ID, p)
		return nil
	})
	return p, err
}

func (r *placesRepo) GetByID(_ context.Context, id string) (models.Place, error) {
	var p models.Place
	err := r.v.read(func(st *state) error {
		var ok bool
		if p, ok = st.places.get(id); !ok {
			return repository.ErrNotFound
		}
		return nil
	})
	return p, err
}

func (r *placesRepo) List(_ context.Context) ([]models.Place, error) {
	var out []models.Place
	err := r.v.read(func(st *state) error {
		out = st.places.list()
		return nil
	})
	return out, err
}

func (r *placesRepo) Update(_ context.Context, p models.Place) (models.Place, error) {
	err := r.v.write(func(st *state) error {
		cur, ok := st.places.get(p.ID)
		if !ok {
			return repository.ErrNotFound
		}
		if _, ok := st.users.get(p.OwnerID); !ok {
			return repository.ErrInvalidReference
		}
		p.CreatedAt = cur.CreatedAt
		p.UpdatedAt = r.v.s.now()
		st.places.put(p.ID, p)
		return nil
	})
	return p, err
}

// Delete cascades to the place's reviews and amenity links.
func (r *placesRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		if !st.places.del(id) {
			return repository.ErrNotFound
		}
		delete(st.links, id)
		for _, rv := range st.reviews.list() {
			if rv.PlaceID == id {
				st.reviews.del(rv.ID)
			}
		}
		return nil
	})
}

func (r *placesRepo) SetAmenities(_ context.Context, placeID string, amenityIDs []string) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.places.get(placeID); !ok && len(amenityIDs) > 0 {
			return repository.ErrInvalidReference
		}
		ids := make([]string, 0, len(amenityIDs))
		for _, id := range amenityIDs {
			if _, ok := st.amenities.get(id); !ok {
				return repository.ErrInvalidReference
			}
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			delete(st.links, placeID)
			return nil
		}
		st.links[placeID] = ids
		return nil
	})
}

func (r *placesRepo) ListAmenities(_ context.Context, placeID string) ([]models.Amenity, error) {
	out := []models.Amenity{}
	err := r.v.read(func(st *state) error {
		for _, id := range st.links[placeID] {
			if a, ok := st.amenities.get(id); ok {
				out = append(out, a)
			}
		}
		return nil
	})
	sortByName(out)
	return out, err
}

type reviewsRepo struct{ v *view }

func (r *reviewsRepo) Create(_ context.Context, rv models.Review) (models.Review, error) {
	err := r.v.write(func(st *state) error {
		if _, ok := st.users.get(rv.UserID); !ok {
			return repository.ErrInvalidReference
		}
		if _, ok := st.places.get(rv.PlaceID); !ok {
			return repository.ErrInvalidReference
		}
		for _, existing := range st.reviews.rows {
			if existing.UserID == rv.UserID && existing.PlaceID == rv.PlaceID {
				return repository.ErrConflict
			}
		}
		if rv.ID == "" {
			rv.ID = uuid.NewString()
		} else if _, ok := st.reviews.get(rv.ID); ok {
			return repository.ErrConflict
		}
		rv.CreatedAt = r.v.s.now()
		rv.UpdatedAt = rv.CreatedAt
		st.reviews.put(rv.ID, rv)
		return nil
	})
	return rv, err
}

func (r *reviewsRepo) GetByID(_ context.Context, id string) (models.Review, error) {
	var rv models.Review
	err := r.v.read(func(st *state) error {
		var ok bool
		if rv, ok = st.reviews.get(id); !ok {
			return repository.ErrNotFound
		}
		return nil
	})
	return rv, err
}

func (r *reviewsRepo) GetByUserAndPlace(_ context.Context, userID, placeID string) (models.Review, error) {
	var out models.Review
	err := r.v.read(func(st *state) error {
		for _, rv := range st.reviews.rows {
			if rv.UserID == userID && rv.PlaceID == placeID {
				out = rv
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *reviewsRepo) List(_ context.Context) ([]models.Review, error) {
	var out []models.Review
	err := r.v.read(func(st *state) error {
		out = st.reviews.list()
		return nil
	})
	return out, err
}

func (r *reviewsRepo) ListByPlace(_ context.Context, placeID string) ([]models.Review, error) {
	out := []models.Review{}
	err := r.v.read(func(st *state) error {
		for _, rv := range st.reviews.list() {
			if rv.PlaceID == placeID {
				out = append(out, rv)
			}
		}
		return nil
	})
	return out, err
}

// Update only rewrites text and rating; author and place are fixed.
func (r *reviewsRepo) Update(_ context.Context, rv models.Review) (models.Review, error) {
	var out models.Review
	err := r.v.write(func(st *state) error {
		cur, ok := st.reviews.get(rv.ID)
		if !ok {
			return repository.ErrNotFound
		}
		cur.Text = rv.Text
		cur.Rating = rv.Rating
		cur.UpdatedAt = r.v.s.now()
		st.reviews.put(cur.ID, cur)
		out = cur
		return nil
	})
	return out, err
}

func (r *reviewsRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		if !st.reviews.del(id) {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *reviewsRepo) DeleteByPlace(_ context.Context, placeID string) (int64, error) {
	var n int64
	err := r.v.write(func(st *state) error {
		for _, rv := range st.reviews.list() {
			if rv.PlaceID == placeID {
				st.reviews.del(rv.ID)
				n++
			}
		}
		return nil
	})
	return n, err
}

type amenitiesRepo struct{ v *view }

func nameTaken(st *state, name, exceptID string) bool {
	for _, a := range st.amenities.rows {
		if a.ID != exceptID && a.Name == name {
			return true
		}
	}
	return false
}

func sortByName(as []models.Amenity) {
	sort.SliceStable(as, func(i, j int) bool { return as[i].Name < as[j].Name })
}

func (r *amenitiesRepo) Create(_ context.Context, a models.Amenity) (models.Amenity, error) {
	err := r.v.write(func(st *state) error {
		if nameTaken(st, a.Name, "") {
			return repository.ErrConflict
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		} else if _, ok := st.amenities.get(a.ID); ok {
			return repository.ErrConflict
		}
		a.CreatedAt = r.v.s.now()
		a.UpdatedAt = a.CreatedAt
		st.amenities.put(a.ID, a)
		return nil
	})
	return a, err
}

func (r *amenitiesRepo) GetByID(_ context.Context, id string) (models.Amenity, error) {
	var a models.Amenity
	err := r.v.read(func(st *state) error {
		var ok bool
		if a, ok = st.amenities.get(id); !ok {
			return repository.ErrNotFound
		}
		return nil
	})
	return a, err
}

func (r *amenitiesRepo) GetByName(_ context.Context, name string) (models.Amenity, error) {
	var out models.Amenity
	err := r.v.read(func(st *state) error {
		for _, a := range st.amenities.rows {
			if a.Name == name {
				out = a
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *amenitiesRepo) ListByIDs(_ context.Context, ids []string) ([]models.Amenity, error) {
	out := []models.Amenity{}
	err := r.v.read(func(st *state) error {
		seen := map[string]bool{}
		for _, id := range ids {
			if a, ok := st.amenities.get(id); ok && !seen[id] {
				seen[id] = true
				out = append(out, a)
			}
		}
		return nil
	})
	sortByName(out)
	return out, err
}

func (r *amenitiesRepo) List(_ context.Context) ([]models.Amenity, error) {
	var out []models.Amenity
	err := r.v.read(func(st *state) error {
		out = st.amenities.list()
		return nil
	})
	sortByName(out)
	return out, err
}

func (r *amenitiesRepo) Update(_ context.Context, a models.Amenity) (models.Amenity, error) {
	err := r.v.write(func(st *state) error {
		cur, ok := st.amenities.get(a.ID)
		if !ok {
			return repository.ErrNotFound
		}
		if nameTaken(st, a.Name, a.ID) {
			return repository.ErrConflict
		}
		a.CreatedAt = cur.CreatedAt
		a.UpdatedAt = r.v.s.now()
		st.amenities.put(a.ID, a)
		return nil
	})
	return a, err
}

type auditLogsRepo struct{ v *view }

func (r *auditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	return r.v.write(func(st *state) error {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		l.CreatedAt = r.v.s.now()
		st.audit = append(st.audit, l)
		return nil
	})
}

// ListRecent returns newest first.
func (r *auditLogsRepo) ListRecent(_ context.Context, limit int) ([]models.AuditLog, error) {
	out := []models.AuditLog{}
	err := r.v.read(func(st *state) error {
		for i := len(st.audit) - 1; i >= 0 && len(out) < limit; i-- {
			out = append(out, st.audit[i])
		}
		return nil
	})
	return out, err
}
