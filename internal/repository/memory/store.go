// Package memory is an in-process repository.Store. It enforces the same
// unique and foreign key rules as the Postgres schema and is used by tests
// and by the API when no DATABASE_URL is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/baharkarakas/hbnb-api/internal/repository"
)

type state struct {
	users     *table[models.User]
	places    *table[models.Place]
	reviews   *table[models.Review]
	amenities *table[models.Amenity]
	// place id -> linked amenity ids
	links map[string][]string
	audit []models.AuditLog
}

func newState() *state {
	return &state{
		users:     newTable[models.User](),
		places:    newTable[models.Place](),
		reviews:   newTable[models.Review](),
		amenities: newTable[models.Amenity](),
		links:     map[string][]string{},
	}
}

func (st *state) clone() *state {
	c := &state{
		users:     st.users.clone(),
		places:    st.places.clone(),
		reviews:   st.reviews.clone(),
		amenities: st.amenities.clone(),
		links:     make(map[string][]string, len(st.links)),
		audit:     append([]models.AuditLog(nil), st.audit...),
	}
	for k, v := range st.links {
		c.links[k] = append([]string(nil), v...)
	}
	return c
}

type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

func New() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) Repos() repository.Repositories {
	return newRepositories(&view{s: s})
}

// WithTx runs fn against a private copy of the state and swaps it in only
// when fn succeeds. Transactions are serialized; fn must not call Repos.
func (s *Store) WithTx(ctx context.Context, fn func(repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	if err := fn(newRepositories(&view{s: s, tx: tx})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// view routes repository calls either to the live state under the store
// lock or to a transaction's private copy.
type view struct {
	s  *Store
	tx *state
}

func (v *view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return fn(v.s.st)
}

func (v *view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.st)
}

func newRepositories(v *view) repository.Repositories {
	return repository.Repositories{
		Users:     &usersRepo{v},
		Places:    &placesRepo{v},
		Reviews:   &reviewsRepo{v},
		Amenities: &amenitiesRepo{v},
		AuditLogs: &auditLogsRepo{v},
	}
}
