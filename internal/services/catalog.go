// Package services implements the catalog operations over a repository.Store.
// Each mutation runs in one unit of work together with its audit record.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/baharkarakas/hbnb-api/internal/auth"
	"github.com/baharkarakas/hbnb-api/internal/metrics"
	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/baharkarakas/hbnb-api/internal/policy"
	repo "github.com/baharkarakas/hbnb-api/internal/repository"
)

type Catalog struct {
	store  repo.Store
	hasher auth.PasswordHasher
	log    *slog.Logger

	// compared against when the email is unknown so login timing stays flat
	dummyHash func() string
}

func NewCatalog(store repo.Store, hasher auth.PasswordHasher, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{
		store:  store,
		hasher: hasher,
		log:    log,
		dummyHash: sync.OnceValue(func() string {
			h, _ := hasher.Hash("timing-equalizer-password")
			return h
		}),
	}
}

var conflictMessages = map[string]string{
	"user":    "email already registered",
	"amenity": "amenity name already exists",
	"review":  "user has already reviewed this place",
}

// fail turns repository and unexpected errors into what callers see.
// Typed errors pass through unchanged.
func (c *Catalog) fail(op, entity string, err error) error {
	var se *Error
	switch {
	case errors.As(err, &se):
		return err
	case errors.Is(err, repo.ErrNotFound):
		return notFound(entity)
	case errors.Is(err, repo.ErrConflict):
		msg, ok := conflictMessages[entity]
		if !ok {
			msg = entity + " already exists"
		}
		return duplicate(msg)
	case errors.Is(err, repo.ErrInvalidReference):
		return &Error{Kind: ErrValidation, Msg: "referenced record does not exist"}
	}
	c.log.Error("catalog operation failed", "op", op, "err", err)
	return fmt.Errorf("%s: %w", op, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPermissionDenied):
		return "denied"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	default:
		return "error"
	}
}

func (c *Catalog) observe(op string, err error) {
	metrics.CatalogOps.WithLabelValues(op, outcome(err)).Inc()
}

func (c *Catalog) audit(ctx context.Context, r repo.Repositories, actor policy.Actor, entity, id, action string, details map[string]any) error {
	return r.AuditLogs.Create(ctx, models.AuditLog{
		EntityType: entity,
		EntityID:   id,
		Action:     action,
		ActorID:    actor.ID,
		Details:    details,
	})
}

func isNotFound(err error) bool { return errors.Is(err, repo.ErrNotFound) }
