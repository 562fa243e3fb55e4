package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/hbnb-api/internal/models"
)

var (
	// ErrNotFound: no row with the requested key.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict: a unique constraint rejected the write.
	ErrConflict = errors.New("repository: unique constraint violated")
	// ErrInvalidReference: a foreign key points at a missing row.
	ErrInvalidReference = errors.New("repository: invalid reference")
)

// Users never hard-deletes; accounts live as long as the catalog.
type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	// GetByEmail expects an already normalized address.
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u models.User) (models.User, error)
}

type Places interface {
	Create(ctx context.Context, p models.Place) (models.Place, error)
	GetByID(ctx context.Context, id string) (models.Place, error)
	List(ctx context.Context) ([]models.Place, error)
	Update(ctx context.Context, p models.Place) (models.Place, error)
	// Delete also drops the place's amenity links.
	Delete(ctx context.Context, id string) error

	// SetAmenities replaces the full association set of a place.
	SetAmenities(ctx context.Context, placeID string, amenityIDs []string) error
	ListAmenities(ctx context.Context, placeID string) ([]models.Amenity, error)
}

type Reviews interface {
	Create(ctx context.Context, r models.Review) (models.Review, error)
	GetByID(ctx context.Context, id string) (models.Review, error)
	GetByUserAndPlace(ctx context.Context, userID, placeID string) (models.Review, error)
	List(ctx context.Context) ([]models.Review, error)
	ListByPlace(ctx context.Context, placeID string) ([]models.Review, error)
	Update(ctx context.Context, r models.Review) (models.Review, error)
	Delete(ctx context.Context, id string) error
	DeleteByPlace(ctx context.Context, placeID string) (int64, error)
}

type Amenities interface {
	Create(ctx context.Context, a models.Amenity) (models.Amenity, error)
	GetByID(ctx context.Context, id string) (models.Amenity, error)
	GetByName(ctx context.Context, name string) (models.Amenity, error)
	// ListByIDs returns the amenities that exist among ids; unknown ids are skipped.
	ListByIDs(ctx context.Context, ids []string) ([]models.Amenity, error)
	List(ctx context.Context) ([]models.Amenity, error)
	Update(ctx context.Context, a models.Amenity) (models.Amenity, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type Repositories struct {
	Users     Users
	Places    Places
	Reviews   Reviews
	Amenities Amenities
	AuditLogs AuditLogs
}

// Store hands out repositories. Repos() is for single reads; WithTx runs
// fn as one atomic unit of work and rolls back when fn returns an error.
type Store interface {
	Repos() Repositories
	WithTx(ctx context.Context, fn func(r Repositories) error) error
}
