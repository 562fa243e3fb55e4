package postgres

import (
	"context"

	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type amenitiesRepo struct{ q querier }

const amenityCols = `id, name, created_at, updated_at`

func scanAmenity(s scanner) (models.Amenity, error) {
	var a models.Amenity
	err := s.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	return a, mapErr(err)
}

func collectAmenities(rows pgx.Rows) ([]models.Amenity, error) {
	out := []models.Amenity{}
	for rows.Next() {
		a, err := scanAmenity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, mapErr(rows.Err())
}

func (r *amenitiesRepo) Create(ctx context.Context, a models.Amenity) (models.Amenity, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return scanAmenity(r.q.QueryRow(ctx,
		`INSERT INTO amenities(id, name) VALUES($1,$2) RETURNING `+amenityCols,
		a.ID, a.Name,
	))
}

func (r *amenitiesRepo) GetByID(ctx context.Context, id string) (models.Amenity, error) {
	return scanAmenity(r.q.QueryRow(ctx, `SELECT `+amenityCols+` FROM amenities WHERE id=$1`, id))
}

func (r *amenitiesRepo) GetByName(ctx context.Context, name string) (models.Amenity, error) {
	return scanAmenity(r.q.QueryRow(ctx, `SELECT `+amenityCols+` FROM amenities WHERE name=$1`, name))
}

func (r *amenitiesRepo) ListByIDs(ctx context.Context, ids []string) ([]models.Amenity, error) {
	if len(ids) == 0 {
		return []models.Amenity{}, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+amenityCols+` FROM amenities WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	return collectAmenities(rows)
}

func (r *amenitiesRepo) List(ctx context.Context) ([]models.Amenity, error) {
	rows, err := r.q.Query(ctx, `SELECT `+amenityCols+` FROM amenities ORDER BY name`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	return collectAmenities(rows)
}

func (r *amenitiesRepo) Update(ctx context.Context, a models.Amenity) (models.Amenity, error) {
	return scanAmenity(r.q.QueryRow(ctx,
		`UPDATE amenities SET name=$2, updated_at=now() WHERE id=$1 RETURNING `+amenityCols,
		a.ID, a.Name,
	))
}
