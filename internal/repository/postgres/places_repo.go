package postgres

import (
	"context"

	"github.com/baharkarakas/hbnb-api/internal/models"
	repo "github.com/baharkarakas/hbnb-api/internal/repository"
	"github.com/google/uuid"
)

type placesRepo struct{ q querier }

const placeCols = `id, title, description, price, latitude, longitude, owner_id, created_at, updated_at`

func scanPlace(s scanner) (models.Place, error) {
	var p models.Place
	err := s.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Latitude, &p.Longitude, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	return p, mapErr(err)
}

func (r *placesRepo) Create(ctx context.Context, p models.Place) (models.Place, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return scanPlace(r.q.QueryRow(ctx,
		`INSERT INTO places(id, title, description, price, latitude, longitude, owner_id)
		 VALUES($1,$2,$3,$4,$5,$6,$7)
		 RETURNING `+placeCols,
		p.ID, p.Title, p.Description, p.Price, p.Latitude, p.Longitude, p.OwnerID,
	))
}

func (r *placesRepo) GetByID(ctx context.Context, id string) (models.Place, error) {
	return scanPlace(r.q.QueryRow(ctx, `SELECT `+placeCols+` FROM places WHERE id=$1`, id))
}

func (r *placesRepo) List(ctx context.Context) ([]models.Place, error) {
	rows, err := r.q.Query(ctx, `SELECT `+placeCols+` FROM places ORDER BY created_at, id`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []models.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, mapErr(rows.Err())
}

func (r *placesRepo) Update(ctx context.Context, p models.Place) (models.Place, error) {
	return scanPlace(r.q.QueryRow(ctx,
		`UPDATE places
		    SET title=$2, description=$3, price=$4, latitude=$5, longitude=$6, owner_id=$7, updated_at=now()
		  WHERE id=$1
		  RETURNING `+placeCols,
		p.ID, p.Title, p.Description, p.Price, p.Latitude, p.Longitude, p.OwnerID,
	))
}

// Delete relies on ON DELETE CASCADE for place_amenities and reviews.
func (r *placesRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM places WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *placesRepo) SetAmenities(ctx context.Context, placeID string, amenityIDs []string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM place_amenities WHERE place_id=$1`, placeID); err != nil {
		return mapErr(err)
	}
	if len(amenityIDs) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO place_amenities(place_id, amenity_id)
		 SELECT $1, unnest($2::text[])
		 ON CONFLICT DO NOTHING`,
		placeID, amenityIDs,
	)
	return mapErr(err)
}

func (r *placesRepo) ListAmenities(ctx context.Context, placeID string) ([]models.Amenity, error) {
	rows, err := r.q.Query(ctx,
		`SELECT a.id, a.name, a.created_at, a.updated_at
		   FROM amenities a
		   JOIN place_amenities pa ON pa.amenity_id = a.id
		  WHERE pa.place_id=$1
		  ORDER BY a.name`,
		placeID,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	return collectAmenities(rows)
}
