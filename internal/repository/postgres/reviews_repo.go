package postgres

import (
	"context"

	"github.com/baharkarakas/hbnb-api/internal/models"
	repo "github.com/baharkarakas/hbnb-api/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type reviewsRepo struct{ q querier }

const reviewCols = `id, text, rating, user_id, place_id, created_at, updated_at`

func scanReview(s scanner) (models.Review, error) {
	var rv models.Review
	err := s.Scan(&rv.ID, &rv.Text, &rv.Rating, &rv.UserID, &rv.PlaceID, &rv.CreatedAt, &rv.UpdatedAt)
	return rv, mapErr(err)
}

func collectReviews(rows pgx.Rows) ([]models.Review, error) {
	defer rows.Close()
	out := []models.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, mapErr(rows.Err())
}

func (r *reviewsRepo) Create(ctx context.Context, rv models.Review) (models.Review, error) {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	return scanReview(r.q.QueryRow(ctx,
		`INSERT INTO reviews(id, text, rating, user_id, place_id)
		 VALUES($1,$2,$3,$4,$5)
		 RETURNING `+reviewCols,
		rv.ID, rv.Text, rv.Rating, rv.UserID, rv.PlaceID,
	))
}

func (r *reviewsRepo) GetByID(ctx context.Context, id string) (models.Review, error) {
	return scanReview(r.q.QueryRow(ctx, `SELECT `+reviewCols+` FROM reviews WHERE id=$1`, id))
}

func (r *reviewsRepo) GetByUserAndPlace(ctx context.Context, userID, placeID string) (models.Review, error) {
	return scanReview(r.q.QueryRow(ctx,
		`SELECT `+reviewCols+` FROM reviews WHERE user_id=$1 AND place_id=$2`, userID, placeID))
}

func (r *reviewsRepo) List(ctx context.Context) ([]models.Review, error) {
	rows, err := r.q.Query(ctx, `SELECT `+reviewCols+` FROM reviews ORDER BY created_at, id`)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectReviews(rows)
}

func (r *reviewsRepo) ListByPlace(ctx context.Context, placeID string) ([]models.Review, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+reviewCols+` FROM reviews WHERE place_id=$1 ORDER BY created_at, id`, placeID)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectReviews(rows)
}

func (r *reviewsRepo) Update(ctx context.Context, rv models.Review) (models.Review, error) {
	return scanReview(r.q.QueryRow(ctx,
		`UPDATE reviews SET text=$2, rating=$3, updated_at=now() WHERE id=$1 RETURNING `+reviewCols,
		rv.ID, rv.Text, rv.Rating,
	))
}

func (r *reviewsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *reviewsRepo) DeleteByPlace(ctx context.Context, placeID string) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM reviews WHERE place_id=$1`, placeID)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}
