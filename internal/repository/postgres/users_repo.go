// internal/repository/postgres/users_repo.go
package postgres

import (
	"context"

	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/google/uuid"
)

type usersRepo struct{ q querier }

const userCols = `id, email, password_hash, first_name, last_name, is_admin, created_at, updated_at`

func scanUser(s scanner) (models.User, error) {
	var u models.User
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return scanUser(r.q.QueryRow(ctx,
		`INSERT INTO users(id, email, password_hash, first_name, last_name, is_admin)
		 VALUES($1,$2,$3,$4,$5,$6)
		 RETURNING `+userCols,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsAdmin,
	))
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE lower(email)=lower($1)`, email))
}

func (r *usersRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, mapErr(rows.Err())
}

func (r *usersRepo) Update(ctx context.Context, u models.User) (models.User, error) {
	return scanUser(r.q.QueryRow(ctx,
		`UPDATE users
		    SET email=$2, password_hash=$3, first_name=$4, last_name=$5, is_admin=$6, updated_at=now()
		  WHERE id=$1
		  RETURNING `+userCols,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsAdmin,
	))
}
