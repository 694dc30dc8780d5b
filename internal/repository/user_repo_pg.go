package repository

import (
	"context"

	"github.com/Domenick1991/flightinventory/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type PGUserRepository struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.IsActive = true
	err := r.db.QueryRow(ctx, `INSERT INTO users (name, email, password_hash, phone_number, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		user.Name, user.Email, user.PasswordHash, user.PhoneNumber, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapError(err, "user")
}

func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, `SELECT id, name, email, password_hash, phone_number, is_active, created_at, updated_at FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.PhoneNumber, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "user")
	}
	return &u, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
