package repository

import (
	"context"
	"errors"
	"fmt"

	"toolhub/internal/model"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrDuplicateEmail is returned by Create when the email is already taken
	ErrDuplicateEmail = errors.New("repository: duplicate email")
)

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type userRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user and fills in the server-assigned columns.
// Uniqueness is left to the users_email_key constraint so concurrent signups cannot race.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (email, password_hash, first_name, last_name, company, role)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, created_at`
	err := r.db.QueryRow(ctx, sql,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Company, user.Role,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by email. A missing user yields (nil, nil).
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT id, email, password_hash, first_name, last_name, company, role, created_at
            FROM users WHERE email = $1`
	err := r.db.QueryRow(ctx, sql, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Company, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}
