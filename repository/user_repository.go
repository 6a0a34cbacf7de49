package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgconn"

	"armario-outfits/apperr"
	"armario-outfits/models"
)

// UserRepository handles database operations for accounts
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure UserRepository implements UserRepositoryInterface
var _ UserRepositoryInterface = (*UserRepository)(nil)

const userColumns = `id, email, display_name, password_hash, COALESCE(profile_image_url, ''), created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.ProfileImageURL, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. A taken email returns a CONFLICT error.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, display_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.New(apperr.CodeConflict, "email already in use")
		}
		log.Errorf("❌ Error creating user: %v", err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	log.Infof("✓ User created: id=%s", user.ID)
	return nil
}

// GetByEmail looks a user up by normalised email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByID looks a user up by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// SetProfileImage stores the URL of the user's profile picture
func (r *UserRepository) SetProfileImage(ctx context.Context, id string, url string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET profile_image_url = $1 WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("failed to set profile image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperr.New(apperr.CodeNotFound, "user not found")
	}
	log.Infof("🖼️  Profile picture updated for %s", id)
	return nil
}
