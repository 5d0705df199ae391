package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ramo2594/probook/libs/db"
	"github.com/ramo2594/probook/services/probook/internal/model"
)

var ErrDuplicate = errors.New("duplicate")

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, is_professional, phone, created_at`

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1
	`, strings.TrimSpace(username)))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

// CreateTx inserts u and sets its ID and CreatedAt.
func (r *UserRepository) CreateTx(ctx context.Context, tx pgx.Tx, u *model.User) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, is_professional, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, u.Username, u.Email, u.PasswordHash, u.IsProfessional, u.Phone).Scan(&u.ID, &u.CreatedAt)
	return mapError(err)
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsProfessional, &u.Phone, &u.CreatedAt)
	if err != nil {
		return model.User{}, mapError(err)
	}
	return u, nil
}

// mapError converts driver errors into the sentinels callers compare against.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// CreateProfessional inserts the owning user and its professional profile in one transaction.
func (r *UserRepository) CreateProfessional(ctx context.Context, u *model.User, p *model.Professional) error {
	return r.pool.InTx(ctx, func(tx pgx.Tx) error {
		u.IsProfessional = true
		if err := r.CreateTx(ctx, tx, u); err != nil {
			return err
		}
		p.UserID = u.ID
		p.OwnerEmail = u.Email
		return (&ProfessionalRepository{pool: r.pool}).CreateTx(ctx, tx, p)
	})
}
