package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/ramo2594/probook/libs/db"
	"github.com/ramo2594/probook/services/probook/internal/model"
)

type ProfessionalRepository struct {
	pool *db.Pool
}

func NewProfessionalRepository(pool *db.Pool) *ProfessionalRepository {
	return &ProfessionalRepository{pool: pool}
}

const professionalSelect = `
	SELECT p.id, p.user_id, p.business_name, p.services, u.email
	FROM professionals p
	JOIN users u ON u.id = p.user_id
`

func (r *ProfessionalRepository) Get(ctx context.Context, id int64) (model.Professional, error) {
	return scanProfessional(r.pool.QueryRow(ctx, professionalSelect+`WHERE p.id = $1`, id))
}

func (r *ProfessionalRepository) GetByUser(ctx context.Context, userID int64) (model.Professional, error) {
	return scanProfessional(r.pool.QueryRow(ctx, professionalSelect+`WHERE p.user_id = $1`, userID))
}

// First returns the professional with the lowest id.
func (r *ProfessionalRepository) First(ctx context.Context) (model.Professional, error) {
	return scanProfessional(r.pool.QueryRow(ctx, professionalSelect+`ORDER BY p.id ASC LIMIT 1`))
}

func (r *ProfessionalRepository) CreateTx(ctx context.Context, tx pgx.Tx, p *model.Professional) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO professionals (user_id, business_name, services)
		VALUES ($1, $2, $3)
		RETURNING id
	`, p.UserID, p.BusinessName, p.Services).Scan(&p.ID)
	return mapError(err)
}

func scanProfessional(row pgx.Row) (model.Professional, error) {
	var p model.Professional
	if err := row.Scan(&p.ID, &p.UserID, &p.BusinessName, &p.Services, &p.OwnerEmail); err != nil {
		return model.Professional{}, mapError(err)
	}
	return p, nil
}
