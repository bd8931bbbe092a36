package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	db Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(db Querier) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// Create persiste una nueva empresa; el ID lo asigna la secuencia.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (name, status, max_users, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		company.Name, company.Status, company.MaxUsers, company.CreatedAt, company.UpdatedAt,
	).Scan(&company.ID)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id int64) (*entity.Company, error) {
	query := `SELECT id, name, status, max_users, created_at, updated_at FROM companies WHERE id = $1`
	c, err := scanCompany(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// Update actualiza nombre, estado y límite de usuarios.
func (r *CompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	query := `UPDATE companies SET name = $2, status = $3, max_users = $4, updated_at = $5 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		company.ID, company.Name, company.Status, company.MaxUsers, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("empresa %d: %w", company.ID, domain.ErrNotFound)
	}
	return nil
}

// List lista empresas por ID.
func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, name, status, max_users, created_at, updated_at FROM companies ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ListIDs devuelve todos los IDs de tenants conocidos.
func (r *CompanyRepo) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list company ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan company ids: %w", err)
	}
	return ids, nil
}

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var c entity.Company
	if err := row.Scan(&c.ID, &c.Name, &c.Status, &c.MaxUsers, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
