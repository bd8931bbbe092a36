package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/query"
	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
)

var _ repository.RecordRepository = (*RecordRepo)(nil)

// RecordRepo guarda todas las colecciones de negocio en la tabla records (data JSONB).
type RecordRepo struct {
	db Querier
}

// NewRecordRepository construye el adaptador de documentos sobre PostgreSQL.
func NewRecordRepository(db Querier) *RecordRepo {
	return &RecordRepo{db: db}
}

// CollectionExists consulta el catálogo de colecciones.
func (r *RecordRepo) CollectionExists(ctx context.Context, collection string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM collections WHERE name = $1)`, collection).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("collection exists: %w", err)
	}
	return ok, nil
}

// RegisterCollections da de alta en el catálogo las colecciones configuradas; las
// existentes se dejan igual.
func (r *RecordRepo) RegisterCollections(ctx context.Context, names []string) error {
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, err := r.db.Exec(ctx, `INSERT INTO collections (name) VALUES ($1) ON CONFLICT DO NOTHING`, name); err != nil {
			return fmt.Errorf("registrar colección %s: %w", name, err)
		}
	}
	return nil
}

// Find lista documentos que cumplen filter, en orden de alta.
func (r *RecordRepo) Find(ctx context.Context, collection string, filter query.Filter, limit, offset int) ([]*entity.Record, error) {
	if err := r.requireCollection(ctx, collection); err != nil {
		return nil, err
	}
	b := newWhereBuilder(collection)
	where, err := b.build(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	sql := `SELECT collection, id, company_id, data, created_at, updated_at FROM records
		WHERE collection = $1 AND (` + where + `) ORDER BY created_at, id`
	if limit > 0 {
		sql += " LIMIT " + b.param(limit)
	}
	if offset > 0 {
		sql += " OFFSET " + b.param(offset)
	}
	rows, err := r.db.Query(ctx, sql, b.args...)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	defer rows.Close()

	var list []*entity.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// Count cuenta documentos que cumplen filter.
func (r *RecordRepo) Count(ctx context.Context, collection string, filter query.Filter) (int64, error) {
	if err := r.requireCollection(ctx, collection); err != nil {
		return 0, err
	}
	b := newWhereBuilder(collection)
	where, err := b.build(filter)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	var n int64
	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM records WHERE collection = $1 AND (`+where+`)`, b.args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *RecordRepo) GetByID(ctx context.Context, collection, id string) (*entity.Record, error) {
	row := r.db.QueryRow(ctx, `SELECT collection, id, company_id, data, created_at, updated_at
		FROM records WHERE collection = $1 AND id = $2`, collection, id)
	rec, err := scanRecord(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Create inserta el documento.
func (r *RecordRepo) Create(ctx context.Context, rec *entity.Record) error {
	data, err := encodeData(rec.Data)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO records (collection, id, company_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.Collection, rec.ID, rec.CompanyID, data, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("%w: %s/%s", domain.ErrDuplicate, rec.Collection, rec.ID)
		case isForeignKeyViolation(err):
			return fmt.Errorf("colección %s: %w", rec.Collection, domain.ErrNotFound)
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Update reemplaza data y companyId.
func (r *RecordRepo) Update(ctx context.Context, rec *entity.Record) error {
	data, err := encodeData(rec.Data)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `UPDATE records SET company_id = $3, data = $4, updated_at = $5
		WHERE collection = $1 AND id = $2`,
		rec.Collection, rec.ID, rec.CompanyID, data, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el documento.
func (r *RecordRepo) Delete(ctx context.Context, collection, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM records WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AssignCompany fija company_id en los documentos que cumplen filter; los que ya lo tienen no cuentan.
func (r *RecordRepo) AssignCompany(ctx context.Context, collection string, filter query.Filter, companyID int64) (int64, error) {
	if err := r.requireCollection(ctx, collection); err != nil {
		return 0, err
	}
	b := newWhereBuilder(collection, companyID)
	where, err := b.build(filter)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	tag, err := r.db.Exec(ctx, `UPDATE records SET company_id = $2, updated_at = now()
		WHERE collection = $1 AND company_id IS DISTINCT FROM $2 AND (`+where+`)`, b.args...)
	if err != nil {
		return 0, fmt.Errorf("assign company: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *RecordRepo) requireCollection(ctx context.Context, collection string) error {
	ok, err := r.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("colección %s: %w", collection, domain.ErrNotFound)
	}
	return nil
}

func scanRecord(row pgx.Row) (*entity.Record, error) {
	var (
		rec  entity.Record
		data []byte
	)
	if err := row.Scan(&rec.Collection, &rec.ID, &rec.CompanyID, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec.Data); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	if rec.Data == nil {
		rec.Data = map[string]any{}
	}
	return &rec, nil
}

// encodeData excluye los campos reservados; viven en sus columnas.
func encodeData(data map[string]any) ([]byte, error) {
	clean := make(map[string]any, len(data))
	for k, v := range data {
		if k == entity.FieldID || k == entity.FieldCompanyID {
			continue
		}
		clean[k] = v
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: data no serializable: %v", domain.ErrInvalidInput, err)
	}
	return b, nil
}
