package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Almacen-obra-api/internal/domain"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementación del puerto MaterialRepository sobre PostgreSQL.
// Mantiene name_normalized (sin tildes, minúsculas) para búsquedas.
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

// Create persiste un nuevo material.
func (r *MaterialRepo) Create(material *entity.Material) error {
	query := `
		INSERT INTO materials (id, code, name, name_normalized, description, unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		material.ID, material.Code, material.Name, normalizeText(material.Name),
		nullable(material.Description), material.Unit, material.CreatedAt, material.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// GetByID obtiene un material por ID.
func (r *MaterialRepo) GetByID(id string) (*entity.Material, error) {
	query := `SELECT id, code, name, description, unit, created_at, updated_at FROM materials WHERE id = $1`
	m, err := scanMaterial(r.q.QueryRow(context.Background(), query, id).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// GetByCode obtiene un material por código interno.
func (r *MaterialRepo) GetByCode(code string) (*entity.Material, error) {
	query := `SELECT id, code, name, description, unit, created_at, updated_at FROM materials WHERE code = $1`
	m, err := scanMaterial(r.q.QueryRow(context.Background(), query, code).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material by code: %w", err)
	}
	return m, nil
}

// Update actualiza un material existente.
func (r *MaterialRepo) Update(material *entity.Material) error {
	query := `
		UPDATE materials
		SET code = $2, name = $3, name_normalized = $4, description = $5, unit = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		material.ID, material.Code, material.Name, normalizeText(material.Name),
		nullable(material.Description), material.Unit, material.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Search busca materiales por nombre o código, ignorando tildes y mayúsculas.
func (r *MaterialRepo) Search(queryText string, limit, offset int) ([]*entity.Material, error) {
	query := `
		SELECT id, code, name, description, unit, created_at, updated_at
		FROM materials
		WHERE name_normalized LIKE '%' || $1 || '%' OR LOWER(code) LIKE '%' || $1 || '%'
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, normalizeText(queryText), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search materials: %w", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Delete borra un material. Falla con ErrConflict si tiene movimientos.
func (r *MaterialRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanMaterial(scan func(dest ...any) error) (*entity.Material, error) {
	var m entity.Material
	var description *string
	if err := scan(&m.ID, &m.Code, &m.Name, &description, &m.Unit, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Description = deref(description)
	return &m, nil
}
