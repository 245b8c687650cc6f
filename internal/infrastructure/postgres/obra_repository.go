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

var (
	_ repository.ObraRepository  = (*ObraRepo)(nil)
	_ repository.StageRepository = (*StageRepo)(nil)
)

// ObraRepo implementación del puerto ObraRepository sobre PostgreSQL.
type ObraRepo struct {
	q Querier
}

// NewObraRepository construye el adaptador. Pasar pool o tx (Querier).
func NewObraRepository(q Querier) *ObraRepo {
	return &ObraRepo{q: q}
}

// Create persiste una nueva obra.
func (r *ObraRepo) Create(obra *entity.Obra) error {
	query := `
		INSERT INTO obras (id, name, client, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		obra.ID, obra.Name, nullable(obra.Client), nullable(obra.Address), obra.Status,
		obra.CreatedAt, obra.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert obra: %w", err)
	}
	return nil
}

// GetByID obtiene una obra por ID.
func (r *ObraRepo) GetByID(id string) (*entity.Obra, error) {
	query := `SELECT id, name, client, address, status, created_at, updated_at FROM obras WHERE id = $1`
	o, err := scanObra(r.q.QueryRow(context.Background(), query, id).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get obra: %w", err)
	}
	return o, nil
}

// Update actualiza una obra existente.
func (r *ObraRepo) Update(obra *entity.Obra) error {
	query := `
		UPDATE obras SET name = $2, client = $3, address = $4, status = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		obra.ID, obra.Name, nullable(obra.Client), nullable(obra.Address), obra.Status,
		obra.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update obra: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista obras con paginación.
func (r *ObraRepo) List(limit, offset int) ([]*entity.Obra, error) {
	query := `
		SELECT id, name, client, address, status, created_at, updated_at
		FROM obras ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list obras: %w", err)
	}
	defer rows.Close()
	var list []*entity.Obra
	for rows.Next() {
		o, err := scanObra(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan obra: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanObra(scan func(dest ...any) error) (*entity.Obra, error) {
	var o entity.Obra
	var client, address *string
	if err := scan(&o.ID, &o.Name, &client, &address, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Client = deref(client)
	o.Address = deref(address)
	return &o, nil
}

// StageRepo implementación del puerto StageRepository sobre PostgreSQL.
type StageRepo struct {
	q Querier
}

// NewStageRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStageRepository(q Querier) *StageRepo {
	return &StageRepo{q: q}
}

// Create persiste una nueva etapa de obra.
func (r *StageRepo) Create(stage *entity.Stage) error {
	query := `
		INSERT INTO stages (id, obra_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		stage.ID, stage.ObraID, stage.Name, stage.CreatedAt, stage.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stage: %w", err)
	}
	return nil
}

// GetByID obtiene una etapa por ID.
func (r *StageRepo) GetByID(id string) (*entity.Stage, error) {
	query := `SELECT id, obra_id, name, created_at, updated_at FROM stages WHERE id = $1`
	var s entity.Stage
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.ObraID, &s.Name, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stage: %w", err)
	}
	return &s, nil
}

// ListByObra lista las etapas de una obra.
func (r *StageRepo) ListByObra(obraID string) ([]*entity.Stage, error) {
	query := `SELECT id, obra_id, name, created_at, updated_at FROM stages WHERE obra_id = $1 ORDER BY name`
	rows, err := r.q.Query(context.Background(), query, obraID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()
	var list []*entity.Stage
	for rows.Next() {
		var s entity.Stage
		if err := rows.Scan(&s.ID, &s.ObraID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Update actualiza una etapa existente.
func (r *StageRepo) Update(stage *entity.Stage) error {
	query := `UPDATE stages SET name = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, stage.ID, stage.Name, stage.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra una etapa. Falla con ErrConflict si tiene repartos asociados.
func (r *StageRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
