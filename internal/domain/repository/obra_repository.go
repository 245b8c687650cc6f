package repository

import "github.com/jhoicas/Almacen-obra-api/internal/domain/entity"

// ObraRepository define el puerto de persistencia para Obra (DIP).
type ObraRepository interface {
	Create(obra *entity.Obra) error
	GetByID(id string) (*entity.Obra, error)
	Update(obra *entity.Obra) error
	List(limit, offset int) ([]*entity.Obra, error)
}

// StageRepository define el puerto de persistencia para las etapas de obra.
type StageRepository interface {
	Create(stage *entity.Stage) error
	GetByID(id string) (*entity.Stage, error)
	ListByObra(obraID string) ([]*entity.Stage, error)
	Update(stage *entity.Stage) error
	Delete(id string) error
}
