package repository

import "github.com/jhoicas/Almacen-obra-api/internal/domain/entity"

// MaterialRepository define el puerto de persistencia para Material (DIP).
type MaterialRepository interface {
	Create(material *entity.Material) error
	GetByID(id string) (*entity.Material, error)
	GetByCode(code string) (*entity.Material, error)
	Update(material *entity.Material) error
	// Search busca por nombre normalizado (sin tildes, case-insensitive).
	Search(query string, limit, offset int) ([]*entity.Material, error)
	Delete(id string) error
}
