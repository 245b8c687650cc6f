package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Almacen-obra-api/internal/application/dto"
	"github.com/jhoicas/Almacen-obra-api/internal/domain"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/repository"
)

// MaterialUseCase casos de uso CRUD para materiales.
type MaterialUseCase struct {
	repo repository.MaterialRepository
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.MaterialRepository) *MaterialUseCase {
	return &MaterialUseCase{repo: repo}
}

// Create crea un material. ErrDuplicate si el código ya existe.
func (uc *MaterialUseCase) Create(in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	existing, err := uc.repo.GetByCode(in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	material := &entity.Material{
		ID:          uuid.New().String(),
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		Unit:        in.Unit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(material); err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// GetByID obtiene un material por ID.
func (uc *MaterialUseCase) GetByID(id string) (*dto.MaterialResponse, error) {
	material, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, nil
	}
	return toMaterialResponse(material), nil
}

// Update actualiza un material.
func (uc *MaterialUseCase) Update(id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	material, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, nil
	}
	if in.Name != nil {
		material.Name = *in.Name
	}
	if in.Description != nil {
		material.Description = *in.Description
	}
	if in.Unit != nil {
		material.Unit = *in.Unit
	}
	material.UpdatedAt = time.Now()
	if err := uc.repo.Update(material); err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// Search busca materiales por nombre (insensible a tildes y mayúsculas).
func (uc *MaterialUseCase) Search(query string, limit, offset int) (*dto.MaterialListResponse, error) {
	list, err := uc.repo.Search(query, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMaterialResponse(m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un material por ID.
func (uc *MaterialUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	if m == nil {
		return nil
	}
	return &dto.MaterialResponse{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		Unit:        m.Unit,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
