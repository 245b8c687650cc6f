package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Almacen-obra-api/internal/application/dto"
	"github.com/jhoicas/Almacen-obra-api/internal/domain"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-obra-api/internal/domain/repository"
)

// ObraUseCase casos de uso CRUD para obras y sus etapas (centros de costo).
type ObraUseCase struct {
	obraRepo  repository.ObraRepository
	stageRepo repository.StageRepository
}

// NewObraUseCase construye el caso de uso.
func NewObraUseCase(obraRepo repository.ObraRepository, stageRepo repository.StageRepository) *ObraUseCase {
	return &ObraUseCase{obraRepo: obraRepo, stageRepo: stageRepo}
}

// Create crea una obra.
func (uc *ObraUseCase) Create(in dto.CreateObraRequest) (*dto.ObraResponse, error) {
	now := time.Now()
	obra := &entity.Obra{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Client:    in.Client,
		Address:   in.Address,
		Status:    entity.ObraStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.obraRepo.Create(obra); err != nil {
		return nil, err
	}
	return toObraResponse(obra), nil
}

// GetByID obtiene una obra por ID.
func (uc *ObraUseCase) GetByID(id string) (*dto.ObraResponse, error) {
	obra, err := uc.obraRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if obra == nil {
		return nil, nil
	}
	return toObraResponse(obra), nil
}

// List lista obras con paginación.
func (uc *ObraUseCase) List(limit, offset int) (*dto.ObraListResponse, error) {
	list, err := uc.obraRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ObraResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toObraResponse(o))
	}
	return &dto.ObraListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// CreateStage crea una etapa dentro de una obra. ErrNotFound si la obra no existe.
func (uc *ObraUseCase) CreateStage(in dto.CreateStageRequest) (*dto.StageResponse, error) {
	obra, err := uc.obraRepo.GetByID(in.ObraID)
	if err != nil {
		return nil, err
	}
	if obra == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	stage := &entity.Stage{
		ID:        uuid.New().String(),
		ObraID:    in.ObraID,
		Name:      in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.stageRepo.Create(stage); err != nil {
		return nil, err
	}
	return toStageResponse(stage), nil
}

// ListStages lista las etapas de una obra.
func (uc *ObraUseCase) ListStages(obraID string) ([]dto.StageResponse, error) {
	list, err := uc.stageRepo.ListByObra(obraID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StageResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toStageResponse(s))
	}
	return items, nil
}

func toObraResponse(o *entity.Obra) *dto.ObraResponse {
	if o == nil {
		return nil
	}
	return &dto.ObraResponse{
		ID:        o.ID,
		Name:      o.Name,
		Client:    o.Client,
		Address:   o.Address,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toStageResponse(s *entity.Stage) *dto.StageResponse {
	if s == nil {
		return nil
	}
	return &dto.StageResponse{
		ID:        s.ID,
		ObraID:    s.ObraID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
