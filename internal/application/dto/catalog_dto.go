package dto

import "time"

// CreateWarehouseRequest alta de bodega.
type CreateWarehouseRequest struct {
	ObraID  string `json:"obra_id"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

// UpdateWarehouseRequest actualización parcial de bodega.
type UpdateWarehouseRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

// WarehouseResponse representación de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	ObraID    string    `json:"obra_id,omitempty"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse página de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// CreateMaterialRequest alta de material.
type CreateMaterialRequest struct {
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Unit        string `json:"unit" validate:"required"`
}

// UpdateMaterialRequest actualización parcial de material.
type UpdateMaterialRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Unit        *string `json:"unit"`
}

// MaterialResponse representación de un material.
type MaterialResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Unit        string    `json:"unit"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MaterialListResponse página de materiales.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CreateObraRequest alta de obra.
type CreateObraRequest struct {
	Name    string `json:"name" validate:"required"`
	Client  string `json:"client"`
	Address string `json:"address"`
}

// ObraResponse representación de una obra.
type ObraResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Client    string    `json:"client,omitempty"`
	Address   string    `json:"address,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ObraListResponse página de obras.
type ObraListResponse struct {
	Items []ObraResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// CreateStageRequest alta de etapa de obra (centro de costo).
type CreateStageRequest struct {
	ObraID string `json:"obra_id" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

// StageResponse representación de una etapa.
type StageResponse struct {
	ID        string    `json:"id"`
	ObraID    string    `json:"obra_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
