package entity

import "time"

// Warehouse representa una bodega de obra donde se almacenan materiales y combustible.
type Warehouse struct {
	ID        string
	ObraID    string // obra a la que pertenece; vacío = bodega central / patio
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
