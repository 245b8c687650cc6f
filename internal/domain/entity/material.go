package entity

import "time"

// Material representa un material o combustible controlado por el almacén.
// No guarda stock ni costo: ambos se derivan de los movimientos por bodega.
type Material struct {
	ID          string
	Code        string // código interno, único
	Name        string
	Description string
	Unit        string // m3, kg, gal, und, etc.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
