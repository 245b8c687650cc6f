package entity

import "time"

// Estados válidos para Obra.
const (
	ObraStatusActive    = "active"
	ObraStatusSuspended = "suspended"
	ObraStatusFinished  = "finished"
)

// Obra representa un proyecto de construcción. Sus etapas son los centros de
// costo contra los que se reparten las salidas de almacén.
type Obra struct {
	ID        string
	Name      string
	Client    string
	Address   string
	Status    string // ver constantes ObraStatus*
	CreatedAt time.Time
	UpdatedAt time.Time
}
