package entity

import "time"

// Stage representa una etapa de obra (centro de costo). El libro de almacén la
// trata como identificador opaco: solo verifica que exista al repartir salidas.
type Stage struct {
	ID        string
	ObraID    string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
