package ledger

import (
	"context"

	"github.com/jhoicas/Almacen-obra-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando un
// repositorio de movimientos atado a esa tx. Garantiza que la validación de
// saldo y la escritura ocurran atómicamente frente a escritores concurrentes,
// y que las dos mitades de un traslado se vuelvan visibles juntas o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(movRepo repository.MovementRepository) error) error
}
