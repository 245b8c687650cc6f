package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas). Los handlers HTTP los mapean
// a códigos de estado; los tipos *Error de abajo agregan el detalle numérico.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidAllocation  = errors.New("reparto de etapas inválido")
	ErrSameWarehouse      = errors.New("bodega origen y destino iguales")
	ErrTransaction        = errors.New("transacción de almacenamiento fallida")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
)

// InsufficientStockError detalla un rechazo por saldo insuficiente: cuánto se
// pidió y cuánto había disponible en el instante del movimiento. Disponible es
// el mínimo saldo desde ese instante hacia adelante, de modo que admitir el
// movimiento jamás deja el saldo negativo en ningún punto del historial.
type InsufficientStockError struct {
	WarehouseID string
	MaterialID  string
	Requested   decimal.Decimal
	Available   decimal.Decimal
	AsOf        time.Time
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: solicitado %s, disponible %s al %s",
		e.Requested.String(), e.Available.String(), e.AsOf.Format(time.RFC3339))
}

// Is permite errors.Is(err, domain.ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Shortfall devuelve el faltante (solicitado - disponible).
func (e *InsufficientStockError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

// InvalidAllocationError detalla por qué un reparto de etapas fue rechazado.
type InvalidAllocationError struct {
	Reason string
	Sum    decimal.Decimal // suma de porcentajes recibida (cuando aplica)
}

func (e *InvalidAllocationError) Error() string {
	if e.Sum.IsZero() && e.Reason != "" {
		return "reparto de etapas inválido: " + e.Reason
	}
	return fmt.Sprintf("reparto de etapas inválido: %s (suma %s)", e.Reason, e.Sum.String())
}

func (e *InvalidAllocationError) Is(target error) bool {
	return target == ErrInvalidAllocation
}

// SameWarehouseError rechaza un traslado cuya bodega origen es igual a la destino.
type SameWarehouseError struct {
	WarehouseID string
}

func (e *SameWarehouseError) Error() string {
	return "bodega origen y destino iguales: " + e.WarehouseID
}

func (e *SameWarehouseError) Is(target error) bool {
	return target == ErrSameWarehouse
}
