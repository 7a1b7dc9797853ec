package entity

import "time"

// Stock cantidad actual de un producto (snapshot de inventario).
// Se lee para validar movimientos y se escribe solo al aplicarlos.
type Stock struct {
	ProductCode string
	Quantity    int64
	UpdatedAt   time.Time
}
