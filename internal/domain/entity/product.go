package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product referencia de catálogo consumida por el núcleo de fulfillment.
// Precio y descuento son atributos de solo lectura adjuntos a las líneas;
// la cantidad en stock vive aparte, en la tabla stock (snapshot).
type Product struct {
	Code         string
	Description  string
	UnitPrice    decimal.Decimal
	DiscountTier string // opaco para este núcleo (escala de descuentos comercial)
	CreatedAt    time.Time
}
