// Package pdf implementa la generación del remito de armado: la hoja que
// acompaña al pedido armado con las cantidades pedidas, las encontradas y
// la clasificación de cada línea.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Remito de armado  │  N° Pedido + Cliente + Fecha   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Descripción | Pedido | Encontrado | Estado │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL: importe estimado por precios unitarios              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/farmadistro/pedidos-api/internal/application/fulfillment"
	"github.com/farmadistro/pedidos-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 16, Green: 94, Blue: 60}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ fulfillment.PackingSlipGenerator = (*MarotoPackingSlipGenerator)(nil)

// MarotoPackingSlipGenerator implementa fulfillment.PackingSlipGenerator
// usando Maroto v2.
type MarotoPackingSlipGenerator struct{}

// NewMarotoPackingSlipGenerator construye el generador.
func NewMarotoPackingSlipGenerator() *MarotoPackingSlipGenerator {
	return &MarotoPackingSlipGenerator{}
}

// GeneratePackingSlip genera el PDF del remito y devuelve sus bytes.
func (g *MarotoPackingSlipGenerator) GeneratePackingSlip(_ context.Context, order *entity.Order) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Remito de armado "+order.ID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(order) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(order))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar remito: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: título (izq) y pedido + cliente + fecha (der).
func headerRow(order *entity.Order) core.Row {
	fecha := order.UpdatedAt.Format("02/01/2006")
	return row.New(18).Add(
		col.New(7).Add(
			text.New("REMITO DE ARMADO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Documento interno de preparación de pedido", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Pedido "+order.ID, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			}),
			text.New("Cliente: "+order.ClientID, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Código", 2, align.Left),
		h("Descripción", 5, align.Left),
		h("Pedido", 1, align.Center),
		h("Encontrado", 2, align.Center),
		h("Estado", 2, align.Center),
	)
}

// tableLineRows: una fila por línea del pedido.
func tableLineRows(order *entity.Order) []core.Row {
	result := make([]core.Row, 0, len(order.Lines))
	for i := range order.Lines {
		l := &order.Lines[i]
		found := "—"
		if l.FoundQty != nil {
			found = fmt.Sprintf("%d", *l.FoundQty)
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(l.ProductCode, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(5).Add(text.New(l.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", l.OrderedQty), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(found, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(completenessLabel(l.Completeness), props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	return result
}

// totalRow: importe estimado por las cantidades encontradas a precio de lista.
func totalRow(order *entity.Order) core.Row {
	total := decimal.Zero
	for i := range order.Lines {
		l := &order.Lines[i]
		if l.FoundQty == nil {
			continue
		}
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(*l.FoundQty)))
	}
	return row.New(10).Add(
		col.New(12).Add(
			text.New("Importe estimado: $"+total.StringFixed(2), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 2, Right: 1,
			}),
		),
	)
}

func completenessLabel(c entity.Completeness) string {
	switch c {
	case entity.CompletenessComplete:
		return "Completo"
	case entity.CompletenessIncomplete:
		return "Incompleto"
	case entity.CompletenessSurplus:
		return "Sobrante"
	}
	return "—"
}
