package order

import (
	"bytes"
	"html/template"

	"github.com/wagginmeals/backend/internal/domain/order"
)

var packingSlipTemplate = template.Must(template.New("packing-slip").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Packing Slip {{.OrderNumber}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; margin: 32px; }
h1 { font-size: 20px; margin-bottom: 4px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border-bottom: 1px solid #ddd; padding: 6px 4px; text-align: left; }
td.qty { width: 60px; text-align: center; }
.meta { color: #666; }
</style>
</head>
<body>
<h1>Waggin Meals</h1>
<div class="meta">Packing slip for order {{.OrderNumber}} · {{.Date}}</div>
<h3>Ship to</h3>
<div>{{.Address.FirstName}} {{.Address.LastName}}</div>
<div>{{.Address.Street}}{{if .Address.Street2}}, {{.Address.Street2}}{{end}}</div>
<div>{{.Address.City}}, {{.Address.State}} {{.Address.ZipCode}}</div>
{{if .ShippingMethod}}<div class="meta">Method: {{.ShippingMethod}}</div>{{end}}
<table>
<thead><tr><th>Item</th><th>SKU</th><th class="qty">Qty</th></tr></thead>
<tbody>
{{range .Items}}<tr><td>{{.Name}}</td><td>{{.SKU}}</td><td class="qty">{{.Quantity}}</td></tr>
{{end}}</tbody>
</table>
{{if .Notes}}<p><strong>Notes:</strong> {{.Notes}}</p>{{end}}
</body>
</html>`))

// RenderPackingSlip renders the printable HTML for an order
func RenderPackingSlip(o *order.Order) (string, error) {
	data := struct {
		OrderNumber    string
		Date           string
		Address        any
		ShippingMethod string
		Items          []order.Item
		Notes          string
	}{
		OrderNumber:    o.OrderNumber,
		Date:           o.CreatedAt.Format("January 2, 2006"),
		Address:        o.ShippingAddress,
		ShippingMethod: o.ShippingMethod,
		Items:          o.Items,
		Notes:          o.Notes,
	}
	var buf bytes.Buffer
	if err := packingSlipTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
