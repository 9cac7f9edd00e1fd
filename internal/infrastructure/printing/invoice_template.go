package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	tradeapp "github.com/storefront/backend/internal/application/trade"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const invoiceHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Number}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; margin: 0; }
h1 { font-size: 22px; margin: 0 0 4px 0; }
.meta { color: #666; margin-bottom: 24px; }
.parties { display: flex; justify-content: space-between; margin-bottom: 24px; }
table { width: 100%; border-collapse: collapse; }
th { text-align: left; border-bottom: 2px solid #222; padding: 6px 4px; }
td { border-bottom: 1px solid #ddd; padding: 6px 4px; }
.num { text-align: right; }
.totals td { border: none; }
.grand td { font-weight: bold; border-top: 2px solid #222; }
.status { margin-top: 24px; }
</style>
</head>
<body>
<h1>{{.ShopName}}</h1>
<div class="meta">Invoice {{.Number}} &middot; issued {{formatDate .IssuedAt}}</div>
<div class="parties">
  <div>
    <strong>Billed to</strong><br>
    {{if .CustomerName}}{{title .CustomerName}}<br>{{end}}
    {{if .CustomerEmail}}{{.CustomerEmail}}<br>{{end}}
    {{.Order.ShippingAddress.OneLine}}
  </div>
  <div>
    <strong>Order</strong><br>
    {{.Order.ID}}<br>
    Placed {{formatDate .Order.CreatedAt}}<br>
    Payment: {{.Order.PaymentMethod}}
  </div>
</div>
<table>
  <thead><tr><th>Item</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Amount</th></tr></thead>
  <tbody>
  {{range .Order.Items}}
    <tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{money .Price}}</td><td class="num">{{money .Amount}}</td></tr>
  {{end}}
  </tbody>
  <tfoot class="totals">
    <tr><td colspan="3" class="num">Items</td><td class="num">{{money .Order.ItemsPrice}}</td></tr>
    <tr><td colspan="3" class="num">Tax</td><td class="num">{{money .Order.TaxPrice}}</td></tr>
    <tr><td colspan="3" class="num">Shipping</td><td class="num">{{money .Order.ShippingPrice}}</td></tr>
    <tr class="grand"><td colspan="3" class="num">Total</td><td class="num">{{money .Order.TotalPrice}}</td></tr>
  </tfoot>
</table>
<div class="status">{{if .Order.IsPaid}}Paid on {{formatDate .Order.PaidAt}}{{else}}Awaiting payment{{end}}</div>
</body>
</html>
`

// InvoiceTemplate renders invoice documents to HTML
type InvoiceTemplate struct {
	tmpl *template.Template
}

// NewInvoiceTemplate parses the built-in invoice layout
func NewInvoiceTemplate() (*InvoiceTemplate, error) {
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		"formatDate": formatDate,
		"title":      titleCase,
		"money":      formatMoneyRaw,
	}).Parse(invoiceHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice template: %w", err)
	}
	return &InvoiceTemplate{tmpl: tmpl}, nil
}

// Execute renders doc. Amounts are prefixed with the document currency.
func (t *InvoiceTemplate) Execute(doc *tradeapp.InvoiceDocument) (string, error) {
	if doc == nil || doc.Order == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "invoice document has no order", nil)
	}
	currency := strings.ToUpper(strings.TrimSpace(doc.Currency))
	tmpl, err := t.tmpl.Clone()
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to clone invoice template", err)
	}
	tmpl.Funcs(template.FuncMap{
		"money": func(d decimal.Decimal) string { return formatMoney(d, currency) },
	})

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to execute invoice template", err)
	}
	return buf.String(), nil
}

// formatMoney formats an amount with the currency code in front
// Example: 1234.5, "USD" -> "USD 1,234.50"
func formatMoney(d decimal.Decimal, currency string) string {
	if currency == "" {
		return formatMoneyRaw(d)
	}
	return currency + " " + formatMoneyRaw(d)
}

// formatMoneyRaw formats an amount with thousand separators and two decimals
// Example: 1234.5 -> "1,234.50"
func formatMoneyRaw(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	parts := strings.Split(d.StringFixed(2), ".")
	intPart := parts[0]
	decPart := "00"
	if len(parts) > 1 {
		decPart = parts[1]
	}

	var result strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return sign + result.String() + "." + decPart
}

// formatDate accepts time.Time or *time.Time; nil renders empty
func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format("2006-01-02")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	default:
		return ""
	}
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
