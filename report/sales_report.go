package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dukaan-erp/dukaan-erp/internal/expenses"
	"github.com/dukaan-erp/dukaan-erp/internal/sales"
)

// SalesPort provides verified sales for a date range.
type SalesPort interface {
	SalesBetween(ctx context.Context, from, to time.Time) ([]sales.SaleRecord, error)
}

// ExpensesPort provides expense totals for a date range.
type ExpensesPort interface {
	Summarize(ctx context.Context, from, to time.Time) (expenses.Summary, error)
}

// ItemNamer resolves stock item names for report rows.
type ItemNamer interface {
	ItemName(ctx context.Context, id int64) (string, error)
}

// Renderer turns HTML into a PDF.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// SalesReport is the period summary rendered into the PDF.
type SalesReport struct {
	From         time.Time
	To           time.Time
	Rows         []ReportRow
	TotalRevenue decimal.Decimal
	TotalProfit  decimal.Decimal
	TotalExpense decimal.Decimal
	NetProfit    decimal.Decimal
}

// ReportRow is one verified sale line.
type ReportRow struct {
	Date     string
	Item     string
	Quantity int64
	Price    string
	Total    string
	Profit   string
}

// Service builds and renders the sales report.
type Service struct {
	sales    SalesPort
	expenses ExpensesPort
	names    ItemNamer
	renderer Renderer
	printer  *message.Printer
}

// NewService builds Service. renderer may be nil when only the HTML view
// is needed.
func NewService(salesPort SalesPort, expensesPort ExpensesPort, names ItemNamer, renderer Renderer) *Service {
	return &Service{
		sales:    salesPort,
		expenses: expensesPort,
		names:    names,
		renderer: renderer,
		printer:  message.NewPrinter(language.English),
	}
}

// Build assembles the report data for the closed date range.
func (s *Service) Build(ctx context.Context, from, to time.Time) (SalesReport, error) {
	records, err := s.sales.SalesBetween(ctx, from, to)
	if err != nil {
		return SalesReport{}, fmt.Errorf("report: load sales: %w", err)
	}
	summary, err := s.expenses.Summarize(ctx, from, to)
	if err != nil {
		return SalesReport{}, fmt.Errorf("report: load expenses: %w", err)
	}

	rep := SalesReport{
		From:         from,
		To:           to,
		TotalRevenue: decimal.Zero,
		TotalProfit:  decimal.Zero,
		TotalExpense: summary.Total,
	}
	names := map[int64]string{}
	for _, rec := range records {
		name, ok := names[rec.StockItemID]
		if !ok {
			name, err = s.names.ItemName(ctx, rec.StockItemID)
			if err != nil {
				name = fmt.Sprintf("item #%d", rec.StockItemID)
			}
			names[rec.StockItemID] = name
		}
		rep.Rows = append(rep.Rows, ReportRow{
			Date:     rec.SaleDate.Format("2006-01-02"),
			Item:     name,
			Quantity: rec.QuantitySold,
			Price:    s.money(rec.PricePerUnit),
			Total:    s.money(rec.TotalAmount),
			Profit:   s.money(rec.Profit),
		})
		rep.TotalRevenue = rep.TotalRevenue.Add(rec.TotalAmount)
		rep.TotalProfit = rep.TotalProfit.Add(rec.Profit)
	}
	rep.NetProfit = rep.TotalProfit.Sub(rep.TotalExpense)
	return rep, nil
}

// RenderHTML produces the HTML view of the report.
func (s *Service) RenderHTML(ctx context.Context, from, to time.Time) (string, error) {
	rep, err := s.Build(ctx, from, to)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = salesTemplate.Execute(&buf, map[string]any{
		"From":         rep.From.Format("2006-01-02"),
		"To":           rep.To.Format("2006-01-02"),
		"Rows":         rep.Rows,
		"TotalRevenue": s.money(rep.TotalRevenue),
		"TotalProfit":  s.money(rep.TotalProfit),
		"TotalExpense": s.money(rep.TotalExpense),
		"NetProfit":    s.money(rep.NetProfit),
	})
	if err != nil {
		return "", fmt.Errorf("report: render template: %w", err)
	}
	return buf.String(), nil
}

// RenderPDF produces the PDF via Gotenberg.
func (s *Service) RenderPDF(ctx context.Context, from, to time.Time) ([]byte, error) {
	html, err := s.RenderHTML(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderHTML(ctx, html)
}

func (s *Service) money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return s.printer.Sprintf("%.2f", f)
}

var salesTemplate = template.Must(template.New("sales").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; margin: 32px; }
h1 { font-size: 18px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; }
th { background: #f0f0f0; }
td.num, th.num { text-align: right; }
.summary { margin-top: 24px; }
.summary td { border: none; padding: 2px 8px; }
</style>
</head>
<body>
<h1>Sales Report {{.From}} to {{.To}}</h1>
<table>
<tr><th>Date</th><th>Item</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Total</th><th class="num">Profit</th></tr>
{{range .Rows}}<tr><td>{{.Date}}</td><td>{{.Item}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.Price}}</td><td class="num">{{.Total}}</td><td class="num">{{.Profit}}</td></tr>
{{end}}</table>
<table class="summary">
<tr><td>Total revenue</td><td class="num">{{.TotalRevenue}}</td></tr>
<tr><td>Gross profit</td><td class="num">{{.TotalProfit}}</td></tr>
<tr><td>Expenses</td><td class="num">{{.TotalExpense}}</td></tr>
<tr><td><strong>Net profit</strong></td><td class="num"><strong>{{.NetProfit}}</strong></td></tr>
</table>
</body>
</html>`))
