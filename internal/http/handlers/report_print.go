package handlers

import (
	"html/template"
	"net/http"

	"restaurant-admin-service/internal/arabic"
	"restaurant-admin-service/pkg/response"

	"go.uber.org/zap"
)

// printTemplate is the self-contained RTL page the cashier printer
// renders. Inline styles only, no external assets.
var printTemplate = template.Must(template.New("report").Parse(`<!doctype html>
<html dir="rtl" lang="ar">
<head>
<meta charset="utf-8">
<title>تقرير المبيعات</title>
<style>
body { font-family: "Segoe UI", Tahoma, sans-serif; direction: rtl; margin: 24px; color: #1a1a1a; }
h1 { font-size: 20px; margin-bottom: 4px; }
.period { color: #555; margin-bottom: 16px; }
table { width: 100%; border-collapse: collapse; margin-top: 12px; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: right; }
th { background: #f2f2f2; }
.totals td { font-weight: bold; }
</style>
</head>
<body>
<h1>تقرير المبيعات - {{.BranchName}}</h1>
<div class="period">{{.DateRange}}</div>
<table>
<tr class="totals"><td>إجمالي المبيعات</td><td>{{.TotalSales}}</td></tr>
<tr><td>عدد الطلبات</td><td>{{.TotalOrders}}</td></tr>
<tr><td>طلبات التوصيل</td><td>{{.DeliveryOrders}}</td></tr>
<tr><td>طلبات الاستلام</td><td>{{.PickupOrders}}</td></tr>
</table>
{{if .TopProducts}}
<table>
<tr><th>الصنف</th><th>الكمية</th><th>الإيراد</th></tr>
{{range .TopProducts}}
<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Revenue}}</td></tr>
{{end}}
</table>
{{end}}
<script>window.print();</script>
</body>
</html>`))

type printProduct struct {
	Name     string
	Quantity string
	Revenue  string
}

type printPage struct {
	BranchName     string
	DateRange      string
	TotalSales     string
	TotalOrders    string
	DeliveryOrders string
	PickupOrders   string
	TopProducts    []printProduct
}

func (h *Handler) AdminSalesReportPrint(w http.ResponseWriter, r *http.Request) {
	period, err := h.readReportPeriod(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	var branchName string
	if err := h.DB.QueryRow(r.Context(),
		`select name from branches where id = $1`, period.branchID).Scan(&branchName); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Branch not found")
		return
	}

	summary, err := h.reportSummary(r, period)
	if err != nil {
		h.Logger.Error("failed to build print report", zapError(err), zap.Int64("branch_id", period.branchID))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to build report")
		return
	}

	page := printPage{
		BranchName:     branchName,
		DateRange:      summary.DateRange,
		TotalSales:     arabic.FormatCurrency(summary.TotalSales),
		TotalOrders:    arabic.FormatCount(float64(summary.TotalOrders)),
		DeliveryOrders: arabic.FormatCount(float64(summary.DeliveryOrders)),
		PickupOrders:   arabic.FormatCount(float64(summary.PickupOrders)),
	}
	for _, product := range summary.TopProducts {
		page.TopProducts = append(page.TopProducts, printProduct{
			Name:     product.Name,
			Quantity: arabic.FormatCount(float64(product.Quantity)),
			Revenue:  arabic.FormatCurrency(product.Revenue),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := printTemplate.Execute(w, page); err != nil {
		h.Logger.Error("failed to render print report", zapError(err))
	}
}
