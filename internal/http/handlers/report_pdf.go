package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"restaurant-admin-service/internal/reports"
	"restaurant-admin-service/internal/utils"
	"restaurant-admin-service/pkg/response"

	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

// AdminSalesReportPDF exports the report as a downloadable PDF. The
// core fonts cannot shape Arabic script, so the export uses English
// labels and ASCII numerals; the print endpoint carries the Arabic
// rendering.
func (h *Handler) AdminSalesReportPDF(w http.ResponseWriter, r *http.Request) {
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
		h.Logger.Error("failed to build pdf report", zapError(err), zap.Int64("branch_id", period.branchID))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to build report")
		return
	}

	buf, err := renderReportPDF(branchName, period, summary, utils.NowInTimezone(h.Config.BranchTimezone))
	if err != nil {
		h.Logger.Error("failed to render pdf report", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate report")
		return
	}

	filename := fmt.Sprintf("sales_report_%s.pdf", sanitizeFilename(branchName))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func sanitizeFilename(value string) string {
	re := regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	clean := re.ReplaceAllString(value, "_")
	clean = strings.Trim(clean, "_")
	if clean == "" {
		clean = "branch"
	}
	return clean
}

func pdfPeriodLabel(period reportPeriod) string {
	if period.start == nil || period.end == nil {
		return "Full history"
	}
	return period.start.Format("02/01/2006") + " - " + period.end.Format("02/01/2006")
}

func renderReportPDF(branchName string, period reportPeriod, summary reports.Summary, generatedAt time.Time) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 9, "Sales Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, branchName, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, pdfPeriodLabel(period), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, "Summary", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total sales: %.2f EGP", summary.TotalSales), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Total orders: %d", summary.TotalOrders), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Delivery orders: %d", summary.DeliveryOrders), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Pickup orders: %d", summary.PickupOrders), "", 1, "L", false, 0, "")

	if len(summary.TopProducts) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, "Top Products", "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(90, 6, "Product", "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, "Quantity", "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, "Revenue", "1", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, product := range summary.TopProducts {
			pdf.CellFormat(90, 6, product.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%d", product.Quantity), "1", 0, "R", false, 0, "")
			pdf.CellFormat(50, 6, fmt.Sprintf("%.2f EGP", product.Revenue), "1", 1, "R", false, 0, "")
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
