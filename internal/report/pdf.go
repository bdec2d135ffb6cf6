package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Theme colors shared with the dashboard UI, as RGB triples.
// success #10b981, warning #f59e0b, danger #ef4444, neutral #6366f1.
var (
	rgbSuccess = [3]int{16, 185, 129}
	rgbWarning = [3]int{245, 158, 11}
	rgbDanger  = [3]int{239, 68, 68}
	rgbNeutral = [3]int{99, 102, 241}
	rgbHeader  = [3]int{30, 41, 59}
)

func statusColor(status string) [3]int {
	switch status {
	case "Healthy":
		return rgbSuccess
	case "Monitor":
		return rgbWarning
	case "Critical":
		return rgbDanger
	default:
		return rgbNeutral
	}
}

func newDoc(title, subtitle string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	// Title band.
	pdf.SetFillColor(rgbHeader[0], rgbHeader[1], rgbHeader[2])
	pdf.Rect(0, 0, 210, 26, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(12, 6)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetX(12)
	pdf.CellFormat(0, 6, subtitle, "", 1, "L", false, 0, "")

	pdf.SetTextColor(20, 20, 20)
	pdf.SetY(34)
	return pdf
}

// statTiles draws a row of label/value tiles like the dashboard stat cards.
func statTiles(pdf *gofpdf.Fpdf, tiles [][2]string) {
	const w, h = 45.0, 16.0
	x := 12.0
	y := pdf.GetY()
	for _, t := range tiles {
		pdf.SetFillColor(241, 245, 249)
		pdf.Rect(x, y, w, h, "F")
		pdf.SetXY(x+3, y+2)
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetTextColor(100, 116, 139)
		pdf.CellFormat(w-6, 4, strings.ToUpper(t[0]), "", 1, "L", false, 0, "")
		pdf.SetX(x + 3)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(w-6, 6, t[1], "", 1, "L", false, 0, "")
		x += w + 4
	}
	pdf.SetY(y + h + 8)
}

func tableHeader(pdf *gofpdf.Fpdf, cols []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(226, 232, 240)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetX(12)
	for i, c := range cols {
		pdf.CellFormat(widths[i], 7, c, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 8)
}

func fmtScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *score)
}

// RenderDashboardPDF lays the dashboard report out as stat tiles plus one
// color-coded row per batch.
func RenderDashboardPDF(r *DashboardReport) ([]byte, error) {
	pdf := newDoc("Motor Health - Dashboard Report",
		fmt.Sprintf("User %s - generated %s", r.UserID, r.GeneratedAt.Format("2006-01-02 15:04 UTC")))

	anomalies := 0
	pending := 0
	for _, b := range r.Batches {
		anomalies += b.AnomalyCount
		if b.HealthScore == nil {
			pending++
		}
	}
	statTiles(pdf, [][2]string{
		{"Batches", fmt.Sprintf("%d", len(r.Batches))},
		{"Total anomalies", fmt.Sprintf("%d", anomalies)},
		{"Pending", fmt.Sprintf("%d", pending)},
	})

	widths := []float64{62, 42, 26, 28, 28}
	tableHeader(pdf, []string{"Batch", "Timestamp", "Status", "Score", "Anomalies"}, widths)
	for _, b := range r.Batches {
		c := statusColor(b.HealthStatus)
		pdf.SetX(12)
		pdf.CellFormat(widths[0], 6, b.BatchID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, b.Timestamp, "1", 0, "L", false, 0, "")
		pdf.SetTextColor(c[0], c[1], c[2])
		pdf.CellFormat(widths[2], 6, b.HealthStatus, "1", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(widths[3], 6, fmtScore(b.HealthScore), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%d", b.AnomalyCount), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render dashboard pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderBatchPDF lays one batch out: summary tiles, the per-component
// health table and the anomaly timeline.
func RenderBatchPDF(r *BatchReport) ([]byte, error) {
	pdf := newDoc("Motor Health - Batch Report",
		fmt.Sprintf("Batch %s - user %s - cached %s", r.BatchID, r.UserID, r.CachedAt.Format("2006-01-02 15:04 UTC")))

	if ps := r.ProcessedSummary; ps != nil {
		statTiles(pdf, [][2]string{
			{"Windows", fmt.Sprintf("%d", ps.TotalWindows)},
			{"Anomalous windows", fmt.Sprintf("%d", ps.AnomalyWindows)},
			{"Avg recon error", fmt.Sprintf("%.3f", ps.AvgReconstructionError)},
		})

		widths := []float64{46, 46, 46}
		tableHeader(pdf, []string{"Component", "Avg confidence", "Anomalies"}, widths)
		for _, name := range componentOrder(ps.ComponentHealth) {
			ch := ps.ComponentHealth[name]
			pdf.SetX(12)
			pdf.CellFormat(widths[0], 6, name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 6, fmt.Sprintf("%.3f", ch.AvgConfidence), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[2], 6, fmt.Sprintf("%d", ch.Anomalies), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(6)
	} else {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, "Summary pending - batch not processed yet.", "", 1, "L", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, "Anomaly timeline", "", 1, "L", false, 0, "")
	widths := []float64{30, 60, 40}
	tableHeader(pdf, []string{"Window", "Status", "Anomalies"}, widths)
	for _, t := range r.Timeline {
		pdf.SetX(12)
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", t.WindowIndex), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[1], 6, t.SystemHealthStatus, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%d", t.AnomalyCount), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render batch pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderWindowPDF lays one window out: overall verdict, per-component
// detail and the LSTM forecast shape.
func RenderWindowPDF(r *WindowReport) ([]byte, error) {
	pdf := newDoc("Motor Health - Window Report",
		fmt.Sprintf("Batch %s - window %d", r.BatchID, r.WindowIndex))

	if r.Overall != nil {
		statTiles(pdf, [][2]string{
			{"System status", r.Overall.SystemHealthStatus},
			{"Anomalies", fmt.Sprintf("%d", r.Overall.AnomalyCount)},
			{"Recon error", fmt.Sprintf("%.3f", r.Overall.OverallReconstructionError)},
		})
	}

	widths := []float64{34, 32, 30, 24, 66}
	tableHeader(pdf, []string{"Component", "Recon error", "Confidence", "Anomaly", "Top features"}, widths)
	for _, c := range r.Components {
		anomaly := "-"
		color := rgbSuccess
		if c.IsAnomaly {
			anomaly = fmt.Sprintf("sev %.2f", c.AnomalySeverity)
			color = rgbDanger
		}
		pdf.SetX(12)
		pdf.CellFormat(widths[0], 6, c.Component, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%.4f", c.ReconstructionError), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f", c.ConfidenceScore), "1", 0, "R", false, 0, "")
		pdf.SetTextColor(color[0], color[1], color[2])
		pdf.CellFormat(widths[3], 6, anomaly, "1", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(widths[4], 6, strings.Join(c.Top3Features, ", "), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 9)
	if r.Attention != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Attention weights recorded for %d feature groups.", len(r.Attention)), "", 1, "L", false, 0, "")
	}
	if r.LSTM != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("LSTM forecast: %d steps x %d features.", len(r.LSTM.Steps), len(r.LSTM.Features)), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, "No LSTM forecast for this window.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render window pdf: %w", err)
	}
	return buf.Bytes(), nil
}
