// Package report renders assessment summaries as PDF documents.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	HighRisk = "High Risk"
	LowRisk  = "Low Risk"

	timestampLayout = "2006-01-02 15:04"
)

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Report struct {
	ID          string
	Disease     string
	PatientName string
	Inputs      []Field
	Prediction  string
	RiskPercent float64
	GeneratedAt time.Time
}

// Renderer turns a Report into document bytes. A nil Renderer means reports
// are unavailable.
type Renderer interface {
	Render(r Report) ([]byte, error)
}

type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func PatientName(name string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return "Unknown"
}

// Filename follows {Disease}_Report_{Patient}.pdf with spaces as underscores.
func Filename(disease, patient string) string {
	return fmt.Sprintf("%s_Report_%s.pdf",
		strings.ReplaceAll(disease, " ", "_"),
		strings.ReplaceAll(PatientName(patient), " ", "_"))
}

var (
	navy      = [3]int{26, 33, 62}
	panel     = [3]int{240, 245, 250}
	riskRed   = [3]int{244, 67, 54}
	riskGreen = [3]int{76, 175, 80}
)

func (PDFRenderer) Render(r Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetTitle("Disease Prediction Report", true)
	if r.ID != "" {
		pdf.SetSubject(r.ID, true)
	}
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	left, top, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	width := pageW - left - right

	pdf.SetFillColor(navy[0], navy[1], navy[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Rect(left, top, width, 16, "F")
	pdf.SetXY(left+4, top+4)
	pdf.CellFormat(width-8, 8, "Disease Prediction Report", "", 0, "", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(20)
	pdf.SetFont("Helvetica", "", 11)
	leftCol := width * 0.6
	rightCol := width - leftCol
	pdf.CellFormat(leftCol, 7, "Generated: "+r.GeneratedAt.Format(timestampLayout), "", 0, "", false, 0, "")
	pdf.CellFormat(rightCol, 7, tr("Condition: "+r.Disease), "", 1, "", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(width, 8, tr("Patient Name: "+PatientName(r.PatientName)), "", 1, "", false, 0, "")
	pdf.Ln(2)

	section(pdf, width, "Inputs")
	const labelW = 55
	for _, f := range r.Inputs {
		pdf.SetX(left)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(labelW, 7, tr(f.Label), "", 0, "", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(width-labelW, 7, tr(f.Value), "", "", false)
	}

	pdf.Ln(2)
	section(pdf, width, "Result")
	color := riskGreen
	if r.Prediction == HighRisk {
		color = riskRed
	}
	pdf.SetTextColor(color[0], color[1], color[2])
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(width, 7, "Prediction: "+r.Prediction, "", 1, "", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(width, 7, fmt.Sprintf("Risk Level: %.1f%%", r.RiskPercent), "", 1, "", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *fpdf.Fpdf, width float64, title string) {
	pdf.SetFillColor(panel[0], panel[1], panel[2])
	pdf.SetTextColor(navy[0], navy[1], navy[2])
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(width, 8, title, "", 1, "", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
}
