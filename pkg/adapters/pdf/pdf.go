// Package pdf renders documents as A4 PDF files.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aretw0/docket/pkg/document"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/go-pdf/fpdf"
)

// margin is one inch in millimetres.
const margin = 25.4

// Format is the PDF file type.
var Format = ports.Format{Name: "PDF", Extension: ".pdf", MIMEType: "application/pdf"}

// Renderer implements ports.Renderer with the core Helvetica fonts.
type Renderer struct {
	creator string
}

// New creates a PDF renderer. creator is written into the document metadata.
func New(creator string) *Renderer {
	return &Renderer{creator: creator}
}

func (r *Renderer) Format() ports.Format { return Format }

// Render lays out the title, the name and address header, the date, the body
// paragraphs and a signature block.
func (r *Renderer) Render(ctx context.Context, req ports.RenderRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	layout, err := document.Build(req)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(layout.Title, true)
	if r.creator != "" {
		pdf.SetCreator(r.creator, true)
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}
	pdf.SetCreationDate(date)
	pdf.SetModificationDate(date)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(layout.Title), "", "C", false)
	pdf.Ln(12)

	labelled := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Write(6, tr(label+": "))
		pdf.SetFont("Helvetica", "", 12)
		pdf.Write(6, tr(value))
		pdf.Ln(8)
	}
	if layout.Name != "" {
		labelled("Name", layout.Name)
	}
	if layout.Address != "" {
		labelled("Address", layout.Address)
	}
	pdf.Ln(6)
	labelled("Date", layout.Date)
	pdf.Ln(6)

	for _, p := range layout.Paragraphs {
		switch p.Style {
		case document.StyleHeading, document.StyleEmphasis:
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, 6, tr(p.Text), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 5.6, tr(p.Text), "", "L", false)
		}
		pdf.Ln(3)
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, document.SignatureRule, "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 5, "Signature", "", 1, "R", false, 0, "")
	if layout.Name != "" {
		pdf.CellFormat(0, 5, tr("("+layout.Name+")"), "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return buf.Bytes(), nil
}
