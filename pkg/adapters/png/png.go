// Package png renders documents as a single A4 page image.
//
// Text that overflows the page is cut at the bottom margin; callers that need
// pagination should use the PDF renderer.
package png

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"sync"

	"github.com/aretw0/docket/pkg/document"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// A4 at 150 DPI.
const (
	PageWidth  = 1240
	PageHeight = 1754
	margin     = 150
)

// Format is the PNG file type.
var Format = ports.Format{Name: "PNG", Extension: ".png", MIMEType: "image/png"}

var loadFonts = sync.OnceValues(func() (fonts, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fonts{}, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return fonts{}, fmt.Errorf("parse bold font: %w", err)
	}
	return fonts{regular: regular, bold: bold}, nil
})

type fonts struct {
	regular *truetype.Font
	bold    *truetype.Font
}

func (f fonts) face(bold bool, size float64) font.Face {
	src := f.regular
	if bold {
		src = f.bold
	}
	return truetype.NewFace(src, &truetype.Options{Size: size, DPI: 150, Hinting: font.HintingFull})
}

// Renderer implements ports.Renderer.
type Renderer struct{}

// New creates a PNG renderer.
func New() *Renderer { return &Renderer{} }

func (r *Renderer) Format() ports.Format { return Format }

func (r *Renderer) Render(ctx context.Context, req ports.RenderRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	layout, err := document.Build(req)
	if err != nil {
		return nil, err
	}
	fs, err := loadFonts()
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(PageWidth, PageHeight)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)

	width := float64(PageWidth - 2*margin)
	y := float64(margin)

	// Faces are created per render because truetype faces keep a glyph cache.
	dc.SetFontFace(fs.face(true, 18))
	for _, line := range dc.WordWrap(layout.Title, width) {
		dc.DrawStringAnchored(line, PageWidth/2, y, 0.5, 1)
		y += dc.FontHeight() * 1.4
	}
	y += 40

	body := fs.face(false, 11)
	strong := fs.face(true, 11)
	labelled := func(label, value string) {
		dc.SetFontFace(strong)
		dc.DrawStringAnchored(label+": ", margin, y, 0, 1)
		lw, _ := dc.MeasureString(label + ": ")
		dc.SetFontFace(body)
		dc.DrawStringAnchored(value, margin+lw, y, 0, 1)
		y += dc.FontHeight() * 1.6
	}
	if layout.Name != "" {
		labelled("Name", layout.Name)
	}
	if layout.Address != "" {
		labelled("Address", layout.Address)
	}
	y += 20
	labelled("Date", layout.Date)
	y += 20

	bottom := float64(PageHeight - margin)
	for _, p := range layout.Paragraphs {
		if p.Style == document.StyleBody {
			dc.SetFontFace(body)
		} else {
			dc.SetFontFace(strong)
		}
		for _, line := range dc.WordWrap(p.Text, width) {
			if y > bottom {
				break
			}
			dc.DrawStringAnchored(line, margin, y, 0, 1)
			y += dc.FontHeight() * 1.4
		}
		y += dc.FontHeight() * 0.6
	}

	y += 60
	right := float64(PageWidth - margin)
	dc.SetFontFace(fs.face(false, 10))
	sig := []string{document.SignatureRule, "Signature"}
	if layout.Name != "" {
		sig = append(sig, "("+layout.Name+")")
	}
	for _, line := range sig {
		if y > bottom {
			break
		}
		dc.DrawStringAnchored(line, right, y, 1, 1)
		y += dc.FontHeight() * 1.4
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("png: %w", err)
	}
	return buf.Bytes(), nil
}
