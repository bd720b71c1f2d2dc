// Package render writes laid out text into PDF and Word files.
package render

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/avatarctic/docflow/internal/core/domain/document"
	"github.com/avatarctic/docflow/internal/core/layout"
)

const fontFamily = "Helvetica"

func newPDF(cfg layout.Config) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: cfg.PageWidth, Ht: cfg.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont(fontFamily, "", cfg.FontSizePt)
	return pdf
}

// HelveticaMeasurer measures text with the same core font metrics the PDF
// renderer draws with. fpdf documents are not goroutine safe, hence the lock.
type HelveticaMeasurer struct {
	mu  sync.Mutex
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func NewHelveticaMeasurer() *HelveticaMeasurer {
	pdf := newPDF(layout.DefaultConfig())
	return &HelveticaMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *HelveticaMeasurer) Width(text string, sizePt float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFontSize(sizePt)
	w := m.pdf.GetStringWidth(m.tr(text))
	// fpdf errors are sticky; reset so one bad call does not fail the next.
	if err := m.pdf.Error(); err != nil {
		m.pdf.ClearError()
		return 0, err
	}
	return w, nil
}

// PDFRenderer flows blocks with the layout engine and draws each placed line.
type PDFRenderer struct {
	cfg      layout.Config
	measurer layout.Measurer
	// now stamps the document metadata; fixed in tests for stable output.
	now func() time.Time
}

func NewPDFRenderer(cfg layout.Config, m layout.Measurer) *PDFRenderer {
	if m == nil {
		m = NewHelveticaMeasurer()
	}
	return &PDFRenderer{cfg: cfg, measurer: m, now: time.Now}
}

func (r *PDFRenderer) Format() document.Format { return document.FormatPDF }

// Render returns the PDF bytes. Input without text still yields one blank page.
func (r *PDFRenderer) Render(blocks []layout.Block) ([]byte, error) {
	pages, err := layout.Flow(blocks, r.cfg, r.measurer)
	if err != nil {
		return nil, err
	}

	pdf := newPDF(r.cfg)
	stamp := r.now()
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCreator("docflow", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if len(pages) == 0 {
		pdf.AddPage()
	}
	for _, p := range pages {
		pdf.AddPage()
		for _, l := range p.Lines {
			// layout measures y from the bottom edge, fpdf from the top.
			pdf.Text(l.X, r.cfg.PageHeight-l.Y, tr(l.Text))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
