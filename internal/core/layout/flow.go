package layout

import (
	"fmt"
	"strings"
)

// flow carries the per-call cursor state. It is never shared between calls.
type flow struct {
	cfg      Config
	measurer Measurer
	pages    []Page
	cur      *Page
	y        float64
}

// Flow lays blocks out onto pages. Empty input yields zero pages. A measurement
// error aborts the call and is returned wrapped in ErrMeasure.
func Flow(blocks []Block, cfg Config, m Measurer) ([]Page, error) {
	f := &flow{cfg: cfg, measurer: m}
	for _, b := range blocks {
		if b.PageBreak {
			f.newPage()
			continue
		}
		for _, p := range SplitParagraphs(b.Text) {
			if err := f.paragraph(NormalizeParagraph(p)); err != nil {
				return nil, err
			}
		}
	}
	return f.pages, nil
}

func (f *flow) newPage() {
	f.pages = append(f.pages, Page{Number: len(f.pages) + 1})
	f.cur = &f.pages[len(f.pages)-1]
	f.y = f.cfg.PageHeight - f.cfg.MarginTopY
}

func (f *flow) paragraph(text string) error {
	maxWidth := f.cfg.MaxLineWidth()
	line := ""
	for _, word := range strings.Split(text, " ") {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		w, err := f.measurer.Width(candidate, f.cfg.FontSizePt)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMeasure, err)
		}
		if w > maxWidth && line != "" {
			f.flush(line)
			line = word
		} else {
			line = candidate
		}
	}
	if line != "" {
		f.flush(line)
	}
	f.y -= f.cfg.InterParagraphGapPt
	return nil
}

func (f *flow) flush(line string) {
	if f.cur == nil || f.y < f.cfg.MarginBottomY {
		f.newPage()
	}
	f.cur.Lines = append(f.cur.Lines, PlacedLine{Text: line, X: f.cfg.MarginX, Y: f.y})
	f.y -= f.cfg.LineHeightPt
}
