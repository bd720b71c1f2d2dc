// Package layout turns extracted text into positioned lines on fixed-size pages.
//
// The wrap is greedy and single pass: words are appended to the current line until
// the next word would push the measured width past the usable width, at which point
// the line is flushed and the word starts a new one. Downstream documents depend on
// these exact break points, so the algorithm must stay greedy.
package layout

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// DefaultPageBreak is the sentinel that separates pages in extracted text.
const DefaultPageBreak = "\f"

// ErrMeasure wraps failures of the text measurement backend.
var ErrMeasure = errors.New("layout: text measurement failed")

// spaceClass is the whitespace set used for paragraph and word boundaries:
// ASCII space and controls, vertical tab, every Unicode separator (NBSP, em
// space, line and paragraph separators, ideographic space) and the BOM.
const spaceClass = `[\t\n\v\f\r \p{Z}\x{feff}]`

var (
	paragraphSep = regexp.MustCompile(`\n` + spaceClass + `*\n`)
	whitespace   = regexp.MustCompile(spaceClass + `+`)
)

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\ufeff':
		return true
	}
	return unicode.Is(unicode.Z, r)
}

// IsBlank reports whether text holds nothing but whitespace.
func IsBlank(text string) bool {
	return strings.TrimFunc(text, isSpace) == ""
}

// Block is one unit of input: literal text or a page-break marker.
type Block struct {
	Text      string
	PageBreak bool
}

// TextBlock returns a literal text block.
func TextBlock(text string) Block { return Block{Text: text} }

// PageBreakBlock returns a page-break marker block.
func PageBreakBlock() Block { return Block{PageBreak: true} }

// Config holds page geometry and typography, all in points.
type Config struct {
	PageWidth           float64
	PageHeight          float64
	MarginX             float64
	MarginTopY          float64
	MarginBottomY       float64
	FontSizePt          float64
	LineHeightPt        float64
	InterParagraphGapPt float64
}

// DefaultConfig is A4 portrait with 50pt margins and 12pt text on a 16pt line.
func DefaultConfig() Config {
	return Config{
		PageWidth:           595.28,
		PageHeight:          841.89,
		MarginX:             50,
		MarginTopY:          50,
		MarginBottomY:       50,
		FontSizePt:          12,
		LineHeightPt:        16,
		InterParagraphGapPt: 10,
	}
}

// MaxLineWidth is the usable width between the horizontal margins.
func (c Config) MaxLineWidth() float64 {
	return c.PageWidth - 2*c.MarginX
}

// Measurer reports the rendered width of text at the given font size.
type Measurer interface {
	Width(text string, sizePt float64) (float64, error)
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(text string, sizePt float64) (float64, error)

func (f MeasureFunc) Width(text string, sizePt float64) (float64, error) { return f(text, sizePt) }

// PlacedLine is a line of text anchored at (X, Y); Y grows upward from the bottom edge.
type PlacedLine struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Page is an ordered list of placed lines. Number starts at 1.
type Page struct {
	Number int          `json:"number"`
	Lines  []PlacedLine `json:"lines"`
}

// BlocksFromText cuts text on the page-break marker. Every marker becomes a
// PageBreak block; empty segments between markers are dropped.
func BlocksFromText(text, marker string) []Block {
	if marker == "" {
		marker = DefaultPageBreak
	}
	parts := strings.Split(text, marker)
	blocks := make([]Block, 0, 2*len(parts))
	for i, part := range parts {
		if i > 0 {
			blocks = append(blocks, PageBreakBlock())
		}
		if !IsBlank(part) {
			blocks = append(blocks, TextBlock(part))
		}
	}
	return blocks
}

// SplitParagraphs splits on blank lines, trims and drops empty paragraphs.
func SplitParagraphs(text string) []string {
	raw := paragraphSep.Split(text, -1)
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimFunc(p, isSpace); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeParagraph folds newlines and whitespace runs, Unicode spaces
// included, into single ASCII spaces.
func NormalizeParagraph(p string) string {
	p = strings.ReplaceAll(p, "\n", " ")
	return strings.TrimFunc(whitespace.ReplaceAllString(p, " "), isSpace)
}

// Paragraph is the word-processing view of a block sequence.
type Paragraph struct {
	Text      string
	PageBreak bool
}

// Paragraphs flattens blocks into normalized paragraphs and page-break markers,
// using the same splitting rules as Flow.
func Paragraphs(blocks []Block) []Paragraph {
	var out []Paragraph
	for _, b := range blocks {
		if b.PageBreak {
			out = append(out, Paragraph{PageBreak: true})
			continue
		}
		for _, p := range SplitParagraphs(b.Text) {
			out = append(out, Paragraph{Text: NormalizeParagraph(p)})
		}
	}
	return out
}
