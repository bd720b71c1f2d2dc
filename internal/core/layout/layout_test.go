package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avatarctic/docflow/internal/core/layout"
)

func TestSplitParagraphs(t *testing.T) {
	got := layout.SplitParagraphs("  first line\nstill first \n\n\nsecond\n \t\nthird  ")
	assert.Equal(t, []string{"first line\nstill first", "second", "third"}, got)
	assert.Empty(t, layout.SplitParagraphs("\n\n   \n"))
}

func TestNormalizeParagraph(t *testing.T) {
	assert.Equal(t, "a b c", layout.NormalizeParagraph(" a\nb \t  c\n"))
}

func TestBlocksFromText(t *testing.T) {
	blocks := layout.BlocksFromText("page one\fpage two\f\fpage four", layout.DefaultPageBreak)
	assert.Equal(t, []layout.Block{
		layout.TextBlock("page one"),
		layout.PageBreakBlock(),
		layout.TextBlock("page two"),
		layout.PageBreakBlock(),
		layout.PageBreakBlock(),
		layout.TextBlock("page four"),
	}, blocks)
}

func TestBlocksFromText_CustomMarker(t *testing.T) {
	blocks := layout.BlocksFromText("a<<BREAK>>b", "<<BREAK>>")
	assert.Len(t, blocks, 3)
	assert.True(t, blocks[1].PageBreak)
}

func TestParagraphs(t *testing.T) {
	got := layout.Paragraphs([]layout.Block{
		layout.TextBlock("one\ntwo\n\nthree"),
		layout.PageBreakBlock(),
		layout.TextBlock("four"),
	})
	assert.Equal(t, []layout.Paragraph{
		{Text: "one two"},
		{Text: "three"},
		{PageBreak: true},
		{Text: "four"},
	}, got)
}

func TestDefaultConfig_MaxLineWidth(t *testing.T) {
	assert.InDelta(t, 495.28, layout.DefaultConfig().MaxLineWidth(), 1e-9)
}

func TestSplitParagraphs_UnicodeBlankLine(t *testing.T) {
	assert.Equal(t, []string{"Alpha", "Beta"}, layout.SplitParagraphs("Alpha\n\u00a0\nBeta"))
	assert.Equal(t, []string{"Alpha", "Beta"}, layout.SplitParagraphs("\ufeffAlpha\n\u3000\u2028\nBeta\u00a0"))
}

func TestNormalizeParagraph_UnicodeWhitespace(t *testing.T) {
	assert.Equal(t, "Alpha Beta", layout.NormalizeParagraph("Alpha\u00a0\u00a0\u00a0Beta"))
	assert.Equal(t, "Alpha Beta", layout.NormalizeParagraph("Alpha\v\vBeta"))
	assert.Equal(t, "Alpha Beta Gamma", layout.NormalizeParagraph("\ufeffAlpha\u2003Beta\u202fGamma\u3000"))
}

func TestBlocksFromText_DropsUnicodeBlankSegments(t *testing.T) {
	blocks := layout.BlocksFromText("a\f\u00a0\u2003\fb", layout.DefaultPageBreak)
	assert.Equal(t, []layout.Block{
		layout.TextBlock("a"),
		layout.PageBreakBlock(),
		layout.PageBreakBlock(),
		layout.TextBlock("b"),
	}, blocks)
}

func TestIsBlank(t *testing.T) {
	assert.True(t, layout.IsBlank(""))
	assert.True(t, layout.IsBlank(" \t\v\u00a0\u3000\ufeff\n"))
	assert.False(t, layout.IsBlank("\u00a0x"))
}
