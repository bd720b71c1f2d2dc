package layout_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/docflow/internal/core/layout"
)

// charWidth measures one point per byte.
var charWidth = layout.MeasureFunc(func(text string, _ float64) (float64, error) {
	return float64(len(text)), nil
})

func narrowConfig(width float64) layout.Config {
	return layout.Config{
		PageWidth:           width,
		PageHeight:          100,
		MarginX:             0,
		MarginTopY:          10,
		MarginBottomY:       10,
		FontSizePt:          12,
		LineHeightPt:        10,
		InterParagraphGapPt: 5,
	}
}

func pageTexts(p layout.Page) []string {
	out := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		out = append(out, l.Text)
	}
	return out
}

func TestFlow_GreedyWrapThreeWordsPerLine(t *testing.T) {
	// "The quick brown" is 15 wide, adding " fox" makes 19.
	pages, err := layout.Flow([]layout.Block{layout.TextBlock("The quick brown fox jumps")}, narrowConfig(16), charWidth)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, []string{"The quick brown", "fox jumps"}, pageTexts(pages[0]))
}

func TestFlow_LinePositions(t *testing.T) {
	cfg := narrowConfig(16)
	cfg.MarginX = 3
	cfg.PageWidth = 22
	pages, err := layout.Flow([]layout.Block{layout.TextBlock("The quick brown fox jumps")}, cfg, charWidth)
	require.NoError(t, err)
	require.Len(t, pages[0].Lines, 2)
	assert.Equal(t, layout.PlacedLine{Text: "The quick brown", X: 3, Y: 90}, pages[0].Lines[0])
	assert.Equal(t, layout.PlacedLine{Text: "fox jumps", X: 3, Y: 80}, pages[0].Lines[1])
}

func TestFlow_ParagraphGapAndNormalization(t *testing.T) {
	text := "alpha\nbeta   gamma\n\n  \n\ndelta"
	pages, err := layout.Flow([]layout.Block{layout.TextBlock(text)}, narrowConfig(200), charWidth)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Equal(t, []string{"alpha beta gamma", "delta"}, pageTexts(pages[0]))
	// 90 for the first line, then one line advance plus the paragraph gap.
	assert.Equal(t, 90.0, pages[0].Lines[0].Y)
	assert.Equal(t, 75.0, pages[0].Lines[1].Y)
}

func TestFlow_PageBreakSeparatesParagraphs(t *testing.T) {
	blocks := []layout.Block{
		layout.TextBlock("Paragraph A"),
		layout.PageBreakBlock(),
		layout.TextBlock("Paragraph B"),
	}
	pages, err := layout.Flow(blocks, layout.DefaultConfig(), charWidth)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(pages), 2)
	assert.Equal(t, []string{"Paragraph A"}, pageTexts(pages[0]))
	assert.Equal(t, []string{"Paragraph B"}, pageTexts(pages[1]))
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, 2, pages[1].Number)
}

func TestFlow_ConsecutivePageBreaksYieldEmptyPage(t *testing.T) {
	blocks := []layout.Block{
		layout.TextBlock("one"),
		layout.PageBreakBlock(),
		layout.PageBreakBlock(),
		layout.TextBlock("two"),
	}
	pages, err := layout.Flow(blocks, layout.DefaultConfig(), charWidth)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Empty(t, pages[1].Lines)
	assert.Equal(t, []string{"two"}, pageTexts(pages[2]))
}

func TestFlow_PaginatesWhenCursorPassesBottomMargin(t *testing.T) {
	var words []string
	for i := 0; i < 30; i++ {
		words = append(words, fmt.Sprintf("w%02d", i))
	}
	// One word per line: each word is 3 wide, two words would be 7.
	pages, err := layout.Flow([]layout.Block{layout.TextBlock(strings.Join(words, " "))}, narrowConfig(5), charWidth)
	require.NoError(t, err)
	require.Greater(t, len(pages), 1)

	total := 0
	for _, p := range pages {
		for _, l := range p.Lines {
			assert.GreaterOrEqual(t, l.Y, 10.0)
			assert.LessOrEqual(t, l.Y, 90.0)
		}
		total += len(p.Lines)
	}
	assert.Equal(t, 30, total)
	// 90 down to 10 inclusive fits nine lines per page.
	assert.Len(t, pages[0].Lines, 9)
}

func TestFlow_OversizedWordStaysOnOneLine(t *testing.T) {
	pages, err := layout.Flow([]layout.Block{layout.TextBlock("Supercalifragilistic")}, narrowConfig(5), charWidth)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, []string{"Supercalifragilistic"}, pageTexts(pages[0]))
}

func TestFlow_ZeroUsableWidthPutsOneWordPerLine(t *testing.T) {
	cfg := narrowConfig(20)
	cfg.MarginX = 10
	pages, err := layout.Flow([]layout.Block{layout.TextBlock("a b c")}, cfg, charWidth)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, pageTexts(pages[0]))
}

func TestFlow_EmptyInputYieldsNoPages(t *testing.T) {
	pages, err := layout.Flow(nil, layout.DefaultConfig(), charWidth)
	require.NoError(t, err)
	assert.Empty(t, pages)

	pages, err = layout.Flow([]layout.Block{layout.TextBlock(" \n\n \t ")}, layout.DefaultConfig(), charWidth)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestFlow_Deterministic(t *testing.T) {
	blocks := []layout.Block{
		layout.TextBlock("Lorem ipsum dolor sit amet, consectetur adipiscing elit.\n\nSed do eiusmod tempor."),
		layout.PageBreakBlock(),
		layout.TextBlock("Ut enim ad minim veniam, quis nostrud exercitation."),
	}
	first, err := layout.Flow(blocks, narrowConfig(24), charWidth)
	require.NoError(t, err)
	second, err := layout.Flow(blocks, narrowConfig(24), charWidth)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFlow_MeasureErrorIsReturned(t *testing.T) {
	boom := errors.New("font not loaded")
	failing := layout.MeasureFunc(func(string, float64) (float64, error) { return 0, boom })
	_, err := layout.Flow([]layout.Block{layout.TextBlock("hello")}, layout.DefaultConfig(), failing)
	require.Error(t, err)
	assert.ErrorIs(t, err, layout.ErrMeasure)
}

func TestFlow_UnicodeSpacesCollapseBeforeWrapping(t *testing.T) {
	// "Alpha Beta" is 10 wide once the em spaces fold; adding " Gamma" makes 16.
	pages, err := layout.Flow([]layout.Block{layout.TextBlock("Alpha\u2003\u2003Beta\u00a0Gamma")}, narrowConfig(12), charWidth)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, []string{"Alpha Beta", "Gamma"}, pageTexts(pages[0]))
}
