package render

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/docflow/internal/core/layout"
)

func TestHelveticaMeasurer(t *testing.T) {
	m := NewHelveticaMeasurer()

	empty, err := m.Width("", 12)
	require.NoError(t, err)
	assert.Zero(t, empty)

	short, err := m.Width("The quick", 12)
	require.NoError(t, err)
	long, err := m.Width("The quick brown", 12)
	require.NoError(t, err)
	assert.Greater(t, long, short)

	double, err := m.Width("The quick", 24)
	require.NoError(t, err)
	assert.InDelta(t, 2*short, double, 1e-6)

	// Helvetica "i" is narrower than "W".
	i, _ := m.Width("i", 12)
	w, _ := m.Width("W", 12)
	assert.Less(t, i, w)
}

func TestHelveticaMeasurer_ErrorDoesNotStick(t *testing.T) {
	m := NewHelveticaMeasurer()
	m.pdf.SetError(errors.New("font state corrupted"))

	_, err := m.Width("hello", 12)
	require.EqualError(t, err, "font state corrupted")

	w, err := m.Width("hello", 12)
	require.NoError(t, err)
	assert.Greater(t, w, 0.0)
}

func TestPDFRenderer_ProducesPagesPerBreak(t *testing.T) {
	r := NewPDFRenderer(layout.DefaultConfig(), nil)
	r.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	out, err := r.Render([]layout.Block{
		layout.TextBlock("Paragraph A"),
		layout.PageBreakBlock(),
		layout.TextBlock("Paragraph B with café"),
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, 2, bytes.Count(out, []byte("/Type /Page\n")))

	again, err := r.Render([]layout.Block{
		layout.TextBlock("Paragraph A"),
		layout.PageBreakBlock(),
		layout.TextBlock("Paragraph B with café"),
	})
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestPDFRenderer_EmptyInputHasOneBlankPage(t *testing.T) {
	out, err := NewPDFRenderer(layout.DefaultConfig(), nil).Render(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(out, []byte("/Type /Page\n")))
}

func TestPDFRenderer_MeasureErrorAborts(t *testing.T) {
	failing := layout.MeasureFunc(func(string, float64) (float64, error) { return 0, io.ErrUnexpectedEOF })
	_, err := NewPDFRenderer(layout.DefaultConfig(), failing).Render([]layout.Block{layout.TextBlock("x")})
	require.ErrorIs(t, err, layout.ErrMeasure)
}

func readDocumentXML(t *testing.T, docx []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	var body string
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			body = string(b)
		}
	}
	require.Equal(t, []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml"}, names)
	return body
}

func TestWordRenderer_ParagraphsAndBreaks(t *testing.T) {
	out, err := NewWordRenderer().Render([]layout.Block{
		layout.TextBlock("First  line\nwraps\n\nSecond & <third>"),
		layout.PageBreakBlock(),
		layout.TextBlock("Next page"),
	})
	require.NoError(t, err)

	body := readDocumentXML(t, out)
	assert.Equal(t, 3, strings.Count(body, `<w:sz w:val="24"/>`))
	assert.Equal(t, 3, strings.Count(body, `<w:spacing w:after="200"/>`))
	assert.Contains(t, body, `>First line wraps<`)
	assert.Contains(t, body, `>Second &amp; &lt;third&gt;<`)
	assert.Equal(t, 1, strings.Count(body, `<w:br w:type="page"/>`))
	assert.Less(t, strings.Index(body, "Second"), strings.Index(body, `w:type="page"`))
	assert.Less(t, strings.Index(body, `w:type="page"`), strings.Index(body, "Next page"))
}

func TestWordRenderer_Deterministic(t *testing.T) {
	blocks := []layout.Block{layout.TextBlock("same input")}
	a, err := NewWordRenderer().Render(blocks)
	require.NoError(t, err)
	b, err := NewWordRenderer().Render(blocks)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
