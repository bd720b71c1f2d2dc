package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/avatarctic/docflow/internal/core/domain/document"
	"github.com/avatarctic/docflow/internal/core/layout"
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	documentHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	documentTail = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1000" w:right="1000" w:bottom="1000" w:left="1000" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr></w:body></w:document>`

	pageBreakXML = `<w:p><w:r><w:br w:type="page"/></w:r></w:p>`
)

// WordRenderer writes one WordprocessingML paragraph per layout paragraph.
type WordRenderer struct {
	// FontHalfPoints is the run size in half points (24 = 12pt).
	FontHalfPoints int
	// SpacingAfter is the gap after each paragraph in twentieths of a point.
	SpacingAfter int
}

func NewWordRenderer() *WordRenderer {
	return &WordRenderer{FontHalfPoints: 24, SpacingAfter: 200}
}

func (r *WordRenderer) Format() document.Format { return document.FormatWord }

func (r *WordRenderer) Render(blocks []layout.Block) ([]byte, error) {
	var body strings.Builder
	body.WriteString(documentHead)
	for _, p := range layout.Paragraphs(blocks) {
		if p.PageBreak {
			body.WriteString(pageBreakXML)
			continue
		}
		fmt.Fprintf(&body, `<w:p><w:pPr><w:spacing w:after="%d"/></w:pPr><w:r><w:rPr><w:sz w:val="%d"/></w:rPr><w:t xml:space="preserve">`,
			r.SpacingAfter, r.FontHalfPoints)
		if err := xml.EscapeText(&body, []byte(p.Text)); err != nil {
			return nil, fmt.Errorf("escape paragraph: %w", err)
		}
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(documentTail)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, data string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", body.String()},
	}
	// Fixed timestamps keep the archive byte-for-byte reproducible.
	modified := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, part := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: part.name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.data)); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx: %w", err)
	}
	return buf.Bytes(), nil
}
