package docx

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

// Run is a span of text with uniform formatting.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// AddParagraph appends a paragraph. style is a style id or name; an
// undefined or empty style leaves the paragraph in the default style.
// Newlines inside a run become line breaks.
func (d *Document) AddParagraph(style string, runs ...Run) {
	b := &d.body
	b.WriteString("<w:p>")
	if id := d.StyleID(style); id != "" {
		b.WriteString(`<w:pPr><w:pStyle w:val="`)
		writeEscaped(b, id)
		b.WriteString(`"/></w:pPr>`)
	}
	for _, r := range runs {
		writeRun(b, r)
	}
	b.WriteString("</w:p>")
}

// AddTable appends a table whose first row repeats as a bold header row.
// Short rows are padded with empty cells. style follows the AddParagraph
// rules. An empty rows slice adds nothing.
func (d *Document) AddTable(style string, rows [][]string) {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return
	}

	b := &d.body
	b.WriteString("<w:tbl><w:tblPr>")
	if id := d.StyleID(style); id != "" {
		b.WriteString(`<w:tblStyle w:val="`)
		writeEscaped(b, id)
		b.WriteString(`"/>`)
	}
	b.WriteString(`<w:tblW w:w="5000" w:type="pct"/>`)
	b.WriteString(`<w:tblLook w:val="04A0" w:firstRow="1" w:lastRow="0" w:firstColumn="1" w:lastColumn="0" w:noHBand="0" w:noVBand="1"/>`)
	b.WriteString("</w:tblPr><w:tblGrid>")
	colWidth := strconv.Itoa(blankTextWidth / cols)
	for range cols {
		b.WriteString(`<w:gridCol w:w="` + colWidth + `"/>`)
	}
	b.WriteString("</w:tblGrid>")

	for i, row := range rows {
		b.WriteString("<w:tr>")
		if i == 0 {
			b.WriteString("<w:trPr><w:tblHeader/></w:trPr>")
		}
		for c := range cols {
			text := ""
			if c < len(row) {
				text = row[c]
			}
			b.WriteString(`<w:tc><w:tcPr><w:tcW w:w="` + colWidth + `" w:type="dxa"/></w:tcPr><w:p>`)
			writeRun(b, Run{Text: text, Bold: i == 0})
			b.WriteString("</w:p></w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
}

func writeRun(b *bytes.Buffer, r Run) {
	b.WriteString("<w:r>")
	if r.Bold || r.Italic {
		b.WriteString("<w:rPr>")
		if r.Bold {
			b.WriteString("<w:b/>")
		}
		if r.Italic {
			b.WriteString("<w:i/>")
		}
		b.WriteString("</w:rPr>")
	}
	for i, line := range strings.Split(r.Text, "\n") {
		if i > 0 {
			b.WriteString("<w:br/>")
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		writeEscaped(b, line)
		b.WriteString("</w:t>")
	}
	b.WriteString("</w:r>")
}

func writeEscaped(b *bytes.Buffer, s string) {
	_ = xml.EscapeText(b, []byte(s)) // bytes.Buffer writes do not fail
}

// Text returns the plain text of the body: one line per paragraph, with
// line breaks kept.
func (d *Document) Text() string {
	dec := xml.NewDecoder(strings.NewReader(`<w:body xmlns:w="` + nsMain + `">` + d.body.String() + `</w:body>`))

	var out strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			break // io.EOF once the wrapper closes
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "br":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return out.String()
}

// BodyXML returns the raw WordprocessingML of the appended content.
func (d *Document) BodyXML() string {
	return d.body.String()
}
