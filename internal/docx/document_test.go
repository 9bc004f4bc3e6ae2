package docx

// Notes:
// - Templates are built in-test as minimal zip packages; real Word files
//   carry more parts but exercise the same code paths.
// - Word itself is not available to validate output; assertions check the
//   XML that Word relies on (pStyle, tblStyle, sectPr, numbering).

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func zipBytes(t *testing.T, parts map[string]string, order ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := io.WriteString(w, parts[name]); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func readZipPart(t *testing.T, data []byte, name string) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		return string(b)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func zipNames(t *testing.T, data []byte) []string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading zip: %v", err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

const templateSectPr = `<w:sectPr w:rsidR="00A1"><w:headerReference w:type="default" r:id="rId9"/>` +
	`<w:pgSz w:w="15840" w:h="12240" w:orient="landscape"/></w:sectPr>`

// brandTemplate returns a package with a header part, a landscape section,
// old body content and only Normal and Heading 1 styles.
func brandTemplate(t *testing.T, mainContentType string) string {
	t.Helper()

	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="` + mainContentType + `"/></Types>`,
		"_rels/.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="` + relTypeOfficeDocument + `" Target="word/document.xml"/></Relationships>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="` + relTypeStyles + `" Target="styles.xml"/>` +
			`<Relationship Id="rId9" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/></Relationships>`,
		"word/document.xml": `<?xml version="1.0"?><w:document xmlns:w="` + nsMain + `" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
			`<w:body><w:p><w:r><w:t>OLD CONTENT</w:t></w:r></w:p>` + "\n" + templateSectPr + "\n" + `</w:body></w:document>`,
		"word/styles.xml": `<?xml version="1.0"?><w:styles xmlns:w="` + nsMain + `">` +
			`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
			`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>` +
			`<w:style w:type="paragraph" w:styleId="BrandTitle"><w:name w:val="Title"/></w:style>` +
			`</w:styles>`,
		"word/header1.xml": `<w:hdr xmlns:w="` + nsMain + `"><w:p><w:r><w:t>ACME Maintenance</w:t></w:r></w:p></w:hdr>`,
	}

	data := zipBytes(t, parts,
		"[Content_Types].xml", "_rels/.rels", "word/document.xml",
		"word/_rels/document.xml.rels", "word/styles.xml", "word/header1.xml")

	path := filepath.Join(t.TempDir(), "brand.docx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing template: %v", err)
	}
	return path
}

func written(t *testing.T, d *Document) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// Blank package
// ---------------------------------------------------------------------------

func TestNew_Styles(t *testing.T) {
	t.Parallel()

	d := New()

	tests := []struct {
		name string
		want bool
	}{
		{"Normal", true},
		{"Title", true},
		{"Heading 1", true},
		{"heading1", true},
		{"Heading 2", true},
		{"List Bullet", true},
		{"ListBullet", true},
		{"Table Grid", true},
		{"Quote", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := d.HasStyle(tt.name); got != tt.want {
			t.Errorf("HasStyle(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if got := d.StyleID("list bullet"); got != "ListBullet" {
		t.Errorf("StyleID(list bullet) = %q, want ListBullet", got)
	}
}

func TestNew_WritesCompletePackage(t *testing.T) {
	t.Parallel()

	d := New()
	d.AddParagraph("Title", Run{Text: "Replace filter — MTL-1"})
	data := written(t, d)

	want := []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"word/document.xml",
		"word/_rels/document.xml.rels",
		"word/styles.xml",
		"word/numbering.xml",
	}
	if diff := cmp.Diff(want, zipNames(t, data)); diff != "" {
		t.Errorf("parts mismatch (-want +got):\n%s", diff)
	}

	main := readZipPart(t, data, "word/document.xml")
	if !strings.Contains(main, `<w:pStyle w:val="Title"/>`) {
		t.Error("title paragraph should reference the Title style")
	}
	if !strings.HasSuffix(main, blankSectPr+"</w:body></w:document>") {
		t.Error("body should end with the letter section properties")
	}
	if !strings.Contains(readZipPart(t, data, "word/numbering.xml"), `w:numFmt w:val="bullet"`) {
		t.Error("numbering part should define a bullet list")
	}
}

// ---------------------------------------------------------------------------
// Content
// ---------------------------------------------------------------------------

func TestAddParagraph(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		style     string
		runs      []Run
		wantXML   []string
		wantNoXML []string
		wantText  string
	}{
		{
			name:     "styled paragraph",
			style:    "Heading 2",
			runs:     []Run{{Text: "Step 1 — isolate"}},
			wantXML:  []string{`<w:pStyle w:val="Heading2"/>`},
			wantText: "Step 1 — isolate\n",
		},
		{
			name:      "unknown style falls back to default",
			style:     "Intense Quote",
			runs:      []Run{{Text: "plain"}},
			wantNoXML: []string{"<w:pStyle"},
			wantText:  "plain\n",
		},
		{
			name:     "bold and italic runs",
			runs:     []Run{{Text: "CRITICAL: ", Bold: true}, {Text: "note", Italic: true}},
			wantXML:  []string{`<w:rPr><w:b/></w:rPr><w:t xml:space="preserve">CRITICAL: </w:t>`, `<w:rPr><w:i/></w:rPr>`},
			wantText: "CRITICAL: note\n",
		},
		{
			name:     "escapes markup",
			runs:     []Run{{Text: "Valves <A & B>"}},
			wantXML:  []string{"Valves &lt;A &amp; B&gt;"},
			wantText: "Valves <A & B>\n",
		},
		{
			name:     "newline becomes break",
			runs:     []Run{{Text: "line one\nline two"}},
			wantXML:  []string{"<w:br/>"},
			wantText: "line one\nline two\n",
		},
		{
			name:     "empty spacer paragraph",
			wantXML:  []string{"<w:p></w:p>"},
			wantText: "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := New()
			d.AddParagraph(tt.style, tt.runs...)

			body := d.BodyXML()
			for _, want := range tt.wantXML {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q:\n%s", want, body)
				}
			}
			for _, not := range tt.wantNoXML {
				if strings.Contains(body, not) {
					t.Errorf("body should not contain %q:\n%s", not, body)
				}
			}
			if got := d.Text(); got != tt.wantText {
				t.Errorf("Text() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestAddTable(t *testing.T) {
	t.Parallel()

	d := New()
	d.AddTable("Table Grid", [][]string{
		{"Criterion", "Needs Work", "Good", "Better", "Best"},
		{"Safety", "skips lockout"},
	})

	body := d.BodyXML()
	checks := []struct {
		want  string
		count int
	}{
		{`<w:tblStyle w:val="TableGrid"/>`, 1},
		{"<w:gridCol ", 5},
		{"<w:tblHeader/>", 1},
		{"<w:tr>", 2},
		{"<w:tc>", 10},
	}
	for _, c := range checks {
		if got := strings.Count(body, c.want); got != c.count {
			t.Errorf("count(%q) = %d, want %d", c.want, got, c.count)
		}
	}

	text := d.Text()
	for _, want := range []string{"Criterion\n", "Best\n", "Safety\n", "skips lockout\n"} {
		if !strings.Contains(text, want) {
			t.Errorf("Text() missing %q", want)
		}
	}
}

func TestAddTable_NoStyleAndEmpty(t *testing.T) {
	t.Parallel()

	d := New()
	d.AddTable("", nil)
	if d.BodyXML() != "" {
		t.Errorf("empty table should add nothing, got %q", d.BodyXML())
	}

	d.AddTable("Missing Style", [][]string{{"a"}})
	if strings.Contains(d.BodyXML(), "<w:tblStyle") {
		t.Error("undefined table style should be omitted")
	}
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

func TestOpen_Template(t *testing.T) {
	t.Parallel()

	d, err := Open(brandTemplate(t, contentTypeDocument))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if !d.HasStyle("Heading 1") || !d.HasStyle("Title") {
		t.Error("template styles should be available")
	}
	if got := d.StyleID("Title"); got != "BrandTitle" {
		t.Errorf("StyleID(Title) = %q, want BrandTitle", got)
	}
	if d.HasStyle("List Bullet") || d.HasStyle("Table Grid") {
		t.Error("styles absent from the template must not be reported")
	}

	d.AddParagraph("Heading 1", Run{Text: "Tools Required"})
	data := written(t, d)

	main := readZipPart(t, data, "word/document.xml")
	if strings.Contains(main, "OLD CONTENT") {
		t.Error("template body content should be replaced")
	}
	if !strings.Contains(main, "Tools Required") {
		t.Error("new content missing")
	}
	if !strings.HasSuffix(main, templateSectPr+"</w:body></w:document>") {
		t.Errorf("template section properties should close the body:\n%s", main)
	}
	if got := readZipPart(t, data, "word/header1.xml"); !strings.Contains(got, "ACME Maintenance") {
		t.Error("header part should be carried over")
	}
}

func TestOpen_TemplateContentTypeConverted(t *testing.T) {
	t.Parallel()

	d, err := Open(brandTemplate(t, contentTypeTemplate))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	types := readZipPart(t, written(t, d), "[Content_Types].xml")
	if strings.Contains(types, contentTypeTemplate) || !strings.Contains(types, contentTypeDocument) {
		t.Errorf("content types should declare a document main part:\n%s", types)
	}
}

func TestSaveOpenRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blank.docx")
	d := New()
	d.AddParagraph("List Bullet", Run{Text: "Torque wrench (1)"})
	if err := d.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !reopened.HasStyle("List Bullet") {
		t.Error("saved blank package should keep its styles")
	}
	if reopened.Text() != "" {
		t.Errorf("opened template body should start empty, got %q", reopened.Text())
	}

	main := readZipPart(t, written(t, reopened), "word/document.xml")
	if !strings.Contains(main, blankSectPr) {
		t.Error("round trip should keep section properties")
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	notZip := filepath.Join(dir, "notes.docx")
	if err := os.WriteFile(notZip, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	noTypes := filepath.Join(dir, "notypes.docx")
	if err := os.WriteFile(noTypes, zipBytes(t, map[string]string{"word/document.xml": "<x/>"}, "word/document.xml"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	noBody := filepath.Join(dir, "nobody.docx")
	parts := map[string]string{
		"[Content_Types].xml": "<Types/>",
		"word/document.xml":   `<w:document xmlns:w="` + nsMain + `"></w:document>`,
	}
	if err := os.WriteFile(noBody, zipBytes(t, parts, "[Content_Types].xml", "word/document.xml"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.docx"), wantErr: os.ErrNotExist},
		{name: "not a zip", path: notZip, wantErr: ErrInvalidPackage},
		{name: "no content types", path: noTypes, wantErr: ErrInvalidPackage},
		{name: "no body", path: noBody, wantErr: ErrInvalidPackage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Open(tt.path); !errors.Is(err, tt.wantErr) {
				t.Errorf("Open() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTrailingSectPr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "body-level sectPr",
			body: `<w:p/><w:sectPr><w:pgSz w:w="1"/></w:sectPr>` + "\n",
			want: `<w:sectPr><w:pgSz w:w="1"/></w:sectPr>`,
		},
		{
			name: "self-closing",
			body: `<w:p/><w:sectPr w:rsidR="1"/>`,
			want: `<w:sectPr w:rsidR="1"/>`,
		},
		{
			name: "paragraph-level only",
			body: `<w:p><w:pPr><w:sectPr><w:pgSz/></w:sectPr></w:pPr></w:p>`,
			want: "",
		},
		{
			name: "earlier section break is skipped",
			body: `<w:p><w:pPr><w:sectPr><w:a/></w:sectPr></w:pPr></w:p><w:sectPr><w:b/></w:sectPr>`,
			want: `<w:sectPr><w:b/></w:sectPr>`,
		},
		{
			name: "tracked change nests a sectPr",
			body: `<w:p/><w:sectPr><w:pgSz/><w:sectPrChange w:id="1"><w:sectPr/></w:sectPrChange></w:sectPr>`,
			want: `<w:sectPr><w:pgSz/><w:sectPrChange w:id="1"><w:sectPr/></w:sectPrChange></w:sectPr>`,
		},
		{
			name: "empty body",
			body: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := trailingSectPr(tt.body); got != tt.want {
				t.Errorf("trailingSectPr() = %q, want %q", got, tt.want)
			}
		})
	}
}
