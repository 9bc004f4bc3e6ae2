package mtlgen

// Notes:
// - Output is checked by unzipping word/document.xml; reopening the file with
//   docx.Open would discard the body
// - Style fallbacks are exercised with a hand-built template defining only
//   Normal and Heading 1

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const testNSMain = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// landscapeSectPr marks the page setup a template must keep.
const landscapeSectPr = `<w:sectPr><w:pgSz w:w="15840" w:h="12240" w:orient="landscape"/></w:sectPr>`

func readDocumentXML(t *testing.T, path string) string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening document.xml: %v", err)
		}
		defer func() { _ = rc.Close() }()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("reading document.xml: %v", err)
		}
		return string(data)
	}
	t.Fatalf("%s has no word/document.xml", path)
	return ""
}

// paragraphText returns the text of every body paragraph, one per line.
func paragraphText(t *testing.T, documentXML string) string {
	t.Helper()

	dec := xml.NewDecoder(strings.NewReader(documentXML))
	var out strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("parsing document.xml: %v", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			inText = el.Name.Local == "t"
		case xml.EndElement:
			inText = false
			if el.Name.Local == "p" {
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(el)
			}
		}
	}
	return out.String()
}

func exportDocx(t *testing.T, task *Task, d DocType, templatePath string) (text, raw string) {
	t.Helper()

	out := filepath.Join(t.TempDir(), task.BaseFilename(d)+".docx")
	got, err := ExportDOCX(task, d, out, templatePath)
	if err != nil {
		t.Fatalf("ExportDOCX(%s) error = %v", d, err)
	}
	if got != out {
		t.Errorf("ExportDOCX() path = %q, want %q", got, out)
	}

	raw = readDocumentXML(t, out)
	return paragraphText(t, raw), raw
}

// plainTemplate writes a .docx defining only the Normal and Heading 1 styles.
func plainTemplate(t *testing.T) string {
	t.Helper()

	parts := []struct{ name, body string }{
		{"[Content_Types].xml", `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`},
		{"_rels/.rels", `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`},
		{"word/document.xml", `<?xml version="1.0"?><w:document xmlns:w="` + testNSMain + `">` +
			`<w:body><w:p><w:r><w:t>PLACEHOLDER</w:t></w:r></w:p>` + landscapeSectPr + `</w:body></w:document>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`},
		{"word/styles.xml", `<?xml version="1.0"?><w:styles xmlns:w="` + testNSMain + `">` +
			`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
			`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>` +
			`</w:styles>`},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			t.Fatalf("creating %s: %v", p.name, err)
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			t.Fatalf("writing %s: %v", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "plain.docx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing template: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// Layouts
// ---------------------------------------------------------------------------

func TestExportDOCX_Summary(t *testing.T) {
	t.Parallel()

	text, raw := exportDocx(t, loadFixture(t, "pump-seal.yaml"), DocSummary, "")

	assertContainsAll(t, text,
		"Replace Pump Seal — MTL-1\n",
		"Task ID: MTL 2 | Version: GT-001 | Owner: Line Maintenance\n",
		"Updated: 03-15-24 | Difficulty: Intermediate | Est. Time: 45 min\n",
		"Tags: pump, seal, hydraulic\n",
		"Purpose\n",
		"Torque wrench (1) — 10-60 Nm\n",
		"Seal kit (2)\n",
		"Lint-free wipes\n",
		"Lockout/tagout training complete\n",
		"Success Criteria\n",
		"Seal leakage: None visible after 10 min; Less than 1 drop per minute\n",
	)
	assertContainsAll(t, raw,
		`<w:pStyle w:val="Title"/>`,
		`<w:pStyle w:val="Heading1"/>`,
		`<w:pStyle w:val="ListBullet"/>`,
	)
}

func TestExportDOCX_Steps(t *testing.T) {
	t.Parallel()

	text, raw := exportDocx(t, loadFixture(t, "pump-seal.yaml"), DocSteps, "")

	assertContainsAll(t, text,
		"MTL Number: MTL 2 | Version: GT-001 | Owner: Line Maintenance | Updated: 03-15-24\n",
		"Difficulty: Intermediate | Est. Time: 45 min\n",
		"Models: P-101, P-102\n",
		"Software Versions: PLC 4.2\n",
		"Step 1 — isolate\n",
		"CRITICAL: Isolate the pump and apply lockout.\n",
		"Warnings:\nResidual pressure can remain in the discharge line\n",
		"Confirm: Zero energy verified at the local panel\n",
		"Tips:\nOpen the vent first\n",
		"Extract the old seal | keep the spring.\n",
		"Step 10 — test\n",
		"Final Confirmations\n",
	)
	assertContainsNone(t, text, "Connections:", "CRITICAL: Drain")

	assertContainsAll(t, raw,
		`<w:pStyle w:val="Heading2"/>`,
		`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">CRITICAL: </w:t></w:r>`,
		`<w:rPr><w:i/></w:rPr>`,
	)
	if got := strings.Count(raw, ">CRITICAL: <"); got != 2 {
		t.Errorf("CRITICAL runs = %d, want 2", got)
	}
}

func TestExportDOCX_Teachback(t *testing.T) {
	t.Parallel()

	text, raw := exportDocx(t, loadFixture(t, "pump-seal.yaml"), DocTeachback, "")

	assertContainsAll(t, text,
		"Replace Pump Seal — MTL-3\n",
		"Teachback Prompts\n",
		"Describe the bolt tightening pattern.\n",
		"Rubric\n",
		"Criterion\nNeeds Work\nGood\nBetter\nBest\n",
		"Lockout\nSkips verification\n\n\nVerifies and explains every point\n",
		"Trainee: " + SignoffNamePlaceholder + "\n",
		"Trainer: J. Rivera\n",
		"Date: " + SignoffDatePlaceholder + "\n",
	)
	assertContainsAll(t, raw, "<w:tbl>", `<w:tblStyle w:val="TableGrid"/>`, "<w:tblHeader/>")
}

func TestExportDOCX_NoRubric(t *testing.T) {
	t.Parallel()

	text, raw := exportDocx(t, loadFixture(t, "no-rubric.json"), DocTeachback, "")

	assertContainsNone(t, raw, "<w:tbl>")
	assertContainsNone(t, text, "Rubric\n")
	assertContainsAll(t, text, "Why does flow direction matter?\n", "Sign-off\n")
}

func TestExportDOCX_SignoffFromTask(t *testing.T) {
	t.Parallel()

	task := loadFixture(t, "pump-seal.yaml").WithSignoff(Signoff{TraineeName: "A. Chen", Date: "03-20-24"})
	text, _ := exportDocx(t, task, DocTeachback, "")

	assertContainsAll(t, text, "Trainee: A. Chen\n", "Date: 03-20-24\n")
}

// ---------------------------------------------------------------------------
// Templates and errors
// ---------------------------------------------------------------------------

func TestExportDOCX_TemplateFallbacks(t *testing.T) {
	t.Parallel()

	tmpl := plainTemplate(t)
	task := loadFixture(t, "pump-seal.yaml")

	text, raw := exportDocx(t, task, DocSummary, tmpl)
	assertContainsAll(t, text, "• Seal kit (2)\n", "• Work order approved\n")
	assertContainsNone(t, text, "PLACEHOLDER")
	assertContainsAll(t, raw,
		landscapeSectPr,
		`<w:pStyle w:val="Heading1"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Replace Pump Seal — MTL-1</w:t>`,
	)
	assertContainsNone(t, raw, "ListBullet", `w:val="Title"`)

	_, raw = exportDocx(t, task, DocSteps, tmpl)
	assertContainsNone(t, raw, "Heading2")

	_, raw = exportDocx(t, task, DocTeachback, tmpl)
	assertContainsAll(t, raw, "<w:tbl>")
	assertContainsNone(t, raw, "<w:tblStyle")
}

func TestExportDOCX_MissingTemplateUsesBlank(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "none.docx")
	_, raw := exportDocx(t, loadFixture(t, "no-rubric.json"), DocSummary, missing)

	assertContainsAll(t, raw, `<w:pStyle w:val="Title"/>`)
}

func TestExportDOCX_Errors(t *testing.T) {
	t.Parallel()

	task := loadFixture(t, "no-rubric.json")

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "x.docx")
		_, err := ExportDOCX(task, DocType("mtl-4"), out, "")
		if !errors.Is(err, ErrUnsupportedDocument) {
			t.Errorf("ExportDOCX() error = %v, want ErrUnsupportedDocument", err)
		}
		if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
			t.Error("no file should be written for an unsupported type")
		}
	})

	t.Run("corrupt template", func(t *testing.T) {
		t.Parallel()

		bad := filepath.Join(t.TempDir(), "bad.docx")
		if err := os.WriteFile(bad, []byte("not a zip"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		_, err := ExportDOCX(task, DocSummary, filepath.Join(t.TempDir(), "x.docx"), bad)
		if !errors.Is(err, ErrDocxTemplate) {
			t.Errorf("ExportDOCX() error = %v, want ErrDocxTemplate", err)
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "a", "b", "x.docx")
		if _, err := ExportDOCX(task, DocSummary, out, ""); err != nil {
			t.Fatalf("ExportDOCX() error = %v", err)
		}
		if _, err := os.Stat(out); err != nil {
			t.Errorf("output not written: %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// Line helpers
// ---------------------------------------------------------------------------

func TestToolLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tool Tool
		want string
	}{
		{Tool{Name: "Wrench"}, "Wrench"},
		{Tool{Name: "Wrench", Qty: 2}, "Wrench (2)"},
		{Tool{Name: "Wrench", Notes: "10 mm"}, "Wrench — 10 mm"},
		{Tool{Name: "Wrench", Qty: 1, Notes: "10 mm"}, "Wrench (1) — 10 mm"},
	}

	for _, tt := range tests {
		if got := toolLine(tt.tool); got != tt.want {
			t.Errorf("toolLine(%+v) = %q, want %q", tt.tool, got, tt.want)
		}
	}
}

func TestDocumentTitle(t *testing.T) {
	t.Parallel()

	if got := documentTitle(&Task{}, DocSteps); got != "MTL Document — MTL-2" {
		t.Errorf("documentTitle() = %q", got)
	}
}
