package mtlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-mtlgen/internal/docx"
	"github.com/alnah/go-mtlgen/internal/fileutil"
	"github.com/alnah/go-mtlgen/internal/pipeline"
)

// Word style names used by the exporter. A template that lacks one gets the
// plain-paragraph fallback described on each writer method.
const (
	styleTitle      = "Title"
	styleHeading1   = "Heading 1"
	styleHeading2   = "Heading 2"
	styleListBullet = "List Bullet"
	styleTableGrid  = "Table Grid"
)

// ExportDOCX writes surface docType of task as a Word document at
// outputPath and returns the path. Parent directories are created.
//
// When templatePath names an existing .docx or .dotx file, its styles,
// numbering, headers, footers and page setup are kept and its body content
// is replaced. Otherwise a blank letter-size document is used.
func ExportDOCX(task *Task, docType DocType, outputPath, templatePath string) (string, error) {
	build, ok := docxLayouts[docType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDocument, docType)
	}

	doc := docx.New()
	if templatePath != "" && fileutil.FileExists(templatePath) {
		var err error
		if doc, err = docx.Open(templatePath); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrDocxTemplate, templatePath, err)
		}
	}

	build(docWriter{doc: doc}, task)

	if err := fileutil.EnsureParentDir(outputPath); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := doc.Save(outputPath); err != nil {
		return "", fmt.Errorf("writing docx: %w", err)
	}
	return outputPath, nil
}

var docxLayouts = map[DocType]func(docWriter, *Task){
	DocSummary:   writeSummaryDocx,
	DocSteps:     writeStepsDocx,
	DocTeachback: writeTeachbackDocx,
}

func writeSummaryDocx(w docWriter, t *Task) {
	m := t.Meta
	w.title(documentTitle(t, DocSummary))
	w.text(fmt.Sprintf("Task ID: %s | Version: %s | Owner: %s", m.TaskID, m.Version, m.Owner))
	w.text(fmt.Sprintf("Updated: %s | Difficulty: %s | Est. Time: %d min", m.LastUpdated, m.Difficulty, m.EstimatedTimeMin))
	if len(m.Tags) > 0 {
		w.text("Tags: " + strings.Join(m.Tags, ", "))
	}

	if m.Purpose != "" {
		w.heading(styleHeading1, "Purpose")
		w.text(m.Purpose)
	}

	w.heading(styleHeading1, "Tools Required")
	for _, tool := range t.ToolsRequired {
		w.bullet(toolLine(tool))
	}

	if len(t.Prerequisites) > 0 {
		w.heading(styleHeading1, "Prerequisites")
		for _, p := range t.Prerequisites {
			w.bullet(p)
		}
	}

	w.heading(styleHeading1, "Success Criteria")
	for _, c := range t.Confirmations {
		w.bullet(confirmationLine(c))
	}
}

func writeStepsDocx(w docWriter, t *Task) {
	m := t.Meta
	w.title(documentTitle(t, DocSteps))
	w.text(fmt.Sprintf("MTL Number: %s | Version: %s | Owner: %s | Updated: %s", m.TaskID, m.Version, m.Owner, m.LastUpdated))
	w.para(docx.Run{
		Text:   fmt.Sprintf("Difficulty: %s | Est. Time: %d min", m.Difficulty, m.EstimatedTimeMin),
		Italic: true,
	})
	if len(m.Tags) > 0 {
		w.text("Tags: " + strings.Join(m.Tags, ", "))
	}

	w.heading(styleHeading1, "Environment")
	w.keyValues("Models", t.Environment.Models)
	w.keyValues("Software Versions", t.Environment.SWVersions)
	w.keyValues("Connections", t.Environment.Connections)

	w.heading(styleHeading1, "Tools Required")
	for _, tool := range t.ToolsRequired {
		w.bullet(toolLine(tool))
	}

	w.heading(styleHeading1, "Step-by-Step")
	for _, s := range t.Steps {
		w.heading(styleHeading2, fmt.Sprintf("Step %d — %s", s.Sequence, s.ID))

		var runs []docx.Run
		if s.Critical {
			runs = append(runs, docx.Run{Text: "CRITICAL: ", Bold: true})
		}
		w.para(append(runs, docx.Run{Text: s.Text})...)

		if len(s.Warnings) > 0 {
			w.para(docx.Run{Text: "Warnings:", Bold: true})
			for _, warning := range s.Warnings {
				w.bullet(warning)
			}
		}
		if len(s.Tips) > 0 {
			w.para(docx.Run{Text: "Tips:", Bold: true})
			for _, tip := range s.Tips {
				w.bullet(tip)
			}
		}
		if s.Confirm != "" {
			w.text("Confirm: " + s.Confirm)
		}
		w.para() // spacer
	}

	w.heading(styleHeading1, "Final Confirmations")
	for _, c := range t.Confirmations {
		w.bullet(confirmationLine(c))
	}
}

func writeTeachbackDocx(w docWriter, t *Task) {
	w.title(documentTitle(t, DocTeachback))

	w.heading(styleHeading1, "Teachback Prompts")
	for _, p := range t.Teachback.Prompts {
		w.bullet(p)
	}

	if len(t.Teachback.Rubric) > 0 {
		w.heading(styleHeading1, "Rubric")
		rows := make([][]string, 0, len(t.Teachback.Rubric)+1)
		rows = append(rows, append([]string{"Criterion"}, RubricLabels...))
		for _, entry := range t.Teachback.Rubric {
			row := []string{entry.Criterion}
			for _, label := range RubricLabels {
				row = append(row, entry.LevelsMap[label])
			}
			rows = append(rows, row)
		}
		w.table(rows)
	}

	s := t.Signoff
	fillSignoff(&s)
	w.heading(styleHeading1, "Sign-off")
	w.text("Trainee: " + s.TraineeName)
	w.text("Trainer: " + s.TrainerName)
	w.text("Date: " + s.Date)
}

func documentTitle(t *Task, d DocType) string {
	title := t.Meta.Title
	if title == "" {
		title = pipeline.DefaultTitle
	}
	return title + " — " + d.Label()
}

// toolLine formats "name (qty) — notes"; qty and notes are optional.
func toolLine(tool Tool) string {
	var b strings.Builder
	b.WriteString(tool.Name)
	if tool.Qty > 0 {
		b.WriteString(" (" + strconv.Itoa(tool.Qty) + ")")
	}
	if tool.Notes != "" {
		b.WriteString(" — " + tool.Notes)
	}
	return b.String()
}

func confirmationLine(c Confirmation) string {
	return c.Item + ": " + strings.Join(c.Accept, "; ")
}

// docWriter applies the style fallbacks on top of a docx.Document.
type docWriter struct {
	doc *docx.Document
}

// title uses Title, then Heading 1, then a bold plain paragraph.
func (w docWriter) title(text string) {
	for _, style := range []string{styleTitle, styleHeading1} {
		if w.doc.HasStyle(style) {
			w.doc.AddParagraph(style, docx.Run{Text: text, Bold: true})
			return
		}
	}
	w.para(docx.Run{Text: text, Bold: true})
}

// heading falls back to a bold plain paragraph.
func (w docWriter) heading(style, text string) {
	if !w.doc.HasStyle(style) {
		style = ""
	}
	w.doc.AddParagraph(style, docx.Run{Text: text, Bold: true})
}

func (w docWriter) para(runs ...docx.Run) {
	w.doc.AddParagraph("", runs...)
}

func (w docWriter) text(s string) {
	w.para(docx.Run{Text: s})
}

// bullet falls back to a plain paragraph prefixed with "• ".
func (w docWriter) bullet(text string) {
	if w.doc.HasStyle(styleListBullet) {
		w.doc.AddParagraph(styleListBullet, docx.Run{Text: text})
		return
	}
	w.text("• " + text)
}

// keyValues writes "label: a, b" and skips empty lists.
func (w docWriter) keyValues(label string, values []string) {
	if len(values) == 0 {
		return
	}
	w.para(docx.Run{Text: label + ": ", Bold: true}, docx.Run{Text: strings.Join(values, ", ")})
}

// table uses Table Grid when defined, otherwise no table style.
func (w docWriter) table(rows [][]string) {
	style := ""
	if w.doc.HasStyle(styleTableGrid) {
		style = styleTableGrid
	}
	w.doc.AddTable(style, rows)
}
