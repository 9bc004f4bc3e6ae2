// Package docx writes WordprocessingML (.docx) packages.
//
// A Document is either a blank package with a small built-in style set, or
// an existing package opened as a template: its body is discarded while the
// final section properties, styles, numbering, headers and footers are kept.
// Content is appended as styled paragraphs and simple tables.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"
	"unicode"
)

// Sentinel errors for package operations.
var (
	ErrInvalidPackage = errors.New("invalid docx package")
	ErrPartTooLarge   = errors.New("docx part exceeds size limit")
)

// MaxPartSize bounds any single part read from a template.
const MaxPartSize = 32 << 20

// contentTypesPart is the fixed name of the package content-type map.
const contentTypesPart = "[Content_Types].xml"

var bodyStartPattern = regexp.MustCompile(`<w:body(\s[^>]*)?>`)

// Document is an in-memory .docx package.
// A Document is not safe for concurrent use.
type Document struct {
	names    []string          // part order
	parts    map[string][]byte // every part except mainPart
	mainPart string

	head   string // main part up to and including <w:body>
	tail   string // main part from </w:body>
	sectPr string

	body   bytes.Buffer
	styles map[string]string // normalized id or name → style id
}

// New returns a blank letter-size document with the Normal, Title,
// Heading1, Heading2, ListBullet and TableGrid styles.
func New() *Document {
	d := &Document{
		names: []string{
			contentTypesPart,
			"_rels/.rels",
			"word/document.xml",
			"word/_rels/document.xml.rels",
			"word/styles.xml",
			"word/numbering.xml",
		},
		parts: map[string][]byte{
			contentTypesPart:               []byte(blankContentTypes),
			"_rels/.rels":                  []byte(blankPackageRels),
			"word/_rels/document.xml.rels": []byte(blankDocumentRels),
			"word/styles.xml":              []byte(blankStyles),
			"word/numbering.xml":           []byte(blankNumbering),
		},
		mainPart: "word/document.xml",
		head:     blankDocumentHead,
		tail:     blankDocumentTail,
		sectPr:   blankSectPr,
	}
	d.styles, _ = parseStyles([]byte(blankStyles))
	return d
}

// Open loads the package at path for use as a template.
func Open(filePath string) (*Document, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}
	defer func() { _ = zr.Close() }()

	d := &Document{parts: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		data, err := readPart(f)
		if err != nil {
			return nil, err
		}
		d.names = append(d.names, f.Name)
		d.parts[f.Name] = data
	}

	if _, ok := d.parts[contentTypesPart]; !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidPackage, contentTypesPart)
	}

	d.mainPart = findRelTarget(d.parts, "", relTypeOfficeDocument, "word/document.xml")
	main, ok := d.parts[d.mainPart]
	if !ok {
		return nil, fmt.Errorf("%w: missing main part %s", ErrInvalidPackage, d.mainPart)
	}
	delete(d.parts, d.mainPart)

	if err := d.splitMain(string(main)); err != nil {
		return nil, err
	}

	// A .dotx opened as template must be saved with the document content type.
	d.parts[contentTypesPart] = bytes.ReplaceAll(d.parts[contentTypesPart],
		[]byte(contentTypeTemplate), []byte(contentTypeDocument))

	stylesPart := findRelTarget(d.parts, d.mainPart, relTypeStyles, "")
	d.styles = map[string]string{}
	if data, ok := d.parts[stylesPart]; ok {
		if d.styles, err = parseStyles(data); err != nil {
			return nil, fmt.Errorf("%w: styles: %v", ErrInvalidPackage, err)
		}
	}

	return d, nil
}

func readPart(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > MaxPartSize {
		return nil, fmt.Errorf("%w: %s", ErrPartTooLarge, f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPackage, f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, MaxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPackage, f.Name, err)
	}
	if len(data) > MaxPartSize {
		return nil, fmt.Errorf("%w: %s", ErrPartTooLarge, f.Name)
	}
	return data, nil
}

// splitMain keeps the main part around the body and the trailing body-level
// sectPr. Everything else in the body is dropped.
func (d *Document) splitMain(main string) error {
	if !strings.Contains(main, `xmlns:w="`+nsMain+`"`) {
		return fmt.Errorf("%w: main part does not bind the w: prefix", ErrInvalidPackage)
	}

	loc := bodyStartPattern.FindStringIndex(main)
	end := strings.LastIndex(main, "</w:body>")
	if loc == nil || end < loc[1] {
		return fmt.Errorf("%w: main part has no body", ErrInvalidPackage)
	}

	d.head = main[:loc[1]]
	d.tail = main[end:]
	d.sectPr = trailingSectPr(main[loc[1]:end])
	return nil
}

// trailingSectPr returns the body-level <w:sectPr> element, which must be
// the last child of the body, or "" when the body does not end with one.
// Nested sectPr elements (tracked changes) are balanced by depth.
func trailingSectPr(body string) string {
	const closeTag = "</w:sectPr>"

	s := strings.TrimRightFunc(body, unicode.IsSpace)
	if !strings.HasSuffix(s, closeTag) {
		i := lastSectPrOpen(s, len(s))
		if i >= 0 && strings.HasSuffix(s, "/>") && strings.IndexByte(s[i:], '>') == len(s)-i-1 {
			return s[i:]
		}
		return ""
	}

	depth := 0
	end := len(s)
	for end > 0 {
		ci := strings.LastIndex(s[:end], closeTag)
		oi := lastSectPrOpen(s, end)
		if oi < 0 {
			return ""
		}
		if ci > oi {
			depth++
			end = ci
			continue
		}
		end = oi
		if gt := strings.IndexByte(s[oi:], '>'); gt > 0 && s[oi+gt-1] == '/' {
			continue
		}
		depth--
		if depth == 0 {
			return s[oi:]
		}
	}
	return ""
}

// lastSectPrOpen finds the last "<w:sectPr" start tag before end, skipping
// longer names such as <w:sectPrChange>.
func lastSectPrOpen(s string, end int) int {
	const openTag = "<w:sectPr"
	for end > 0 {
		i := strings.LastIndex(s[:end], openTag)
		if i < 0 {
			return -1
		}
		if next := i + len(openTag); next < len(s) && strings.IndexByte(" \t\r\n>/", s[next]) >= 0 {
			return i
		}
		end = i
	}
	return -1
}

// HasStyle reports whether the package defines a style whose id or name
// matches name, ignoring case and spaces ("List Bullet" matches ListBullet).
func (d *Document) HasStyle(name string) bool {
	_, ok := d.styles[normalizeStyleName(name)]
	return ok
}

// StyleID returns the style id for name, or "" when undefined.
func (d *Document) StyleID(name string) string {
	return d.styles[normalizeStyleName(name)]
}

// Write serializes the package as a zip archive.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, name := range d.names {
		data := d.parts[name]
		if name == d.mainPart {
			data = d.mainXML()
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing package: %w", err)
	}
	return nil
}

// Save writes the package to filePath. The parent directory must exist.
func (d *Document) Save(filePath string) error {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, buf.Bytes(), 0o644); err != nil { // #nosec G306 -- shared document
		return fmt.Errorf("saving %s: %w", filePath, err)
	}
	return nil
}

func (d *Document) mainXML() []byte {
	var b bytes.Buffer
	b.Grow(len(d.head) + d.body.Len() + len(d.sectPr) + len(d.tail))
	b.WriteString(d.head)
	b.Write(d.body.Bytes())
	b.WriteString(d.sectPr)
	b.WriteString(d.tail)
	return b.Bytes()
}

// ---------------------------------------------------------------------------
// Relationships and styles
// ---------------------------------------------------------------------------

type relationships struct {
	Items []struct {
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
		Mode   string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

// findRelTarget resolves the first relationship of relType declared by
// source ("" for the package root) to a part name, or returns fallback.
func findRelTarget(parts map[string][]byte, source, relType, fallback string) string {
	dir, file := path.Split(source)
	relsName := path.Join(dir, "_rels", file+".rels")

	data, ok := parts[relsName]
	if !ok {
		return fallback
	}

	var rels relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return fallback
	}
	for _, r := range rels.Items {
		if r.Type != relType || r.Mode == "External" {
			continue
		}
		if strings.HasPrefix(r.Target, "/") {
			return strings.TrimPrefix(r.Target, "/")
		}
		return path.Join(dir, r.Target)
	}
	return fallback
}

type stylesDoc struct {
	Styles []struct {
		ID   string `xml:"styleId,attr"`
		Name struct {
			Val string `xml:"val,attr"`
		} `xml:"name"`
	} `xml:"style"`
}

func parseStyles(data []byte) (map[string]string, error) {
	var doc stylesDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	styles := make(map[string]string, len(doc.Styles)*2)
	for _, s := range doc.Styles {
		if s.ID == "" {
			continue
		}
		styles[normalizeStyleName(s.ID)] = s.ID
		if s.Name.Val != "" {
			if _, taken := styles[normalizeStyleName(s.Name.Val)]; !taken {
				styles[normalizeStyleName(s.Name.Val)] = s.ID
			}
		}
	}
	return styles, nil
}

func normalizeStyleName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}
