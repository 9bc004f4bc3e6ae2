package mtlgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DocType identifies one of the three document surfaces.
type DocType string

// Document surfaces, in build order.
const (
	DocSummary   DocType = "mtl-1" // summary sheet
	DocSteps     DocType = "mtl-2" // detailed steps
	DocTeachback DocType = "mtl-3" // teachback and sign-off
)

// DocTypes returns every surface in build order.
func DocTypes() []DocType {
	return []DocType{DocSummary, DocSteps, DocTeachback}
}

// ParseDocType accepts "mtl-1", "MTL-1" and so on.
// Unknown names return ErrUnsupportedDocument.
func ParseDocType(s string) (DocType, error) {
	d := DocType(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q (must be mtl-1, mtl-2, or mtl-3)", ErrUnsupportedDocument, s)
	}
	return d, nil
}

// Valid reports whether d names a known surface.
func (d DocType) Valid() bool {
	switch d {
	case DocSummary, DocSteps, DocTeachback:
		return true
	}
	return false
}

// Label returns the surface name as printed in titles ("MTL-2").
func (d DocType) Label() string {
	return strings.ToUpper(string(d))
}

// RubricLabels are the rubric levels, lowest first.
var RubricLabels = []string{"Needs Work", "Good", "Better", "Best"}

// Sign-off placeholders printed when a field is blank.
const (
	SignoffNamePlaceholder = "________________"
	SignoffDatePlaceholder = "____-____-____"
)

// Task is a validated, enriched MTL task definition.
// Treat it as immutable; WithSignoff returns a modified copy.
type Task struct {
	Meta          Meta           `json:"meta"`
	ToolsRequired []Tool         `json:"tools_required"`
	Prerequisites []string       `json:"prerequisites"`
	Environment   Environment    `json:"environment"`
	Steps         []Step         `json:"steps"`
	Confirmations []Confirmation `json:"confirmations"`
	Teachback     Teachback      `json:"teachback"`
	Signoff       Signoff        `json:"signoff"`

	// SourcePath is the file the task was loaded from, empty for in-memory
	// payloads. Relative screenshot paths resolve against its directory.
	SourcePath string `json:"-"`
}

// Meta identifies the task.
type Meta struct {
	Title            string   `json:"title"`
	TaskID           string   `json:"task_id"`
	Version          string   `json:"version"`
	Owner            string   `json:"owner"`
	LastUpdated      string   `json:"last_updated"`
	Difficulty       string   `json:"difficulty"`
	EstimatedTimeMin int      `json:"estimated_time_min"`
	Tags             []string `json:"tags"`
	Purpose          string   `json:"purpose"`
}

// Tool is a required tool or part.
type Tool struct {
	Name  string `json:"name"`
	Qty   int    `json:"qty,omitempty"`
	Notes string `json:"notes"`
}

// Environment lists the equipment and software the task applies to.
type Environment struct {
	Models      []string `json:"models"`
	SWVersions  []string `json:"sw_versions"`
	Connections []string `json:"connections"`
}

// Step is one procedure step. Sequence is 1-based and follows list order.
type Step struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Critical   bool     `json:"critical"`
	Confirm    string   `json:"confirm"`
	Tips       []string `json:"tips"`
	Warnings   []string `json:"warnings"`
	Screenshot string   `json:"screenshot"`
	Sequence   int      `json:"sequence"`
}

// Confirmation is a final check with its acceptable outcomes.
type Confirmation struct {
	Item   string   `json:"item"`
	Accept []string `json:"accept"`
}

// Teachback holds the prompts and grading rubric for the trainee.
type Teachback struct {
	Prompts []string      `json:"prompts"`
	Rubric  []RubricEntry `json:"rubric"`
}

// RubricEntry grades one criterion. LevelsMap always holds exactly the
// RubricLabels keys.
type RubricEntry struct {
	Criterion string            `json:"criterion"`
	Levels    []Level           `json:"levels"`
	LevelsMap map[string]string `json:"levels_map"`
}

// Level describes one rubric level.
type Level struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Signoff is the trainee and trainer sign-off block.
type Signoff struct {
	TraineeName string `json:"trainee_name"`
	TrainerName string `json:"trainer_name"`
	Date        string `json:"date"`
}

// HasDate reports whether a real date was recorded.
func (s Signoff) HasDate() bool {
	return s.Date != "" && s.Date != SignoffDatePlaceholder
}

// Map returns the task serialized as a generic map keyed by the JSON field
// names. The result validates against the schema again.
func (t *Task) Map() map[string]any {
	data, err := json.Marshal(t)
	if err != nil {
		// Task holds only strings, ints, bools, slices and string maps.
		panic(fmt.Sprintf("mtlgen: marshaling task: %v", err))
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber() // integers print as integers in templates
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		panic(fmt.Sprintf("mtlgen: unmarshaling task: %v", err))
	}
	return m
}

// WithSignoff returns a copy of t with the non-empty fields of s applied.
// Fields left blank keep their current value.
func (t *Task) WithSignoff(s Signoff) *Task {
	out := t.clone()
	if s.TraineeName != "" {
		out.Signoff.TraineeName = s.TraineeName
	}
	if s.TrainerName != "" {
		out.Signoff.TrainerName = s.TrainerName
	}
	if s.Date != "" {
		out.Signoff.Date = s.Date
	}
	fillSignoff(&out.Signoff)
	return out
}

// Default name parts used when the task omits them.
const (
	defaultTaskSlug = "task"
	defaultVersion  = "v1"
)

// BaseFilename returns the output name without extension for surface d,
// such as "MTL-1_MTL_2_GT-001".
func (t *Task) BaseFilename(d DocType) string {
	slug := t.Meta.TaskID
	if slug == "" {
		slug = defaultTaskSlug
	}
	slug = strings.NewReplacer(" ", "_", "/", "-").Replace(slug)

	version := t.Meta.Version
	if version == "" {
		version = defaultVersion
	}
	return d.Label() + "_" + slug + "_" + version
}
