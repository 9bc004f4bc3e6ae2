package mtlgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/alnah/go-mtlgen/internal/assets"
	"github.com/alnah/go-mtlgen/internal/yamlutil"
)

// schemaURL names the compiled schema resource. Nothing is fetched from it.
const schemaURL = "mtl.schema.json"

// rootPath labels violations of the document itself.
const rootPath = "<root>"

// Violation is one schema violation.
type Violation struct {
	Path    string // dotted instance path, e.g. "steps.0.text", or "<root>"
	Message string
}

// String formats the violation as "<path>: <message>".
func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// ValidationError aggregates every schema violation of a task.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Violations []Violation // sorted by path
}

// Error returns one violation per line.
func (e *ValidationError) Error() string {
	return strings.Join(e.Lines(), "\n")
}

// Lines returns the formatted violations.
func (e *ValidationError) Lines() []string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return lines
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	schemaPath     string
	datePattern    string
	versionPattern string
	assetLoader    AssetLoader
}

// WithSchemaPath validates against the YAML or JSON schema at path instead
// of the embedded one.
func WithSchemaPath(path string) LoaderOption {
	return func(c *loaderConfig) {
		c.schemaPath = path
	}
}

// WithDatePattern replaces the meta.last_updated pattern (default MM-DD-YY).
func WithDatePattern(re string) LoaderOption {
	return func(c *loaderConfig) {
		c.datePattern = re
	}
}

// WithVersionPattern replaces the meta.version pattern (default GT-###).
func WithVersionPattern(re string) LoaderOption {
	return func(c *loaderConfig) {
		c.versionPattern = re
	}
}

// WithSchemaLoader reads the named schema through loader. Ignored when
// WithSchemaPath is set.
func WithSchemaLoader(loader AssetLoader) LoaderOption {
	return func(c *loaderConfig) {
		c.assetLoader = loader
	}
}

// Loader reads, validates and enriches task definitions.
// The schema is compiled once; a Loader is safe for concurrent use.
type Loader struct {
	schema *jsonschema.Schema
}

// NewLoader compiles the task schema. Errors wrap ErrSchema.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	var cfg loaderConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	doc, err := readSchema(&cfg)
	if err != nil {
		return nil, err
	}

	if cfg.datePattern != "" {
		if err := setSchemaPattern(doc, cfg.datePattern, "meta", "last_updated"); err != nil {
			return nil, err
		}
	}
	if cfg.versionPattern != "" {
		if err := setSchemaPattern(doc, cfg.versionPattern, "meta", "version"); err != nil {
			return nil, err
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	schema, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	return &Loader{schema: schema}, nil
}

// readSchema returns the schema document as decoded JSON.
func readSchema(cfg *loaderConfig) (map[string]any, error) {
	var (
		raw []byte
		err error
	)
	switch {
	case cfg.schemaPath != "":
		raw, err = os.ReadFile(cfg.schemaPath)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrSchema, cfg.schemaPath, err)
		}
	case cfg.assetLoader != nil:
		raw, err = cfg.assetLoader.LoadSchema(DefaultSchema)
	default:
		raw, err = assets.NewEmbeddedLoader().LoadSchema(DefaultSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}

	// JSON is valid YAML, so one conversion covers both formats.
	data, err := yamlutil.ToJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: schema must be an object: %v", ErrSchema, err)
	}
	return doc, nil
}

// setSchemaPattern sets properties.<p0>.properties.<p1>...pattern.
func setSchemaPattern(doc map[string]any, pattern string, path ...string) error {
	if _, err := regexp.Compile(pattern); err != nil {
		return fmt.Errorf("%w: pattern for %s: %v", ErrSchema, strings.Join(path, "."), err)
	}

	node := doc
	for _, name := range path {
		props, ok := node["properties"].(map[string]any)
		if !ok {
			return fmt.Errorf("%w: no properties above %q", ErrSchema, name)
		}
		if node, ok = props[name].(map[string]any); !ok {
			return fmt.Errorf("%w: property %q not declared", ErrSchema, strings.Join(path, "."))
		}
	}
	node["pattern"] = pattern
	return nil
}

// Load reads the task at path. Files ending in .json are decoded as JSON,
// everything else as YAML.
func (l *Loader) Load(path string) (*Task, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided task file
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrTaskNotFound, path, err)
		}
		return nil, fmt.Errorf("reading task %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = yamlutil.CheckSize(data)
	} else {
		data, err = yamlutil.ToJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTaskParse, path, err)
	}

	task, err := l.validate(data)
	if err != nil {
		return nil, err
	}

	task.SourcePath = path
	if abs, err := filepath.Abs(path); err == nil {
		task.SourcePath = abs
	}
	return task, nil
}

// ValidateMap validates an in-memory payload. The payload is copied
// through a JSON round trip and never modified.
func (l *Loader) ValidateMap(payload map[string]any) (*Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTaskParse, err)
	}
	return l.validate(data)
}

func (l *Loader) validate(data []byte) (*Task, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var instance any
	if err := dec.Decode(&instance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTaskParse, err)
	}

	if err := l.schema.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, newValidationError(verr)
		}
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	// The schema accepts 30.0 as an integer; the typed fields need 30.
	normalized, err := json.Marshal(integralNumbers(instance))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTaskParse, err)
	}

	var task Task
	if err := json.Unmarshal(normalized, &task); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTaskParse, err)
	}
	return enrich(&task), nil
}

// integralNumbers rewrites numbers with an integer value ("30.0", "3e1")
// in their plain integer form. Other values are returned unchanged.
func integralNumbers(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = integralNumbers(item)
		}
	case []any:
		for i, item := range v {
			v[i] = integralNumbers(item)
		}
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return v
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return v
		}
		return json.Number(strconv.FormatInt(int64(f), 10))
	}
	return v
}

// newValidationError flattens the cause tree to its leaves.
func newValidationError(root *jsonschema.ValidationError) *ValidationError {
	var violations []Violation

	var collect func(e *jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			violations = append(violations, Violation{
				Path:    dottedPath(e.InstanceLocation),
				Message: e.Message,
			})
			return
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(root)

	slices.SortStableFunc(violations, func(a, b Violation) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Message, b.Message)
	})
	return &ValidationError{Violations: slices.Compact(violations)}
}

// dottedPath turns a JSON pointer ("/steps/0/text") into "steps.0.text".
func dottedPath(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" || pointer == "/" {
		return rootPath
	}

	tokens := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	for i, tok := range tokens {
		tokens[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(tok)
	}
	return strings.Join(tokens, ".")
}

// LoadTask reads, validates and enriches the task at path.
//
// A missing file returns an error matching ErrTaskNotFound, malformed YAML
// or JSON matches ErrTaskParse, and schema violations return a
// *ValidationError listing all of them.
func LoadTask(path string, opts ...LoaderOption) (*Task, error) {
	l, err := NewLoader(opts...)
	if err != nil {
		return nil, err
	}
	return l.Load(path)
}

// ValidateTaskMap validates and enriches an in-memory payload, such as one
// assembled from an uploaded document.
func ValidateTaskMap(payload map[string]any, opts ...LoaderOption) (*Task, error) {
	l, err := NewLoader(opts...)
	if err != nil {
		return nil, err
	}
	return l.ValidateMap(payload)
}
