package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"

	mtlgen "github.com/alnah/go-mtlgen"
	"github.com/alnah/go-mtlgen/internal/fileutil"
	"github.com/alnah/go-mtlgen/internal/hints"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Assets   assetsInfo `json:"assets"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// assetsInfo reports whether the schema, templates and styles in use load.
type assetsInfo struct {
	Path         string `json:"path,omitempty"`
	Schema       bool   `json:"schema"`
	Templates    bool   `json:"templates"` // templates and style
	DocxTemplate string `json:"docx_template,omitempty"`
}

func newDoctorCmd(a *app) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check Chrome, environment and assets",
		Long: `Doctor checks that PDFs can be produced: Chrome/Chromium is found, the
sandbox setting fits the environment, the temp directory is writable and
the schema, templates and styles in use load.
Exits 1 when an error is found; warnings alone exit 0.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDoctor(cmd, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	addAssetFlags(cmd.Flags(), &a.flags.assets)
	addSchemaFlags(cmd.Flags(), &a.flags.schema)
	return cmd
}

// errDoctor reports a failed diagnosis; the details are already printed.
var errDoctor = errors.New("doctor found errors")

func (a *app) runDoctor(cmd *cobra.Command, jsonOutput bool) error {
	s, err := a.settings()
	if err != nil {
		return err
	}

	result := diagnose(s)

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(out, result)
	}

	if result.Status == statusErrors {
		return reported(errDoctor)
	}
	return nil
}

// diagnose performs all diagnostic checks.
func diagnose(s *settings) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result)
	checkEnvironment(result)
	checkSystem(result)
	checkAssets(result, s)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			// rod can download Chromium on first use, so this is not fatal.
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; the first build will try to download it. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- browser path from rod lookup or ROD_BROWSER_BIN
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()
	result.Env.CI = hints.IsInCI() || os.Getenv("CIRCLECI") != ""

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("MTLGEN_CONTAINER") == "1" {
		return true, "MTLGEN_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory, where PDF pages are staged.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "mtlgen-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// checkAssets compiles the schema and renders every surface of an empty
// task with the configured templates and style.
func checkAssets(result *doctorResult, s *settings) {
	result.Assets.Path = s.assetPath

	opts, err := s.loaderOptions()
	if err == nil {
		_, err = mtlgen.NewLoader(opts...)
	}
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Schema: %v", err))
	} else {
		result.Assets.Schema = true
	}

	if err := checkTemplates(context.Background(), s); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Templates: %v", err))
	} else {
		result.Assets.Templates = true
	}

	if s.template != "" {
		result.Assets.DocxTemplate = s.template
		if !fileutil.FileExists(s.template) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("DOCX template %s not found; Word files use the blank document", s.template))
		}
	}
}

func checkTemplates(ctx context.Context, s *settings) error {
	renderer, err := mtlgen.NewRenderer(s.renderOptions(nil)...)
	if err != nil {
		return err
	}
	empty := &mtlgen.Task{}
	for _, d := range mtlgen.DocTypes() {
		data := mtlgen.BuildContext(empty, map[string]any{"document_type": d.Label()})
		if _, err := renderer.RenderFullHTML(ctx, string(d), data, ""); err != nil {
			return err
		}
	}
	return nil
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mtlgen doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Assets")
	if r.Assets.Path != "" {
		fmt.Fprintf(w, "  [OK] Custom path: %s\n", r.Assets.Path)
	}
	printCheck(w, "Schema", r.Assets.Schema)
	printCheck(w, "Templates", r.Assets.Templates)
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to build")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func printCheck(w io.Writer, name string, ok bool) {
	if ok {
		fmt.Fprintf(w, "  [OK] %s: loaded\n", name)
	} else {
		fmt.Fprintf(w, "  [ERROR] %s: failed\n", name)
	}
}
