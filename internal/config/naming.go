package config

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
)

// TemplateEngine renders file name patterns such as
// "benchmark_{{goVersion}}.log".
type TemplateEngine struct {
	funcMap template.FuncMap
	now     func() time.Time
}

// NameData is passed to the execution context
type NameData struct {
	GoVersion string
	Timestamp string
	UUID      string
}

// NewTemplateEngine initializes the engine and its functions
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{now: time.Now}

	e.funcMap = template.FuncMap{
		"uuid":  e.randomUUID,
		"date":  e.date,
		"upper": strings.ToUpper,
	}

	return e
}

// Preprocess converts simple variables {{goVersion}} to Go template syntax {{.GoVersion}}
func (e *TemplateEngine) Preprocess(input string) string {
	s := input
	s = strings.ReplaceAll(s, "{{goVersion}}", "{{.GoVersion}}")
	s = strings.ReplaceAll(s, "{{timestamp}}", "{{.Timestamp}}")
	s = strings.ReplaceAll(s, "{{runID}}", "{{.UUID}}")
	return s
}

// Render expands pattern. A pattern without template actions comes back
// unchanged.
func (e *TemplateEngine) Render(pattern string) (string, error) {
	t, err := template.New("name").Funcs(e.funcMap).Parse(e.Preprocess(pattern))
	if err != nil {
		return "", fmt.Errorf("parse name pattern %q: %w", pattern, err)
	}

	data := NameData{
		GoVersion: GoVersion(),
		Timestamp: e.now().Format("20060102-150405"),
		UUID:      e.randomUUID(),
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render name pattern %q: %w", pattern, err)
	}
	return buf.String(), nil
}

// GoVersion returns the running toolchain version without the "go" prefix,
// e.g. 1.24.3.
func GoVersion() string {
	return strings.TrimPrefix(runtime.Version(), "go")
}

func (e *TemplateEngine) randomUUID() string {
	return uuid.New().String()
}

func (e *TemplateEngine) date(layout string) string {
	return e.now().Format(layout)
}
