package manifest

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"
)

//go:embed experimental_setup.md.tmpl
var setupTemplate string

var setupTmpl = template.Must(template.New("setup").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(setupTemplate))

// SetupFamily describes one experiment family in the setup document.
type SetupFamily struct {
	Name          string
	Purpose       string
	Configuration []string
	Metrics       []string
	Raw           []string
	CSV           string
	Summary       string
}

// Setup is the data behind experimental_setup.md.
type Setup struct {
	Project   string
	OutputDir string
	Families  []SetupFamily
	Outputs   []string
	Generated string
}

// SetupTimeLayout is the timestamp format at the foot of the document.
const SetupTimeLayout = "2006-01-02 15:04:05"

// RenderSetup renders the experimental setup document.
func RenderSetup(s Setup, now time.Time) (string, error) {
	s.Generated = now.Format(SetupTimeLayout)
	var b strings.Builder
	if err := setupTmpl.Execute(&b, s); err != nil {
		return "", fmt.Errorf("manifest: render setup: %w", err)
	}
	return b.String(), nil
}
