package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render writes the report in the given format.
func (r Report) Render(w io.Writer, format string) error {
	switch format {
	case "", FormatText:
		return r.renderText(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.normalized())
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r.normalized()); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown report format %q", format)
}

// normalized replaces a nil issue list so machine formats always carry one.
func (r Report) normalized() Report {
	if r.Issues == nil {
		r.Issues = []Issue{}
	}
	return r
}

func (r Report) renderText(w io.Writer) error {
	if len(r.Issues) == 0 {
		_, err := fmt.Fprintln(w, "No issues found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSUBJECT\tDETAIL")
	for _, is := range r.Issues {
		detail := is.Detail
		if len(is.Related) > 0 {
			detail += " [" + strings.Join(is.Related, ", ") + "]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", is.Category, is.Subject, detail)
	}
	fmt.Fprintf(tw, "\n%d issue(s)\n", len(r.Issues))
	return tw.Flush()
}
