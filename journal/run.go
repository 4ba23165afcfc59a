package journal

import (
	"bytes"
	"os"
	"sort"
	"text/template"
	"time"
)

// RunSummary describes one simulation run.
type RunSummary struct {
	RunID    string
	Created  time.Time
	Scenario string

	Cycles       int
	Actors       int
	Resolutions  int
	Liquidations int
	ByHandler    map[string]int

	// Net worth of every actor except the government, equity holdings
	// excluded.
	ValueStart float64
	ValueEnd   float64

	Fatal string
	Notes []string
}

// HandlerCount is one row of the handler table.
type HandlerCount struct {
	Handler string
	Count   int
}

// Handlers returns the per-handler counts sorted by handler name.
func (r *RunSummary) Handlers() []HandlerCount {
	out := make([]HandlerCount, 0, len(r.ByHandler))
	for h, n := range r.ByHandler {
		out = append(out, HandlerCount{Handler: h, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handler < out[j].Handler })
	return out
}

var runOrgFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var runOrg = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// FormatOrg renders the summary as an org-mode entry.
func (r *RunSummary) FormatOrg() (string, error) {
	buf := new(bytes.Buffer)
	if err := runOrg.Execute(buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteOrg writes the org-mode entry to path.
func (r *RunSummary) WriteOrg(path string) error {
	s, err := r.FormatOrg()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0644)
}

const RunOrgTemplate = `
* RUN: {{if .Scenario}}{{.Scenario}}{{else}}(scenario?){{end}}
:PROPERTIES:
:RUN_ID:       {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:CYCLES:       {{.Cycles}}
:ACTORS:       {{.Actors}}
:RESOLUTIONS:  {{.Resolutions}}
:LIQUIDATIONS: {{.Liquidations}}
:VALUE_START:  {{printf "%.2f" .ValueStart}}
:VALUE_END:    {{printf "%.2f" .ValueEnd}}
:CREATED:      [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:
{{- if .Fatal }}

** Aborted
- {{.Fatal}}
{{- end }}

** Resolutions by handler
| Handler | Count |
|---------+-------|
{{- range .Handlers }}
| {{.Handler}} | {{.Count}} |
{{- end }}

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
