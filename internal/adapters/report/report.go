// Package report renders an audit report aggregate for humans: a console
// text summary and a standalone HTML export. It only reads the aggregate;
// no metric math happens here.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/okian/pipeaudit/internal/app"
)

const textSummary = `===========================================
        PIPELINE AUDIT REPORT
===========================================

Run:              {{.RunID}}
Generated:        {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}
Deals analyzed:   {{.DealCount}}
Activities:       {{.ActivityCount}}
Quarantined rows: {{len .Quarantine}}
Total value:      {{money .TotalValue}}
Open pipeline:    {{money .OpenValue}}

--- DEAD DEALS ----------------------------
{{with .DeadDeals}}Dead deals found: {{len .DealIDs}}{{if .PctOfOpenPipeline}} ({{pct .PctOfOpenPipeline}} of open pipeline value){{end}}
Revenue at risk:  {{money .TotalAmount}}
{{if .AvgDaysStale}}Average staleness: {{days .AvgDaysStale}}
{{end}}{{else}}{{failure "dead_deals" $}}{{end}}
--- SPEED TO LEAD -------------------------
{{with .SpeedToLead}}Responded deals:  {{len .RespondedIDs}} ({{len .NoResponseIDs}} with no response)
Mean response:    {{hours .MeanHours}}
Median response:  {{hours .MedianHours}}
{{if .BestOwner}}Fastest rep:      {{.BestOwner}}
{{end}}{{if .WorstOwner}}Slowest rep:      {{.WorstOwner}}
{{end}}Response/win correlation: {{coef .Correlation}}
Lost past target: {{len .LostOverTargetIDs}} deals (heuristic, not causal)
{{else}}{{failure "speed_to_lead" $}}{{end}}
--- FUNNEL --------------------------------
{{with .Funnel}}{{range .Stages}}{{printf "%-14s %5d reaching" .Stage .Reaching}}
{{end}}{{range .Transitions}}{{if .Bottleneck}}BOTTLENECK: {{.From}} -> {{.To}} drop-off {{ratio .Dropoff}} (expected at most {{pct100 .Expected.High}})
{{end}}{{end}}{{if .Biggest}}{{with index .Transitions (deref .Biggest)}}Biggest drop-off: {{.From}} -> {{.To}}
{{end}}{{end}}{{else}}{{failure "funnel" $}}{{end}}
--- REP PERFORMANCE -----------------------
{{with .RepPerformance}}{{range .Ranking}}{{printf "#%d %-18s score %+.2f" .Rank .Owner .Score}}
{{end}}{{range .Recommendations}}  - {{.Owner}}: {{.Message}}
{{end}}{{else}}{{failure "rep_performance" $}}{{end}}
--- DATA QUALITY --------------------------
{{with .DataQuality}}Overall score:    {{.Score}}/100{{if lt .Score $.MinQualityScore}}  (below the {{$.MinQualityScore}} health bar){{end}}
Violating records: {{len .Violations}}
{{else}}{{failure "data_quality" $}}{{end}}
===========================================
`

// Optional metrics render as n/a instead of inventing a number.
var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.0f", v) },
	"pct100": func(v float64) string {
		return fmt.Sprintf("%.0f%%", v*100)
	},
	"pct": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.1f%%", *v)
	},
	"ratio": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.0f%%", *v*100)
	},
	"hours": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.1f h", *v)
	},
	"days": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.0f days", *v)
	},
	"coef": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%+.2f", *v)
	},
	"deref": func(v *int) int { return *v },
	"failure": func(name string, rep *app.Report) string {
		if st, ok := rep.Status(name); ok && st.Reason != "" {
			return "not computed: " + st.Reason + "\n"
		}
		return "not computed\n"
	},
}

var textTmpl = template.Must(template.New("summary").Funcs(funcs).Parse(textSummary))

// WriteText renders the console summary.
func WriteText(w io.Writer, rep *app.Report) error {
	if err := textTmpl.Execute(w, rep); err != nil {
		return fmt.Errorf("render text summary: %w", err)
	}
	return nil
}

// WriteHTML renders a standalone HTML page embedding the text summary.
// The summary is already plain text; wrapping it keeps the export trivially
// diffable against console output.
func WriteHTML(w io.Writer, rep *app.Report) error {
	var sb strings.Builder
	if err := textTmpl.Execute(&sb, rep); err != nil {
		return fmt.Errorf("render html summary: %w", err)
	}
	return htmlTmpl.Execute(w, htmlPage{
		Title:   "Pipeline Audit " + rep.RunID,
		Summary: sb.String(),
	})
}
