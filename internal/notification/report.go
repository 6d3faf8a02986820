package notification

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/hfarrukh/solaradvisor/internal/advisor"
)

const reportHTML = `<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Solar System Recommendation</h2>
  <p>Analysis <code>{{.ID}}</code>, generated {{.CreatedAt.Format "2 Jan 2006 15:04 MST"}}.</p>
  {{if .Rec.SuggestedSystemKw}}
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><b>Suggested system size</b></td><td>{{printf "%.2f" (deref .Rec.SuggestedSystemKw)}} kW</td></tr>
    <tr><td><b>Estimated monthly production</b></td><td>{{printf "%.0f" (deref .Rec.EstMonthlyProductionKwh)}} kWh</td></tr>
    <tr><td><b>Estimated monthly savings</b></td><td>PKR {{printf "%.0f" (deref .Rec.EstMonthlySavings)}}</td></tr>
    <tr><td><b>Approximate install cost</b></td><td>PKR {{printf "%.0f" (deref .Rec.ApproxInstallCost)}}</td></tr>
    {{if .Rec.PaybackYears}}<tr><td><b>Payback period</b></td><td>{{printf "%.2f" (deref .Rec.PaybackYears)}} years</td></tr>{{end}}
    {{if .Rec.CO2ReductionTonsPerYear}}<tr><td><b>CO2 reduction</b></td><td>{{printf "%.3f" (deref .Rec.CO2ReductionTonsPerYear)}} tons/year</td></tr>{{end}}
    {{if .Rec.PercentOffset}}<tr><td><b>Consumption offset</b></td><td>{{printf "%.1f" (deref .Rec.PercentOffset)}}%</td></tr>{{end}}
  </table>
  {{else}}
  <p>A recommendation could not be computed from the supplied bill.</p>
  {{end}}
  {{if .Rec.Notes}}
  <h3>Notes</h3>
  <ul>{{range .Rec.Notes}}<li>{{.}}</li>{{end}}</ul>
  {{end}}
</body>
</html>
`

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"deref": func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	},
}).Parse(reportHTML))

// RenderAnalysisReport produces the subject and HTML body for emailing
// an analysis to a customer.
func RenderAnalysisReport(a advisor.Analysis) (string, string, error) {
	subject := "Your solar recommendation"
	if a.Recommendation.SuggestedSystemKw != nil {
		subject = fmt.Sprintf("Your solar recommendation: %.2f kW system", *a.Recommendation.SuggestedSystemKw)
	}

	var sb strings.Builder
	if err := reportTmpl.Execute(&sb, map[string]interface{}{
		"ID":        a.ID,
		"CreatedAt": a.CreatedAt,
		"Rec":       a.Recommendation,
	}); err != nil {
		return "", "", fmt.Errorf("render report: %w", err)
	}
	return subject, sb.String(), nil
}
