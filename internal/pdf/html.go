package pdf

import (
	"bytes"
	"html/template"

	"taskflow/internal/reporting"
)

const styles = `
body { font-family: Arial, Helvetica, sans-serif; color: #222; font-size: 12px; }
h1 { font-size: 22px; margin: 0 0 8px; color: #1f3b63; }
h2 { font-size: 16px; margin: 18px 0 8px; padding-bottom: 4px; border-bottom: 2px solid #1f3b63; }
.meta { margin-bottom: 14px; }
.meta div { margin: 2px 0; }
.meta b { display: inline-block; min-width: 120px; }
.counts { display: flex; flex-wrap: wrap; gap: 8px; margin-bottom: 10px; }
.count { border: 1px solid #ccd; border-radius: 4px; padding: 6px 10px; background: #f4f6fa; }
.card { border: 1px solid #dde; border-radius: 4px; padding: 8px 10px; margin-bottom: 8px; page-break-inside: avoid; }
.card h3 { font-size: 13px; margin: 0 0 4px; }
.card .row { margin: 1px 0; }
.card .label { color: #666; }
.empty { color: #888; font-style: italic; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccd; padding: 4px 6px; text-align: left; }
th { background: #f4f6fa; }
`

type section struct {
	Status string
	Rows   []reporting.Row
}

type document struct {
	Title    string
	Styles   template.CSS
	Meta     []reporting.Field
	Counts   []reporting.Field
	Sections []section
	Members  []reporting.TeamMember
	Summary  *reporting.TeamStats
}

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{.Styles}}</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">
{{- range .Meta}}
<div><b>{{.Label}}:</b> {{.Value}}</div>
{{- end}}
</div>
<div class="counts">
{{- range .Counts}}
<div class="count"><b>{{.Label}}:</b> {{.Value}}</div>
{{- end}}
</div>
{{- with .Summary}}
<h2>Team Summary</h2>
<div class="meta">
<div><b>Total Tasks:</b> {{.TotalTasks}}</div>
<div><b>Team Size:</b> {{.TeamSize}}</div>
<div><b>Completed:</b> {{.Completed}}</div>
<div><b>Completion Rate:</b> {{.CompletionRate}}%</div>
</div>
{{- end}}
{{- if .Members}}
<h2>Team Members</h2>
<table>
<tr><th>Username</th><th>Department</th><th>Roles</th><th>Tasks</th></tr>
{{- range .Members}}
<tr><td>{{.Username}}</td><td>{{.Department}}</td><td>{{range $i, $r := .Roles}}{{if $i}}, {{end}}{{$r}}{{end}}</td><td>{{.TaskCount}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- range .Sections}}
<h2>{{.Status}} ({{len .Rows}})</h2>
{{- if not .Rows}}
<p class="empty">No tasks</p>
{{- end}}
{{- range .Rows}}
<div class="card">
<h3>#{{.ID}} {{.Title}}</h3>
<div class="row"><span class="label">Deadline:</span> {{.Deadline}}</div>
<div class="row"><span class="label">Priority:</span> {{.Priority}}</div>
<div class="row"><span class="label">Tags:</span> {{.Tags}}</div>
<div class="row"><span class="label">Owner:</span> {{.Owner}}</div>
<div class="row"><span class="label">Assignee:</span> {{.Assignee}}</div>
<div class="row"><span class="label">Project:</span> {{.Project}}</div>
<div class="row"><span class="label">Created At:</span> {{.CreatedAt}}</div>
{{- if .LoggedTime}}
<div class="row"><span class="label">Logged Time:</span> {{.LoggedTime}}</div>
{{- end}}
<div class="row"><span class="label">Description:</span> {{.Description}}</div>
</div>
{{- end}}
{{- end}}
</body>
</html>
`))

// BuildHTML renders a status-grouped report as a standalone HTML document.
// All record text is escaped.
func BuildHTML(res *reporting.Result) (string, error) {
	return execute(newDocument(res))
}

// BuildTeamSummaryHTML renders a team summary, adding the member table and
// completion statistics.
func BuildTeamSummaryHTML(ts *reporting.TeamSummary) (string, error) {
	p := newDocument(&ts.Result)
	p.Members = ts.Members
	p.Summary = &ts.Summary
	return execute(p)
}

func newDocument(res *reporting.Result) document {
	p := document{
		Title:  res.Metadata.Type.Title(),
		Styles: template.CSS(styles),
		Meta:   reporting.MetadataFields(res.Metadata),
		Counts: reporting.CountFields(res),
	}
	for _, s := range res.Statuses {
		p.Sections = append(p.Sections, section{Status: string(s), Rows: res.Data[s]})
	}
	return p
}

func execute(p document) (string, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}
