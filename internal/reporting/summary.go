package reporting

import "strconv"

// Title is the human-readable report heading.
func (t ReportType) Title() string {
	switch t {
	case TypeProject:
		return "Project Task Completion Report"
	case TypeUser:
		return "User Task Completion Report"
	case TypeTeam:
		return "Team Summary Report"
	case TypeLoggedTimeProject:
		return "Project Logged Time Report"
	case TypeLoggedTimeDepartment:
		return "Department Logged Time Report"
	}
	return "Report"
}

// Field is one label/value line of a report header or summary sheet.
type Field struct {
	Label string
	Value string
}

// MetadataFields lists the metadata that applies to the report, in display
// order. Empty values are skipped.
func MetadataFields(m Metadata) []Field {
	var out []Field
	add := func(label, value string) {
		if value != "" {
			out = append(out, Field{Label: label, Value: value})
		}
	}
	add("Report", m.Type.Title())
	add("Project", m.ProjectName)
	add("Project Owner", m.ProjectOwner)
	add("User", m.Username)
	add("Department", m.Department)
	add("Timeframe", m.Timeframe)
	if m.StartDate != nil && m.EndDate != nil {
		add("Period", FormatDate(m.StartDate)+" - "+FormatDate(m.EndDate))
	}
	add("Generated At", m.GeneratedAt.Format(DateLayout+" 15:04"))
	return out
}

// CountFields lists per-status counts in bucket order followed by the total
// and, when present, the logged-time total.
func CountFields(r *Result) []Field {
	out := make([]Field, 0, len(r.Statuses)+2)
	for _, s := range r.Statuses {
		out = append(out, Field{Label: string(s), Value: strconv.Itoa(r.Aggregates.Counts[s])})
	}
	out = append(out, Field{Label: "Total", Value: strconv.Itoa(r.Aggregates.Total)})
	if r.HasLoggedTime() {
		out = append(out, Field{Label: "Total Logged Time", Value: r.Aggregates.TotalLoggedTime})
	}
	return out
}
