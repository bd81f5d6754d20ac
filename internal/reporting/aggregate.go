package reporting

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"taskflow/internal/models"
)

// DateLayout is the DD-MM-YYYY format used for every date shown in reports.
const DateLayout = "02-01-2006"

// Bucket sets. Team summaries never report blocked work.
var (
	CompletionStatuses = []models.TaskStatus{
		models.StatusToDo, models.StatusInProgress, models.StatusBlocked, models.StatusCompleted,
	}
	TeamStatuses = []models.TaskStatus{
		models.StatusToDo, models.StatusInProgress, models.StatusCompleted,
	}
)

type ReportType string

const (
	TypeProject              ReportType = "project"
	TypeUser                 ReportType = "user"
	TypeTeam                 ReportType = "team"
	TypeLoggedTimeProject    ReportType = "logged-time-project"
	TypeLoggedTimeDepartment ReportType = "logged-time-department"
)

// Row is one display-formatted record.
type Row struct {
	ID          int64      `json:"id"`
	Kind        RecordKind `json:"kind"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Deadline    string     `json:"deadline"`
	Priority    string     `json:"priority"`
	Tags        string     `json:"tags"`
	Description string     `json:"description"`
	Owner       string     `json:"owner"`
	Assignee    string     `json:"assignee"`
	Project     string     `json:"project"`
	CreatedAt   string     `json:"createdAt"`
	LoggedTime  string     `json:"loggedTime,omitempty"`
}

// Aggregates holds per-status counts and totals. Total counts every input
// record, including those whose status matched no bucket.
type Aggregates struct {
	Counts             map[models.TaskStatus]int
	Total              int
	TotalLoggedMinutes int
	TotalLoggedTime    string
}

// MarshalJSON flattens counts next to the totals:
// {"To Do":1,"Completed":2,"total":3,"totalLoggedTime":"1 hour"}.
func (a Aggregates) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Counts)+3)
	for status, n := range a.Counts {
		out[string(status)] = n
	}
	out["total"] = a.Total
	if a.TotalLoggedTime != "" {
		out["totalLoggedTime"] = a.TotalLoggedTime
		out["totalLoggedMinutes"] = a.TotalLoggedMinutes
	}
	return json.Marshal(out)
}

type Metadata struct {
	Type         ReportType `json:"type"`
	ProjectID    int64      `json:"projectId,omitempty"`
	ProjectName  string     `json:"projectName,omitempty"`
	ProjectOwner string     `json:"projectOwner,omitempty"`
	UserID       int64      `json:"userId,omitempty"`
	Username     string     `json:"username,omitempty"`
	Department   string     `json:"department,omitempty"`
	Timeframe    string     `json:"timeframe,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	GeneratedAt  time.Time  `json:"generatedAt"`
}

// Result is the structured output of every report builder.
type Result struct {
	Data       map[models.TaskStatus][]Row `json:"data"`
	Statuses   []models.TaskStatus         `json:"statuses"`
	Aggregates Aggregates                  `json:"aggregates"`
	Metadata   Metadata                    `json:"metadata"`
}

// HasLoggedTime reports whether the result carries a logged-time total.
func (r *Result) HasLoggedTime() bool {
	return r.Aggregates.TotalLoggedTime != ""
}

type Options struct {
	// LoggedTime sums TimeTaken over all records into the aggregates and
	// adds a per-row logged time.
	LoggedTime bool
}

// Aggregate partitions records into the given ordered status buckets.
// Records keep their input order within a bucket. A record whose status is
// not in statuses lands in no bucket but still counts toward Total.
func Aggregate(records []Record, statuses []models.TaskStatus, opts Options) Result {
	res := Result{
		Data:     make(map[models.TaskStatus][]Row, len(statuses)),
		Statuses: append([]models.TaskStatus(nil), statuses...),
		Aggregates: Aggregates{
			Counts: make(map[models.TaskStatus]int, len(statuses)),
			Total:  len(records),
		},
	}
	for _, s := range statuses {
		res.Data[s] = []Row{}
		res.Aggregates.Counts[s] = 0
	}

	for _, rec := range records {
		if _, ok := res.Data[rec.Status]; ok {
			row := FormatRow(rec)
			if opts.LoggedTime {
				row.LoggedTime = FormatLoggedTime(rec.TimeTaken)
			}
			res.Data[rec.Status] = append(res.Data[rec.Status], row)
			res.Aggregates.Counts[rec.Status]++
		}
	}

	if opts.LoggedTime {
		res.Aggregates.TotalLoggedMinutes = SumMinutes(records)
		res.Aggregates.TotalLoggedTime = FormatLoggedTime(res.Aggregates.TotalLoggedMinutes)
	}
	return res
}

// SumMinutes adds up TimeTaken across all records; negative values count as 0.
func SumMinutes(records []Record) int {
	total := 0
	for _, r := range records {
		if r.TimeTaken > 0 {
			total += r.TimeTaken
		}
	}
	return total
}

// FormatRow applies the display defaults for missing fields.
func FormatRow(r Record) Row {
	row := Row{
		ID:          r.ID,
		Kind:        r.Kind,
		Title:       r.Title,
		Status:      string(r.Status),
		Deadline:    "No deadline",
		Priority:    "Not set",
		Tags:        orDefault(r.Tags, "No tags"),
		Description: orDefault(r.Description, "No description"),
		Owner:       "No owner",
		Assignee:    AssigneeNames(r.Assignee),
		Project:     "No project",
		CreatedAt:   FormatDate(&r.CreatedAt),
	}
	if r.DueDate != nil && !r.DueDate.IsZero() {
		row.Deadline = FormatDate(r.DueDate)
	}
	if r.Priority != 0 {
		row.Priority = strconv.Itoa(r.Priority)
	}
	if r.Owner != nil && r.Owner.Username != "" {
		row.Owner = r.Owner.Username
	}
	if r.Project != nil && r.Project.Name != "" {
		row.Project = r.Project.Name
	}
	return row
}

// AssigneeNames joins the usernames of valid assignees, or "Unassigned".
func AssigneeNames(assignees []*models.UserRef) string {
	names := make([]string, 0, len(assignees))
	for _, a := range assignees {
		if a != nil && a.Username != "" {
			names = append(names, a.Username)
		}
	}
	if len(names) == 0 {
		return "Unassigned"
	}
	return strings.Join(names, ", ")
}

func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func orDefault(s, def string) string {
	if v := strings.TrimSpace(s); v != "" {
		return v
	}
	return def
}
