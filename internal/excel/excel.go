// Package excel writes report results as xlsx workbooks: a "Summary" sheet
// first, then one sheet per status bucket in bucket order.
package excel

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"taskflow/internal/reporting"
)

const SummarySheet = "Summary"

var (
	taskHeader = []string{
		"Task ID", "Task Name", "Deadline", "Priority", "Tags",
		"Owner", "Assignee", "Project", "Created At", "Description",
	}
	teamHeader = []string{
		"Task ID", "Task Name", "Status", "Owner", "Assignee(s)", "Created Date", "Due Date",
	}
	memberHeader = []string{"Username", "Department", "Roles", "Task Count"}
)

// Render builds the workbook for a status-grouped report. Logged-time
// results get an extra Logged Time column.
func Render(res *reporting.Result) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer w.f.Close()

	if err := w.summary(res, nil); err != nil {
		return nil, err
	}

	header := taskHeader
	if res.HasLoggedTime() {
		header = append(append([]string(nil), taskHeader...), "Logged Time")
	}
	for _, status := range res.Statuses {
		rows := make([][]any, 0, len(res.Data[status]))
		for _, r := range res.Data[status] {
			row := []any{r.ID, r.Title, r.Deadline, r.Priority, r.Tags, r.Owner, r.Assignee, r.Project, r.CreatedAt, r.Description}
			if res.HasLoggedTime() {
				row = append(row, r.LoggedTime)
			}
			rows = append(rows, row)
		}
		if err := w.table(string(status), header, rows); err != nil {
			return nil, err
		}
	}
	return w.bytes()
}

// RenderTeamSummary builds the team workbook. The summary sheet carries the
// team statistics and the Team Members table.
func RenderTeamSummary(ts *reporting.TeamSummary) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer w.f.Close()

	if err := w.summary(&ts.Result, ts); err != nil {
		return nil, err
	}
	for _, status := range ts.Statuses {
		rows := make([][]any, 0, len(ts.Data[status]))
		for _, r := range ts.Data[status] {
			rows = append(rows, []any{r.ID, r.Title, r.Status, r.Owner, r.Assignee, r.CreatedAt, r.Deadline})
		}
		if err := w.table(string(status), teamHeader, rows); err != nil {
			return nil, err
		}
	}
	return w.bytes()
}

type workbook struct {
	f    *excelize.File
	bold int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	return &workbook{f: f, bold: bold}, nil
}

func (w *workbook) summary(res *reporting.Result, team *reporting.TeamSummary) error {
	row := 1
	put := func(values ...any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return w.f.SetSheetRow(SummarySheet, cell, &values)
	}
	heading := func(values ...any) error {
		if err := w.f.SetRowStyle(SummarySheet, row, row, w.bold); err != nil {
			return err
		}
		return put(values...)
	}

	if err := heading(res.Metadata.Type.Title()); err != nil {
		return err
	}
	for _, f := range reporting.MetadataFields(res.Metadata) {
		if err := put(f.Label, f.Value); err != nil {
			return err
		}
	}
	row++
	if err := heading("Status", "Count"); err != nil {
		return err
	}
	for _, f := range reporting.CountFields(res) {
		if err := put(f.Label, f.Value); err != nil {
			return err
		}
	}

	if team != nil {
		row++
		s := team.Summary
		for _, line := range [][]any{
			{"Total Tasks", s.TotalTasks},
			{"Team Size", s.TeamSize},
			{"Completed", s.Completed},
			{"Completion Rate", fmt.Sprintf("%d%%", s.CompletionRate)},
		} {
			if err := put(line...); err != nil {
				return err
			}
		}
		row++
		if err := heading("Team Members"); err != nil {
			return err
		}
		if err := heading(toAny(memberHeader)...); err != nil {
			return err
		}
		for _, m := range team.Members {
			if err := put(m.Username, m.Department, strings.Join(m.Roles, ", "), m.TaskCount); err != nil {
				return err
			}
		}
	}
	return w.f.SetColWidth(SummarySheet, "A", "D", 22)
}

func (w *workbook) table(sheet string, header []string, rows [][]any) error {
	if _, err := w.f.NewSheet(sheet); err != nil {
		return err
	}
	if err := w.f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := w.f.SetRowStyle(sheet, 1, 1, w.bold); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return w.f.SetColWidth(sheet, "A", last, 18)
}

func (w *workbook) bytes() ([]byte, error) {
	w.f.SetActiveSheet(0)
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
