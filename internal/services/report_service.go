package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"taskflow/internal/logging"
	"taskflow/internal/models"
	"taskflow/internal/reporting"
)

// Narrow store contracts the report builders depend on. The Postgres
// repositories satisfy them; tests use in-memory fakes.
type TaskFinder interface {
	FindTasks(ctx context.Context, q models.TaskQuery) ([]models.Task, error)
}

type SubtaskFinder interface {
	FindSubtasks(ctx context.Context, q models.TaskQuery) ([]models.Subtask, error)
}

// ProjectFinder returns (nil, nil) when the project doesn't exist.
type ProjectFinder interface {
	FindProjectByID(ctx context.Context, id int64) (*models.Project, error)
}

// UserFinder returns (nil, nil) when the user doesn't exist.
type UserFinder interface {
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
}

// DefaultDepartments is the department allow-list used when config sets none.
var DefaultDepartments = []string{
	"Engineering",
	"Design",
	"Product",
	"Marketing",
	"Sales",
	"Finance",
	"Human Resources",
	"Operations",
	"Customer Support",
	"Legal",
}

// ReportService builds the structured report results. It holds no state
// between calls beyond its collaborators.
type ReportService struct {
	tasks       TaskFinder
	subtasks    SubtaskFinder
	projects    ProjectFinder
	users       UserFinder
	departments map[string]struct{}
	now         func() time.Time
	log         zerolog.Logger
}

func NewReportService(
	tasks TaskFinder,
	subtasks SubtaskFinder,
	projects ProjectFinder,
	users UserFinder,
	departments []string,
) *ReportService {
	if len(departments) == 0 {
		departments = DefaultDepartments
	}
	allowed := make(map[string]struct{}, len(departments))
	for _, d := range departments {
		allowed[d] = struct{}{}
	}
	return &ReportService{
		tasks:       tasks,
		subtasks:    subtasks,
		projects:    projects,
		users:       users,
		departments: allowed,
		now:         time.Now,
		log:         logging.Component("reports"),
	}
}

// WithClock overrides the generatedAt clock.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// Departments returns the allow-list in sorted order.
func (s *ReportService) Departments() []string {
	out := make([]string, 0, len(s.departments))
	for d := range s.departments {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// ProjectTaskCompletion groups a project's tasks and subtasks created within
// [start, end] by status.
func (s *ReportService) ProjectTaskCompletion(ctx context.Context, projectID int64, start, end time.Time) (*reporting.Result, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	project, err := s.requireProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	q := models.TaskQuery{ProjectID: &projectID, CreatedFrom: &start, CreatedTo: &end}
	tasks, subtasks, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	records := reporting.Merge(tasks, subtasks, project.Ref())
	res := reporting.Aggregate(records, reporting.CompletionStatuses, reporting.Options{})
	res.Metadata = reporting.Metadata{
		Type:         reporting.TypeProject,
		ProjectID:    project.ID,
		ProjectName:  project.Name,
		ProjectOwner: ownerName(project.Owner),
		StartDate:    &start,
		EndDate:      &end,
		GeneratedAt:  s.now(),
	}

	s.log.Info().
		Int64("project_id", projectID).
		Int("total", res.Aggregates.Total).
		Msg("[report][project] generated")
	return &res, nil
}

// UserTaskCompletion groups tasks and subtasks the user owns or is assigned
// to, created within [start, end], by status.
func (s *ReportService) UserTaskCompletion(ctx context.Context, userID int64, start, end time.Time) (*reporting.Result, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Entity: "User"}
	}

	q := models.TaskQuery{MemberID: &userID, CreatedFrom: &start, CreatedTo: &end}
	tasks, subtasks, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	records := reporting.Merge(tasks, subtasks, nil)
	res := reporting.Aggregate(records, reporting.CompletionStatuses, reporting.Options{})
	res.Metadata = reporting.Metadata{
		Type:        reporting.TypeUser,
		UserID:      user.ID,
		Username:    user.Username,
		StartDate:   &start,
		EndDate:     &end,
		GeneratedAt: s.now(),
	}

	s.log.Info().
		Int64("user_id", userID).
		Int("total", res.Aggregates.Total).
		Msg("[report][user] generated")
	return &res, nil
}

// TeamSummary reports who worked on a project during a week or calendar
// month and how many tasks each contributor touched. Blocked work is left
// out entirely.
func (s *ReportService) TeamSummary(ctx context.Context, projectID int64, timeframe string, start time.Time) (*reporting.TeamSummary, error) {
	tf, err := reporting.ParseTimeframe(timeframe)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	if start.IsZero() {
		return nil, &ValidationError{Msg: "start date is required"}
	}
	project, err := s.requireProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	from, to := tf.Range(start)
	q := models.TaskQuery{
		ProjectID:       &projectID,
		CreatedFrom:     &from,
		CreatedTo:       &to,
		ExcludeStatuses: []models.TaskStatus{models.StatusBlocked},
	}
	tasks, subtasks, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	ts := reporting.BuildTeamSummary(reporting.Merge(tasks, subtasks, project.Ref()))
	ts.Metadata = reporting.Metadata{
		Type:         reporting.TypeTeam,
		ProjectID:    project.ID,
		ProjectName:  project.Name,
		ProjectOwner: ownerName(project.Owner),
		Timeframe:    string(tf),
		StartDate:    &from,
		EndDate:      &to,
		GeneratedAt:  s.now(),
	}

	s.log.Info().
		Int64("project_id", projectID).
		Str("timeframe", string(tf)).
		Int("members", ts.Summary.TeamSize).
		Msg("[report][team] generated")
	return &ts, nil
}

// LoggedTimeByProject sums logged minutes over every non-archived task and
// subtask of the project, regardless of status or date.
func (s *ReportService) LoggedTimeByProject(ctx context.Context, projectID int64) (*reporting.Result, error) {
	project, err := s.requireProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	q := models.TaskQuery{ProjectID: &projectID, ExcludeArchived: true}
	tasks, subtasks, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	records := reporting.DropArchived(reporting.Merge(tasks, subtasks, project.Ref()))
	res := reporting.Aggregate(records, reporting.CompletionStatuses, reporting.Options{LoggedTime: true})
	res.Metadata = reporting.Metadata{
		Type:         reporting.TypeLoggedTimeProject,
		ProjectID:    project.ID,
		ProjectName:  project.Name,
		ProjectOwner: ownerName(project.Owner),
		GeneratedAt:  s.now(),
	}

	s.log.Info().
		Int64("project_id", projectID).
		Int("minutes", res.Aggregates.TotalLoggedMinutes).
		Msg("[report][logged-time][project] generated")
	return &res, nil
}

// LoggedTimeByDepartment sums logged minutes over every non-archived task
// and subtask, across all projects, owned by or assigned to someone in the
// department.
func (s *ReportService) LoggedTimeByDepartment(ctx context.Context, department string) (*reporting.Result, error) {
	department = strings.TrimSpace(department)
	if _, ok := s.departments[department]; !ok {
		return nil, &ValidationError{Msg: "Invalid department: " + department}
	}

	q := models.TaskQuery{Department: &department, ExcludeArchived: true}
	tasks, subtasks, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	records := reporting.Merge(tasks, subtasks, nil)
	records = reporting.DropArchived(reporting.FilterDepartment(records, department))
	res := reporting.Aggregate(records, reporting.CompletionStatuses, reporting.Options{LoggedTime: true})
	res.Metadata = reporting.Metadata{
		Type:        reporting.TypeLoggedTimeDepartment,
		Department:  department,
		GeneratedAt: s.now(),
	}

	s.log.Info().
		Str("department", department).
		Int("minutes", res.Aggregates.TotalLoggedMinutes).
		Msg("[report][logged-time][department] generated")
	return &res, nil
}

// fetch runs the task and subtask queries concurrently. The first error is
// returned as is.
func (s *ReportService) fetch(ctx context.Context, q models.TaskQuery) ([]models.Task, []models.Subtask, error) {
	var (
		tasks    []models.Task
		subtasks []models.Subtask
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.FindTasks(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		subtasks, err = s.subtasks.FindSubtasks(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tasks, subtasks, nil
}

func (s *ReportService) requireProject(ctx context.Context, id int64) (*models.Project, error) {
	project, err := s.projects.FindProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &NotFoundError{Entity: "Project"}
	}
	return project, nil
}

func checkRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return &ValidationError{Msg: "start and end dates are required"}
	}
	if end.Before(start) {
		return &ValidationError{Msg: "end date is before start date"}
	}
	return nil
}

func ownerName(u *models.UserRef) string {
	if u == nil {
		return ""
	}
	return u.Username
}
