package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/models"
)

type fakeStore struct {
	tasks    []models.Task
	subtasks []models.Subtask
	projects map[int64]*models.Project
	users    map[int64]*models.User

	taskErr    error
	subtaskErr error
	lastQuery  models.TaskQuery
}

func (f *fakeStore) FindTasks(_ context.Context, q models.TaskQuery) ([]models.Task, error) {
	f.lastQuery = q
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	var out []models.Task
	for _, t := range f.tasks {
		if matches(q, t.Project, t.Owner, t.Assignee, t.CreatedAt, t.Status, t.Archived) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) FindSubtasks(_ context.Context, q models.TaskQuery) ([]models.Subtask, error) {
	if f.subtaskErr != nil {
		return nil, f.subtaskErr
	}
	var out []models.Subtask
	for _, s := range f.subtasks {
		if matches(q, s.ProjectID, s.OwnerID, s.AssigneeID, s.CreatedAt, s.Status, s.Archived) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) FindProjectByID(_ context.Context, id int64) (*models.Project, error) {
	return f.projects[id], nil
}

func (f *fakeStore) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	return f.users[id], nil
}

func matches(q models.TaskQuery, p *models.ProjectRef, owner *models.UserRef, assignees []*models.UserRef,
	created time.Time, status models.TaskStatus, archived bool) bool {
	if q.ProjectID != nil && (p == nil || p.ID != *q.ProjectID) {
		return false
	}
	if q.MemberID != nil {
		member := owner != nil && owner.ID == *q.MemberID
		for _, a := range assignees {
			if a != nil && a.ID == *q.MemberID {
				member = true
			}
		}
		if !member {
			return false
		}
	}
	if q.CreatedFrom != nil && created.Before(*q.CreatedFrom) {
		return false
	}
	if q.CreatedTo != nil && created.After(*q.CreatedTo) {
		return false
	}
	for _, s := range q.ExcludeStatuses {
		if s == status {
			return false
		}
	}
	return !(q.ExcludeArchived && archived)
}

var (
	alice  = &models.UserRef{ID: 1, Username: "alice", Department: "Engineering", Roles: []string{"staff"}}
	bob    = &models.UserRef{ID: 2, Username: "bob", Department: "Marketing", Roles: []string{"manager"}}
	apollo = &models.ProjectRef{ID: 10, Name: "Apollo", Owner: bob}
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 12, 0, 0, 0, time.UTC)
}

func newFixture() *fakeStore {
	return &fakeStore{
		projects: map[int64]*models.Project{
			10: {ID: 10, Name: "Apollo", Owner: bob},
		},
		users: map[int64]*models.User{
			1: {ID: 1, Username: "alice", Department: "Engineering"},
			2: {ID: 2, Username: "bob", Department: "Marketing"},
		},
	}
}

func newReportService(f *fakeStore) *ReportService {
	return NewReportService(f, f, f, f, nil)
}

func TestProjectTaskCompletion_GroupsByStatus(t *testing.T) {
	f := newFixture()
	f.tasks = []models.Task{
		{ID: 1, Title: "a", Status: models.StatusToDo, Project: apollo, Owner: alice, CreatedAt: day(2)},
		{ID: 2, Title: "b", Status: models.StatusInProgress, Project: apollo, Owner: alice, CreatedAt: day(3)},
		{ID: 3, Title: "c", Status: models.StatusBlocked, Project: apollo, Owner: bob, CreatedAt: day(4)},
		{ID: 4, Title: "d", Status: models.StatusCompleted, Project: apollo, Owner: bob, CreatedAt: day(5)},
		{ID: 5, Title: "e", Status: models.StatusCompleted, Project: apollo, Owner: bob, CreatedAt: day(6)},
		{ID: 6, Title: "late", Status: models.StatusCompleted, Project: apollo, CreatedAt: day(30)},
	}
	svc := newReportService(f)

	res, err := svc.ProjectTaskCompletion(context.Background(), 10, day(1), day(10))
	require.NoError(t, err)

	assert.Equal(t, 5, res.Aggregates.Total)
	assert.Equal(t, 2, res.Aggregates.Counts[models.StatusCompleted])
	assert.Equal(t, 1, res.Aggregates.Counts[models.StatusBlocked])
	assert.Len(t, res.Data[models.StatusCompleted], 2)
	assert.Equal(t, "Apollo", res.Metadata.ProjectName)
	assert.Equal(t, "bob", res.Metadata.ProjectOwner)
	assert.False(t, res.HasLoggedTime())
}

func TestProjectTaskCompletion_SubtasksFollowTasks(t *testing.T) {
	f := newFixture()
	f.tasks = []models.Task{
		{ID: 1, Title: "task", Status: models.StatusToDo, Project: apollo, CreatedAt: day(2)},
	}
	f.subtasks = []models.Subtask{
		{ID: 7, Title: "sub", Status: models.StatusToDo, ProjectID: apollo, CreatedAt: day(1)},
	}
	svc := newReportService(f)

	res, err := svc.ProjectTaskCompletion(context.Background(), 10, day(1), day(10))
	require.NoError(t, err)

	rows := res.Data[models.StatusToDo]
	require.Len(t, rows, 2)
	assert.Equal(t, "task", rows[0].Title)
	assert.Equal(t, "sub", rows[1].Title)
	assert.Equal(t, "Apollo", rows[1].Project)
}

func TestProjectTaskCompletion_Errors(t *testing.T) {
	svc := newReportService(newFixture())

	_, err := svc.ProjectTaskCompletion(context.Background(), 99, day(1), day(2))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "Project not found", err.Error())

	_, err = svc.ProjectTaskCompletion(context.Background(), 10, day(5), day(1))
	assert.True(t, IsValidation(err))
}

func TestUserTaskCompletion_OwnedOrAssigned(t *testing.T) {
	f := newFixture()
	f.tasks = []models.Task{
		{ID: 1, Status: models.StatusToDo, Owner: alice, CreatedAt: day(2)},
		{ID: 2, Status: models.StatusCompleted, Owner: bob, Assignee: []*models.UserRef{alice}, CreatedAt: day(3)},
		{ID: 3, Status: models.StatusCompleted, Owner: bob, CreatedAt: day(3)},
	}
	f.subtasks = []models.Subtask{
		{ID: 4, Status: models.StatusInProgress, AssigneeID: []*models.UserRef{alice}, CreatedAt: day(4)},
	}
	svc := newReportService(f)

	res, err := svc.UserTaskCompletion(context.Background(), 1, day(1), day(10))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Aggregates.Total)
	assert.Equal(t, "alice", res.Metadata.Username)

	_, err = svc.UserTaskCompletion(context.Background(), 42, day(1), day(10))
	require.Error(t, err)
	assert.Equal(t, "User not found", err.Error())
}

func TestTeamSummary_ExcludesBlocked(t *testing.T) {
	f := newFixture()
	f.tasks = []models.Task{
		{ID: 1, Status: models.StatusCompleted, Project: apollo, Owner: alice, Assignee: []*models.UserRef{bob}, CreatedAt: day(4)},
		{ID: 2, Status: models.StatusBlocked, Project: apollo, Owner: alice, CreatedAt: day(4)},
		{ID: 3, Status: models.StatusToDo, Project: apollo, Owner: alice, CreatedAt: day(5)},
	}
	svc := newReportService(f)

	ts, err := svc.TeamSummary(context.Background(), 10, "week", day(4))
	require.NoError(t, err)

	assert.Equal(t, []models.TaskStatus{models.StatusBlocked}, f.lastQuery.ExcludeStatuses)
	assert.NotContains(t, ts.Statuses, models.StatusBlocked)
	assert.Equal(t, 2, ts.Summary.TotalTasks)
	assert.Equal(t, 2, ts.Summary.TeamSize)
	assert.Equal(t, 50, ts.Summary.CompletionRate)
	assert.Equal(t, "week", ts.Metadata.Timeframe)
	assert.Equal(t, time.Date(2024, time.March, 10, 23, 59, 59, 999000000, time.UTC), *ts.Metadata.EndDate)

	_, err = svc.TeamSummary(context.Background(), 10, "year", day(4))
	assert.True(t, IsValidation(err))
}

func TestLoggedTimeByProject_SkipsArchived(t *testing.T) {
	f := newFixture()
	f.tasks = []models.Task{
		{ID: 1, Status: models.StatusToDo, Project: apollo, TimeTaken: 90, CreatedAt: day(1)},
		{ID: 2, Status: models.StatusCompleted, Project: apollo, TimeTaken: 30, CreatedAt: day(2)},
		{ID: 3, Status: models.StatusCompleted, Project: apollo, TimeTaken: 600, Archived: true, CreatedAt: day(2)},
	}
	f.subtasks = []models.Subtask{
		{ID: 4, Status: models.StatusBlocked, ProjectID: apollo, TimeTaken: 60, CreatedAt: day(3)},
	}
	svc := newReportService(f)

	res, err := svc.LoggedTimeByProject(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, f.lastQuery.ExcludeArchived)
	assert.Equal(t, 3, res.Aggregates.Total)
	assert.Equal(t, 180, res.Aggregates.TotalLoggedMinutes)
	assert.Equal(t, "3 hours", res.Aggregates.TotalLoggedTime)
	assert.Equal(t, "1 hour 30 min", res.Data[models.StatusToDo][0].LoggedTime)
}

func TestLoggedTimeByDepartment(t *testing.T) {
	f := newFixture()
	f.tasks = []models.Task{
		{ID: 1, Status: models.StatusToDo, Owner: alice, TimeTaken: 45, CreatedAt: day(1)},
		{ID: 2, Status: models.StatusToDo, Owner: bob, Assignee: []*models.UserRef{alice}, TimeTaken: 15, CreatedAt: day(1)},
		{ID: 3, Status: models.StatusToDo, Owner: bob, TimeTaken: 500, CreatedAt: day(1)},
	}
	svc := newReportService(f)

	res, err := svc.LoggedTimeByDepartment(context.Background(), " Engineering ")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Aggregates.Total)
	assert.Equal(t, "1 hour", res.Aggregates.TotalLoggedTime)
	assert.Equal(t, "Engineering", res.Metadata.Department)
	require.NotNil(t, f.lastQuery.Department)
	assert.Equal(t, "Engineering", *f.lastQuery.Department)
	assert.True(t, f.lastQuery.ExcludeArchived)

	_, err = svc.LoggedTimeByDepartment(context.Background(), "Astrology")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Invalid department: Astrology", err.Error())
}

func TestReports_Idempotent(t *testing.T) {
	f := newFixture()
	f.tasks = []models.Task{
		{ID: 1, Status: models.StatusCompleted, Project: apollo, Owner: alice, CreatedAt: day(2)},
	}
	fixed := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	svc := newReportService(f).WithClock(func() time.Time { return fixed })

	first, err := svc.ProjectTaskCompletion(context.Background(), 10, day(1), day(10))
	require.NoError(t, err)
	second, err := svc.ProjectTaskCompletion(context.Background(), 10, day(1), day(10))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, fixed, first.Metadata.GeneratedAt)
}

func TestReports_PropagateStoreErrors(t *testing.T) {
	f := newFixture()
	boom := errors.New("connection refused")
	f.subtaskErr = boom
	svc := newReportService(f)

	_, err := svc.ProjectTaskCompletion(context.Background(), 10, day(1), day(10))
	assert.ErrorIs(t, err, boom)

	_, err = svc.LoggedTimeByDepartment(context.Background(), "Engineering")
	assert.ErrorIs(t, err, boom)
}

func TestDepartments_Configurable(t *testing.T) {
	svc := NewReportService(nil, nil, nil, nil, []string{"Ops", "Admin"})
	assert.Equal(t, []string{"Admin", "Ops"}, svc.Departments())

	_, err := svc.LoggedTimeByDepartment(context.Background(), "Engineering")
	assert.True(t, IsValidation(err))
}
