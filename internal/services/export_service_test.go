package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/models"
	"taskflow/internal/reporting"
)

type memCache struct {
	data map[string][]byte
	sets int
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := c.data[key]
	return b, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, body []byte) error {
	c.data[key] = body
	c.sets++
	return nil
}

type stubPDF struct {
	calls int
	html  string
	err   error
}

func (p *stubPDF) Render(_ context.Context, html string) ([]byte, error) {
	p.calls++
	p.html = html
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.4"), nil
}

func newExportFixture() (*ExportService, *stubPDF, *memCache) {
	svc, renderer, cache, _ := newExportFixtureWithStore()
	return svc, renderer, cache
}

func newExportFixtureWithStore() (*ExportService, *stubPDF, *memCache, *fakeStore) {
	f := newFixture()
	f.tasks = []models.Task{
		{ID: 1, Title: "a", Status: models.StatusCompleted, Project: apollo, Owner: alice, TimeTaken: 60, CreatedAt: day(2)},
	}
	renderer := &stubPDF{}
	cache := &memCache{data: map[string][]byte{}}
	return NewExportService(newReportService(f), renderer, cache), renderer, cache, f
}

func TestReportRequest_Naming(t *testing.T) {
	req := ReportRequest{Kind: reporting.TypeLoggedTimeDepartment, Department: "Human Resources", Format: FormatXLSX}
	assert.Equal(t, "logged-time-department_report_Human_Resources.xlsx", req.Filename())
	assert.Equal(t, "logged-time-department:Human Resources:xlsx", req.CacheKey())

	req.Department = "  Human Resources "
	assert.Equal(t, "logged-time-department_report_Human_Resources.xlsx", req.Filename())
	assert.Equal(t, "logged-time-department:Human Resources:xlsx", req.CacheKey())

	req = ReportRequest{Kind: reporting.TypeProject, ProjectID: 10, Format: FormatPDF, Start: day(1), End: day(2)}
	assert.Equal(t, "project_report_10.pdf", req.Filename())
	assert.Equal(t, "project:10:pdf:2024-03-01T12:00:00Z:2024-03-02T12:00:00Z", req.CacheKey())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("docx")
	assert.True(t, IsValidation(err))
}

func TestGenerate_JSONIsNeverCached(t *testing.T) {
	svc, _, cache := newExportFixture()
	req := ReportRequest{Kind: reporting.TypeProject, ProjectID: 10, Start: day(1), End: day(10)}

	out, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, out.Body)
	assert.Equal(t, "application/json", out.ContentType)
	res, ok := out.Data.(*reporting.Result)
	require.True(t, ok)
	assert.Equal(t, 1, res.Aggregates.Total)
	assert.Zero(t, cache.sets)
}

func TestGenerate_PDFReusesRenderForSameData(t *testing.T) {
	svc, renderer, cache := newExportFixture()
	req := ReportRequest{Kind: reporting.TypeLoggedTimeProject, ProjectID: 10, Format: FormatPDF}

	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), first.Body)
	assert.False(t, first.Cached)
	assert.Contains(t, renderer.html, "Project Logged Time Report")
	assert.Equal(t, 1, cache.sets)

	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, "logged-time-project_report_10.pdf", second.Filename)
	res, ok := second.Data.(*reporting.Result)
	require.True(t, ok)
	assert.Equal(t, 60, res.Aggregates.TotalLoggedMinutes)
}

func TestGenerate_RebuildsAfterDataChange(t *testing.T) {
	svc, renderer, cache, store := newExportFixtureWithStore()
	req := ReportRequest{Kind: reporting.TypeLoggedTimeProject, ProjectID: 10, Format: FormatPDF}

	_, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, renderer.html, "1 hour")

	store.tasks[0].TimeTaken = 600
	out, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, out.Cached)
	assert.Equal(t, 2, renderer.calls)
	assert.Equal(t, 2, cache.sets)
	assert.Contains(t, renderer.html, "10 hours")

	delete(store.projects, 10)
	_, err = svc.Generate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "Project not found", err.Error())
	assert.Equal(t, 2, renderer.calls)
}

func TestGenerate_TeamXLSX(t *testing.T) {
	svc, _, _ := newExportFixture()
	out, err := svc.Generate(context.Background(), ReportRequest{
		Kind: reporting.TypeTeam, ProjectID: 10, Timeframe: "month", Start: day(15), Format: FormatXLSX,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("PK"), out.Body[:2])
	_, ok := out.Data.(*reporting.TeamSummary)
	assert.True(t, ok)
}

func TestGenerate_PropagatesErrors(t *testing.T) {
	svc, renderer, cache := newExportFixture()
	boom := errors.New("chrome crashed")
	renderer.err = boom

	_, err := svc.Generate(context.Background(), ReportRequest{Kind: reporting.TypeLoggedTimeProject, ProjectID: 10, Format: FormatPDF})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, cache.sets)

	_, err = svc.Generate(context.Background(), ReportRequest{Kind: reporting.TypeProject, ProjectID: 77, Start: day(1), End: day(2)})
	assert.Equal(t, "Project not found", err.Error())

	_, err = svc.Generate(context.Background(), ReportRequest{Kind: "weekly", Start: time.Now()})
	assert.True(t, IsValidation(err))
}
