package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/config"
	"taskflow/internal/reporting"
	"taskflow/internal/services"
)

type fakeGenerator struct {
	got []services.ReportRequest
	err error
}

func (g *fakeGenerator) Generate(_ context.Context, req services.ReportRequest) (*services.Export, error) {
	g.got = append(g.got, req)
	if g.err != nil {
		return nil, g.err
	}
	return &services.Export{
		Filename:    req.Filename(),
		ContentType: req.Format.ContentType(),
		Body:        []byte("file"),
		Data:        map[string]int{"total": 3},
	}, nil
}

type fakeMailer struct {
	to      []string
	subject string
	att     services.Attachment
	err     error
}

func (m *fakeMailer) SendReport(_ context.Context, to []string, subject, _ string, att services.Attachment) error {
	m.to, m.subject, m.att = to, subject, att
	return m.err
}

type fakeChat struct {
	chatID int64
	calls  int
}

func (c *fakeChat) SendReport(_ context.Context, chatID int64, _ string, _ services.Attachment) error {
	c.chatID = chatID
	c.calls++
	return nil
}

func newTestScheduler(gen Generator, mailer services.Mailer, chat ChatSender) *Scheduler {
	s := New(gen, mailer, chat)
	s.now = func() time.Time { return time.Date(2024, time.March, 18, 8, 0, 0, 0, time.UTC) }
	return s
}

func TestRun_TeamWeekly(t *testing.T) {
	gen, mailer, chat := &fakeGenerator{}, &fakeMailer{}, &fakeChat{}
	s := newTestScheduler(gen, mailer, chat)

	err := s.Run(context.Background(), config.ScheduleConfig{
		Name: "weekly", Cron: "0 8 * * MON", Kind: "team", ProjectID: 10, Format: "pdf",
		Recipients: []string{"pm@example.com"}, ChatID: 42,
	})
	require.NoError(t, err)

	require.Len(t, gen.got, 1)
	req := gen.got[0]
	assert.Equal(t, reporting.TypeTeam, req.Kind)
	assert.Equal(t, "week", req.Timeframe)
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), req.Start)

	assert.Equal(t, []string{"pm@example.com"}, mailer.to)
	assert.Equal(t, "Team Summary Report (weekly)", mailer.subject)
	assert.Equal(t, "team_report_10.pdf", mailer.att.Filename)
	assert.Equal(t, int64(42), chat.chatID)
}

func TestRun_MonthlyProjectRange(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestScheduler(gen, &fakeMailer{}, nil)

	require.NoError(t, s.Run(context.Background(), config.ScheduleConfig{
		Name: "monthly", Kind: "project", ProjectID: 10, Timeframe: "month", Format: "xlsx",
		Recipients: []string{"a@example.com"},
	}))
	req := gen.got[0]
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), req.Start)
	assert.Equal(t, time.Date(2024, time.February, 29, 23, 59, 59, 999000000, time.UTC), req.End)
}

func TestRun_JSONAttachment(t *testing.T) {
	mailer := &fakeMailer{}
	s := newTestScheduler(&fakeGenerator{}, mailer, nil)

	require.NoError(t, s.Run(context.Background(), config.ScheduleConfig{
		Name: "dept", Kind: "logged-time-department", Department: "Engineering", Format: "json",
		Recipients: []string{"a@example.com"},
	}))
	assert.JSONEq(t, `{"total":3}`, string(mailer.att.Body))
}

func TestRun_Failures(t *testing.T) {
	boom := errors.New("smtp down")
	s := newTestScheduler(&fakeGenerator{}, &fakeMailer{err: boom}, nil)
	err := s.Run(context.Background(), config.ScheduleConfig{
		Name: "x", Kind: "logged-time-project", ProjectID: 1, Format: "xlsx", Recipients: []string{"a@example.com"},
	})
	assert.ErrorIs(t, err, boom)

	genErr := errors.New("Project not found")
	s = newTestScheduler(&fakeGenerator{err: genErr}, &fakeMailer{}, nil)
	err = s.Run(context.Background(), config.ScheduleConfig{
		Name: "x", Kind: "logged-time-project", ProjectID: 1, Format: "xlsx", Recipients: []string{"a@example.com"},
	})
	assert.ErrorIs(t, err, genErr)

	s = newTestScheduler(&fakeGenerator{}, nil, nil)
	err = s.Run(context.Background(), config.ScheduleConfig{Name: "x", Kind: "logged-time-project", Format: "xlsx"})
	assert.ErrorContains(t, err, "no delivery channel")
}

func TestAdd_Validates(t *testing.T) {
	s := newTestScheduler(&fakeGenerator{}, nil, nil)

	assert.NoError(t, s.Add(config.ScheduleConfig{Name: "ok", Cron: "0 8 * * MON", Kind: "team", Format: "pdf"}))
	assert.Error(t, s.Add(config.ScheduleConfig{Name: "bad-kind", Cron: "0 8 * * *", Kind: "weekly", Format: "pdf"}))
	assert.Error(t, s.Add(config.ScheduleConfig{Name: "bad-cron", Cron: "every day", Kind: "team", Format: "pdf"}))
	assert.Error(t, s.Add(config.ScheduleConfig{Name: "bad-format", Cron: "0 8 * * *", Kind: "team", Format: "docx"}))
	assert.Len(t, s.cron.Entries(), 1)
}
