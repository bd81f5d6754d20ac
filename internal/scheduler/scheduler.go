// Package scheduler runs recurring report deliveries on cron expressions.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"taskflow/internal/config"
	"taskflow/internal/logging"
	"taskflow/internal/metrics"
	"taskflow/internal/reporting"
	"taskflow/internal/services"
)

type Generator interface {
	Generate(ctx context.Context, req services.ReportRequest) (*services.Export, error)
}

type ChatSender interface {
	SendReport(ctx context.Context, chatID int64, caption string, att services.Attachment) error
}

// Scheduler manages scheduled report runs. A failed run is logged and
// counted; it is not retried before its next cron tick.
type Scheduler struct {
	cron   *cron.Cron
	gen    Generator
	mailer services.Mailer
	chat   ChatSender
	now    func() time.Time
	log    zerolog.Logger
}

// New creates a scheduler. mailer and chat may be nil when that channel
// isn't configured.
func New(gen Generator, mailer services.Mailer, chat ChatSender) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		gen:    gen,
		mailer: mailer,
		chat:   chat,
		now:    time.Now,
		log:    logging.Component("scheduler"),
	}
}

// Add registers a job after checking it can produce a request.
func (s *Scheduler) Add(job config.ScheduleConfig) error {
	if _, err := s.request(job); err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name, err)
	}
	_, err := s.cron.AddFunc(job.Cron, func() {
		_ = s.Run(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name, err)
	}
	s.log.Info().Str("job", job.Name).Str("cron", job.Cron).Msg("[scheduler][add] registered")
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the cron loop and waits for running jobs or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Run generates the job's report once and delivers it to every configured
// channel.
func (s *Scheduler) Run(ctx context.Context, job config.ScheduleConfig) error {
	runID := uuid.NewString()
	log := s.log.With().Str("job", job.Name).Str("run_id", runID).Logger()

	err := s.run(ctx, job)
	if err != nil {
		metrics.RecordScheduledRun(job.Name, "failed")
		log.Error().Err(err).Msg("[scheduler][run] failed")
		return err
	}
	metrics.RecordScheduledRun(job.Name, "success")
	log.Info().Msg("[scheduler][run] delivered")
	return nil
}

func (s *Scheduler) run(ctx context.Context, job config.ScheduleConfig) error {
	req, err := s.request(job)
	if err != nil {
		return err
	}
	export, err := s.gen.Generate(ctx, req)
	if err != nil {
		return err
	}

	body := export.Body
	if req.Format == services.FormatJSON {
		if body, err = json.MarshalIndent(export.Data, "", "  "); err != nil {
			return err
		}
	}
	att := services.Attachment{Filename: export.Filename, ContentType: export.ContentType, Body: body}
	subject := fmt.Sprintf("%s (%s)", req.Kind.Title(), job.Name)

	var errs []error
	delivered := 0
	if len(job.Recipients) > 0 && s.mailer != nil {
		html := fmt.Sprintf("<p>%s is attached.</p>", subject)
		if err := s.mailer.SendReport(ctx, job.Recipients, subject, html, att); err != nil {
			errs = append(errs, err)
		} else {
			delivered++
		}
	}
	if job.ChatID != 0 && s.chat != nil {
		if err := s.chat.SendReport(ctx, job.ChatID, subject, att); err != nil {
			errs = append(errs, err)
		} else {
			delivered++
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if delivered == 0 {
		return errors.New("no delivery channel configured")
	}
	return nil
}

// request maps a job onto a report request. Dated reports cover the
// timeframe (default week) that ended before the run.
func (s *Scheduler) request(job config.ScheduleConfig) (services.ReportRequest, error) {
	format, err := services.ParseFormat(job.Format)
	if err != nil {
		return services.ReportRequest{}, err
	}
	req := services.ReportRequest{
		Kind:       reporting.ReportType(job.Kind),
		ProjectID:  job.ProjectID,
		UserID:     job.UserID,
		Department: job.Department,
		Format:     format,
	}

	tf := reporting.TimeframeWeek
	if job.Timeframe != "" {
		if tf, err = reporting.ParseTimeframe(job.Timeframe); err != nil {
			return services.ReportRequest{}, err
		}
	}
	now := s.now()
	start := now.AddDate(0, 0, -7)
	if tf == reporting.TimeframeMonth {
		start = time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
	}

	switch req.Kind {
	case reporting.TypeTeam:
		req.Timeframe = string(tf)
		req.Start = reporting.StartOfDay(start)
	case reporting.TypeProject, reporting.TypeUser:
		req.Start, req.End = tf.Range(start)
	case reporting.TypeLoggedTimeProject, reporting.TypeLoggedTimeDepartment:
	default:
		return services.ReportRequest{}, fmt.Errorf("unknown report kind %q", job.Kind)
	}
	return req, nil
}
