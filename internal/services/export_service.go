package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"taskflow/internal/excel"
	"taskflow/internal/logging"
	"taskflow/internal/metrics"
	"taskflow/internal/pdf"
	"taskflow/internal/reporting"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatXLSX, FormatPDF:
		return f, nil
	}
	return "", &ValidationError{Msg: "invalid format: " + s}
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/json"
}

// ReportRequest names one report and its output format. Only the fields
// relevant to Kind are read.
type ReportRequest struct {
	Kind       reporting.ReportType
	ProjectID  int64
	UserID     int64
	Department string
	Timeframe  string
	Start      time.Time
	End        time.Time
	Format     Format
}

// Subject is the identifier the report is about: a project ID, user ID or
// department name.
func (r ReportRequest) Subject() string {
	switch r.Kind {
	case reporting.TypeUser:
		return strconv.FormatInt(r.UserID, 10)
	case reporting.TypeLoggedTimeDepartment:
		return strings.TrimSpace(r.Department)
	}
	return strconv.FormatInt(r.ProjectID, 10)
}

func (r ReportRequest) CacheKey() string {
	parts := []string{string(r.Kind), r.Subject(), string(r.Format)}
	if !r.Start.IsZero() {
		parts = append(parts, r.Start.UTC().Format(time.RFC3339))
	}
	if !r.End.IsZero() {
		parts = append(parts, r.End.UTC().Format(time.RFC3339))
	}
	if r.Timeframe != "" {
		parts = append(parts, r.Timeframe)
	}
	return strings.Join(parts, ":")
}

// Filename is the download name, e.g. project_report_10.xlsx.
func (r ReportRequest) Filename() string {
	subject := strings.ReplaceAll(r.Subject(), " ", "_")
	return fmt.Sprintf("%s_report_%s.%s", r.Kind, subject, r.Format)
}

// Export is a generated report. Data holds the structured result; Body is
// nil for JSON.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
	Data        any
	Cached      bool
}

// ExportStore is the rendered-file cache. Implementations report a miss as
// (nil, false, nil).
type ExportStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte) error
}

type PDFRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// ExportService builds a report and renders it in the requested format.
type ExportService struct {
	reports *ReportService
	pdf     PDFRenderer
	cache   ExportStore
	log     zerolog.Logger
}

// NewExportService wires the renderers. cache may be nil.
func NewExportService(reports *ReportService, renderer PDFRenderer, cache ExportStore) *ExportService {
	return &ExportService{
		reports: reports,
		pdf:     renderer,
		cache:   cache,
		log:     logging.Component("export"),
	}
}

// Generate builds the report from current data on every call. Rendered
// xlsx and pdf bodies are cached under the request key plus a digest of the
// built result, so a change in the data produces a new entry.
func (s *ExportService) Generate(ctx context.Context, req ReportRequest) (*Export, error) {
	if req.Format == "" {
		req.Format = FormatJSON
	}
	out := &Export{Filename: req.Filename(), ContentType: req.Format.ContentType()}

	started := time.Now()
	data, err := s.build(ctx, req)
	if err != nil {
		s.fail(req, err)
		return nil, err
	}
	out.Data = data
	if req.Format == FormatJSON {
		metrics.RecordReportGenerated(string(req.Kind), string(req.Format), time.Since(started))
		return out, nil
	}

	var key string
	if s.cache != nil {
		if key, err = renderKey(req, data); err != nil {
			s.log.Warn().Err(err).Str("kind", string(req.Kind)).Msg("[export][cache] digest failed")
			key = ""
		}
	}
	if key != "" {
		body, hit, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("[export][cache] get failed")
		}
		metrics.RecordCacheLookup(hit)
		if hit {
			out.Body, out.Cached = body, true
			return out, nil
		}
	}

	body, err := s.render(ctx, req.Format, data)
	if err != nil {
		s.fail(req, err)
		return nil, err
	}
	metrics.RecordReportGenerated(string(req.Kind), string(req.Format), time.Since(started))
	out.Body = body

	if key != "" {
		if err := s.cache.Set(ctx, key, body); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("[export][cache] set failed")
		}
	}
	return out, nil
}

func (s *ExportService) fail(req ReportRequest, err error) {
	metrics.RecordReportFailed(string(req.Kind))
	s.log.Error().Err(err).
		Str("kind", string(req.Kind)).
		Str("subject", req.Subject()).
		Msg("[export][generate] failed")
}

// renderKey extends the request key with a digest of the built report.
// GeneratedAt is left out so identical data maps to the same entry.
func renderKey(req ReportRequest, data any) (string, error) {
	switch d := data.(type) {
	case *reporting.TeamSummary:
		c := *d
		c.Metadata.GeneratedAt = time.Time{}
		data = c
	case *reporting.Result:
		c := *d
		c.Metadata.GeneratedAt = time.Time{}
		data = c
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return req.CacheKey() + ":" + hex.EncodeToString(sum[:12]), nil
}

func (s *ExportService) render(ctx context.Context, format Format, data any) ([]byte, error) {
	var (
		doc string
		err error
	)
	switch d := data.(type) {
	case *reporting.TeamSummary:
		if format == FormatXLSX {
			return excel.RenderTeamSummary(d)
		}
		doc, err = pdf.BuildTeamSummaryHTML(d)
	case *reporting.Result:
		if format == FormatXLSX {
			return excel.Render(d)
		}
		doc, err = pdf.BuildHTML(d)
	default:
		return nil, fmt.Errorf("render: unexpected report %T", data)
	}
	if err != nil {
		return nil, err
	}
	return s.pdf.Render(ctx, doc)
}

func (s *ExportService) build(ctx context.Context, req ReportRequest) (any, error) {
	switch req.Kind {
	case reporting.TypeProject:
		return s.reports.ProjectTaskCompletion(ctx, req.ProjectID, req.Start, req.End)
	case reporting.TypeUser:
		return s.reports.UserTaskCompletion(ctx, req.UserID, req.Start, req.End)
	case reporting.TypeTeam:
		return s.reports.TeamSummary(ctx, req.ProjectID, req.Timeframe, req.Start)
	case reporting.TypeLoggedTimeProject:
		return s.reports.LoggedTimeByProject(ctx, req.ProjectID)
	case reporting.TypeLoggedTimeDepartment:
		return s.reports.LoggedTimeByDepartment(ctx, req.Department)
	}
	return nil, &ValidationError{Msg: "unknown report type: " + string(req.Kind)}
}
