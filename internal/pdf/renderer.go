// Package pdf renders report HTML into A4 PDF documents through a pluggable
// browser engine.
package pdf

import (
	"context"

	"github.com/rs/zerolog"

	"taskflow/internal/logging"
)

// Options describes the printed page. Sizes are in millimetres.
type Options struct {
	PaperWidth      float64
	PaperHeight     float64
	MarginTop       float64
	MarginBottom    float64
	MarginLeft      float64
	MarginRight     float64
	PrintBackground bool
}

// A4 with 20mm vertical and 15mm horizontal margins.
var DefaultOptions = Options{
	PaperWidth:      210,
	PaperHeight:     297,
	MarginTop:       20,
	MarginBottom:    20,
	MarginLeft:      15,
	MarginRight:     15,
	PrintBackground: true,
}

// Launcher starts a browser session.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

type Page interface {
	SetContent(ctx context.Context, html string) error
	PDF(ctx context.Context, opts Options) ([]byte, error)
}

// Renderer converts HTML to PDF bytes. Every browser it launches is closed
// before Render returns, whether or not rendering succeeded.
type Renderer struct {
	launcher Launcher
	opts     Options
	log      zerolog.Logger
}

func NewRenderer(l Launcher) *Renderer {
	return &Renderer{launcher: l, opts: DefaultOptions, log: logging.Component("pdf")}
}

func (r *Renderer) Render(ctx context.Context, html string) ([]byte, error) {
	browser, err := r.launcher.Launch(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			r.log.Warn().Err(cerr).Msg("[pdf][close] browser close failed")
		}
	}()

	pg, err := browser.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	if err := pg.SetContent(ctx, html); err != nil {
		return nil, err
	}
	return pg.PDF(ctx, r.opts)
}
