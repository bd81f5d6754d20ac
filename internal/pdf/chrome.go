package pdf

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const mmPerInch = 25.4

// ChromeLauncher drives a headless Chrome through the DevTools protocol.
// ExecPath may be empty to let chromedp locate the binary.
type ChromeLauncher struct {
	ExecPath string
}

func (l ChromeLauncher) Launch(ctx context.Context) (Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if l.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	// An empty Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, err
	}
	return &chromeBrowser{
		ctx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}, nil
}

type chromeBrowser struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	pages []context.CancelFunc
}

func (b *chromeBrowser) NewPage(context.Context) (Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.ctx)
	b.mu.Lock()
	b.pages = append(b.pages, cancel)
	b.mu.Unlock()
	return &chromePage{ctx: tabCtx}, nil
}

func (b *chromeBrowser) Close() error {
	b.mu.Lock()
	for _, cancel := range b.pages {
		cancel()
	}
	b.pages = nil
	b.mu.Unlock()

	err := chromedp.Cancel(b.ctx)
	b.cancel()
	return err
}

type chromePage struct {
	ctx context.Context
}

func (p *chromePage) SetContent(ctx context.Context, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
	)
}

func (p *chromePage) PDF(ctx context.Context, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf []byte
	err := chromedp.Run(p.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = page.PrintToPDF().
			WithPrintBackground(opts.PrintBackground).
			WithPaperWidth(opts.PaperWidth / mmPerInch).
			WithPaperHeight(opts.PaperHeight / mmPerInch).
			WithMarginTop(opts.MarginTop / mmPerInch).
			WithMarginBottom(opts.MarginBottom / mmPerInch).
			WithMarginLeft(opts.MarginLeft / mmPerInch).
			WithMarginRight(opts.MarginRight / mmPerInch).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}
