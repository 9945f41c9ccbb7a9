// Package chrome drives the portal with a real Chrome through chromedp.
package chrome

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/example/visa-watch/internal/domain/portal"
	"github.com/example/visa-watch/internal/infrastructure/config"
)

const (
	defaultWidth  = 1366
	defaultHeight = 768
)

// Browser launches a new Chrome process for every Open.
type Browser struct {
	Headless bool
	KeyDelay time.Duration
	Width    int
	Height   int
	// ExecPath overrides chromedp's Chrome lookup when set.
	ExecPath string
}

func New(cfg config.Config) *Browser {
	return &Browser{
		Headless: cfg.RunInBackground,
		KeyDelay: cfg.KeyDelay,
		Width:    defaultWidth,
		Height:   defaultHeight,
	}
}

func (b *Browser) Name() string { return "chrome" }

func (b *Browser) size() (int, int) {
	w, h := b.Width, b.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (b *Browser) allocatorOptions() []chromedp.ExecAllocatorOption {
	w, h := b.size()
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.Headless),
		chromedp.Flag("disable-gpu", b.Headless),
		chromedp.WindowSize(w, h),
	)
	if b.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.ExecPath))
	}
	return opts
}

// Open starts Chrome and a single tab. The returned Page owns both; closing it
// shuts the process down.
func (b *Browser) Open(ctx context.Context) (portal.Page, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), b.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// first Run on the tab context itself, so no derived deadline can kill
	// the browser later
	w, h := b.size()
	stop := context.AfterFunc(ctx, tabCancel)
	err := chromedp.Run(tabCtx, chromedp.EmulateViewport(int64(w), int64(h)))
	stop()
	if err != nil {
		tabCancel()
		allocCancel()
		return nil, err
	}

	return &Page{
		tab:         tabCtx,
		cancelTab:   tabCancel,
		cancelAlloc: allocCancel,
		keyDelay:    b.KeyDelay,
	}, nil
}
