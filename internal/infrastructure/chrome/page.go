package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/example/visa-watch/internal/domain/portal"
)

// Page is one Chrome tab. Every call runs on the tab context, bounded by the
// caller's context.
type Page struct {
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	keyDelay    time.Duration

	closeOnce sync.Once
}

// run executes actions on the tab. The call ends when ctx ends, when timeout
// (if positive) expires or when the tab goes away.
func (p *Page) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(p.tab, deadline)
	} else {
		runCtx, cancel = context.WithCancel(p.tab)
	}
	defer cancel()
	if timeout > 0 {
		var c context.CancelFunc
		runCtx, c = context.WithTimeout(runCtx, timeout)
		defer c()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, 0, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *Page) Type(ctx context.Context, selector, text string) error {
	tasks := chromedp.Tasks{chromedp.WaitVisible(selector, chromedp.ByQuery)}
	for _, r := range text {
		tasks = append(tasks, chromedp.SendKeys(selector, string(r), chromedp.ByQuery))
		if p.keyDelay > 0 {
			tasks = append(tasks, chromedp.Sleep(p.keyDelay))
		}
	}
	return lookupErr(selector, p.run(ctx, 0, tasks))
}

func (p *Page) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := p.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for %q: %w", selector, err)
	}
	return nil
}

func (p *Page) Click(ctx context.Context, selector string) error {
	return lookupErr(selector, p.run(ctx, 0, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)))
}

func (p *Page) ClickLink(ctx context.Context, text string) error {
	xp := "//a[contains(text(), " + xpathLiteral(text) + ")]"
	return lookupErr(text, p.run(ctx, 0, chromedp.Click(xp, chromedp.BySearch, chromedp.NodeVisible)))
}

type jsCell struct {
	Found bool `json:"found"`
	portal.CalendarCell
}

func (p *Page) CalendarDay(ctx context.Context, selector string) (portal.CalendarCell, error) {
	var c jsCell
	if err := p.run(ctx, 0, chromedp.Evaluate(calendarScript(selector), &c)); err != nil {
		return portal.CalendarCell{}, fmt.Errorf("read calendar day: %w", err)
	}
	if !c.Found {
		return portal.CalendarCell{}, fmt.Errorf("%q: %w", selector, portal.ErrNotFound)
	}
	return c.CalendarCell, nil
}

// Close shuts the tab and the Chrome process. Calling it again is a no-op.
func (p *Page) Close() error {
	p.closeOnce.Do(func() {
		p.cancelTab()
		p.cancelAlloc()
	})
	return nil
}

// lookupErr marks an element that never showed up before the deadline as a
// lookup miss.
func lookupErr(what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%q: %w: %w", what, portal.ErrNotFound, err)
	}
	return fmt.Errorf("%q: %w", what, err)
}

// calendarScript reads the first match for selector. The datepicker stores a
// 0-based month on the enclosing cell and the day as the anchor text.
func calendarScript(selector string) string {
	sel, _ := json.Marshal(selector)
	return `(() => {
	const a = document.querySelector(` + string(sel) + `);
	if (!a || !a.parentElement) return {found: false};
	const cell = a.parentElement;
	return {
		found: true,
		year: parseInt(cell.getAttribute("data-year"), 10),
		month: parseInt(cell.getAttribute("data-month"), 10) + 1,
		day: parseInt(a.textContent.trim(), 10),
	};
})()`
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	out := make([]string, 0, 2*len(parts))
	for i, part := range parts {
		if i > 0 {
			out = append(out, `'"'`)
		}
		if part != "" {
			out = append(out, `"`+part+`"`)
		}
	}
	return "concat(" + strings.Join(out, ", ") + ")"
}
