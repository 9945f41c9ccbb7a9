// Package testutil holds in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/visa-watch/internal/domain/portal"
	"github.com/example/visa-watch/internal/internaltypes"
)

const (
	availableDaySelector = "a.ui-state-default"
	nextMonthSelector    = "a.ui-datepicker-next"
)

// Calendar describes what the fake date picker shows: EmptyPages months with
// no selectable day, then Cell.
type Calendar struct {
	EmptyPages int
	Cell       portal.CalendarCell
}

// FakePage records every interaction. Fail maps a selector (or link text) to
// the error any interaction with it returns.
type FakePage struct {
	Calendar Calendar
	Fail     map[string]error

	mu         sync.Mutex
	Visited    []string
	Typed      map[string]string
	Clicks     []string
	Links      []string
	NextClicks int
	Closed     bool
}

func (p *FakePage) fail(key string) error {
	if err, ok := p.Fail[key]; ok {
		return err
	}
	return nil
}

func (p *FakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Visited = append(p.Visited, url)
	return p.fail(url)
}

func (p *FakePage) Type(ctx context.Context, selector, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail(selector); err != nil {
		return err
	}
	if p.Typed == nil {
		p.Typed = map[string]string{}
	}
	p.Typed[selector] += text
	return nil
}

func (p *FakePage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.fail(selector); err != nil {
		return err
	}
	if selector == availableDaySelector && p.NextClicks < p.Calendar.EmptyPages {
		return fmt.Errorf("waiting for %q: %w", selector, context.DeadlineExceeded)
	}
	return nil
}

func (p *FakePage) Click(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail(selector); err != nil {
		return err
	}
	p.Clicks = append(p.Clicks, selector)
	if selector == nextMonthSelector {
		p.NextClicks++
	}
	return nil
}

func (p *FakePage) ClickLink(ctx context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail(text); err != nil {
		return err
	}
	p.Links = append(p.Links, text)
	return nil
}

func (p *FakePage) CalendarDay(ctx context.Context, selector string) (portal.CalendarCell, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.NextClicks < p.Calendar.EmptyPages {
		return portal.CalendarCell{}, fmt.Errorf("%s: %w", selector, internaltypes.ErrNotFound)
	}
	return p.Calendar.Cell, nil
}

func (p *FakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Closed {
		return errors.New("page closed twice")
	}
	p.Closed = true
	return nil
}

func (p *FakePage) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Closed
}

// FakeBrowser hands out pages from NewPage, one per Open call, and tracks how
// many are open at once.
type FakeBrowser struct {
	NewPage func(n int) *FakePage
	OpenErr error

	mu      sync.Mutex
	Pages   []*FakePage
	MaxOpen int
}

func (b *FakeBrowser) Name() string { return "fake" }

func (b *FakeBrowser) Open(ctx context.Context) (portal.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.OpenErr != nil {
		return nil, b.OpenErr
	}
	open := 1
	for _, p := range b.Pages {
		if !p.IsClosed() {
			open++
		}
	}
	if open > b.MaxOpen {
		b.MaxOpen = open
	}
	var p *FakePage
	if b.NewPage != nil {
		p = b.NewPage(len(b.Pages))
	}
	if p == nil {
		p = &FakePage{}
	}
	b.Pages = append(b.Pages, p)
	return p, nil
}

func (b *FakeBrowser) Opened() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Pages)
}

func (b *FakeBrowser) AllClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.Pages {
		if !p.IsClosed() {
			return false
		}
	}
	return true
}
