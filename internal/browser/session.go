// Package browser owns the single headless Chromium page used for the
// whole export. Every method is one blocking operation bounded by the
// session timeout; callers never run two of them at once.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

type Options struct {
	ShowBrowser bool
	Bin         string
	Timeout     time.Duration
	UserAgent   string
	DebugLogger interface {
		Debugf(string, ...any)
	}
}

type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
	log      interface{ Debugf(string, ...any) }
}

// Launch starts Chromium and opens the one page every later call reuses.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	l := launcher.New().Context(ctx).Headless(!opts.ShowBrowser)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("open page: %w", err)
	}

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			_ = b.Close()
			l.Kill()
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	s := &Session{
		launcher: l,
		browser:  b,
		page:     page,
		timeout:  timeout,
		log:      opts.DebugLogger,
	}
	s.debugf("browser ready (headless=%t, timeout=%s)", !opts.ShowBrowser, timeout)

	return s, nil
}

// op scopes the page to ctx plus the per-operation timeout.
func (s *Session) op(ctx context.Context) *rod.Page {
	return s.page.Context(ctx).Timeout(s.timeout)
}

// Navigate loads url and returns once DOMContentLoaded fired.
func (s *Session) Navigate(ctx context.Context, url string) error {
	p := s.op(ctx)
	defer p.CancelTimeout()

	s.debugf("goto %s", url)
	wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	wait()

	return ctxErr(ctx, p)
}

// WaitElement blocks until selector matches an element in the DOM.
func (s *Session) WaitElement(ctx context.Context, selector string) error {
	p := s.op(ctx)
	defer p.CancelTimeout()

	if _, err := p.Element(selector); err != nil {
		return fmt.Errorf("wait for %s: %w", selector, err)
	}

	return nil
}

func (s *Session) Type(ctx context.Context, selector, text string) error {
	p := s.op(ctx)
	defer p.CancelTimeout()

	el, err := p.Element(selector)
	if err != nil {
		return fmt.Errorf("find %s: %w", selector, err)
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("type into %s: %w", selector, err)
	}

	return nil
}

// ClickAndWait clicks selector and waits until the resulting navigation
// has almost no network activity left.
func (s *Session) ClickAndWait(ctx context.Context, selector string) error {
	p := s.op(ctx)
	defer p.CancelTimeout()

	el, err := p.Element(selector)
	if err != nil {
		return fmt.Errorf("find %s: %w", selector, err)
	}

	wait := p.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	wait()

	return ctxErr(ctx, p)
}

// HTML returns the serialized DOM as currently rendered.
func (s *Session) HTML(ctx context.Context) (string, error) {
	p := s.op(ctx)
	defer p.CancelTimeout()

	return p.HTML()
}

func (s *Session) URL(ctx context.Context) (string, error) {
	p := s.op(ctx)
	defer p.CancelTimeout()

	info, err := p.Info()
	if err != nil {
		return "", err
	}

	return info.URL, nil
}

// Cookies exports the page's cookies so plain HTTP requests can reuse
// the logged-in session.
func (s *Session) Cookies(ctx context.Context) ([]*http.Cookie, error) {
	p := s.op(ctx)
	defer p.CancelTimeout()

	raw, err := p.Cookies(nil)
	if err != nil {
		return nil, err
	}

	out := make([]*http.Cookie, 0, len(raw))
	for _, c := range raw {
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}

	return out, nil
}

// Close shuts the browser down and removes its profile directory.
func (s *Session) Close() error {
	err := s.browser.Close()
	s.launcher.Cleanup()

	return err
}

func (s *Session) debugf(format string, args ...any) {
	if s.log != nil {
		s.log.Debugf(format, args...)
	}
}

func ctxErr(ctx context.Context, p *rod.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.GetContext().Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("page operation timed out: %w", err)
		}
		return err
	}

	return nil
}
