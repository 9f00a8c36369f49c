package ralevon

import (
	"context"
	"errors"
	"fmt"

	"github.com/brogergvhs/noveld/internal/providers"
)

var (
	ErrLoginRejected = errors.New("login rejected: still on the login page")
	// ErrSessionExpired means a navigation was redirected to the login
	// page. The run does not log in again.
	ErrSessionExpired = errors.New("session expired: redirected to the login page")
)

type Scraper struct {
	page     providers.Page
	loginURL string
	sel      Selectors
	log      interface{ Debugf(string, ...any) }
}

func NewScraper(page providers.Page, loginURL string, sel Selectors, log interface{ Debugf(string, ...any) }) *Scraper {
	return &Scraper{
		page:     page,
		loginURL: loginURL,
		sel:      sel,
		log:      log,
	}
}

var _ providers.Site = (*Scraper)(nil)

func (s *Scraper) Login(ctx context.Context, email, password string) error {
	if err := s.page.Navigate(ctx, s.loginURL); err != nil {
		return err
	}
	if err := s.page.WaitElement(ctx, s.sel.Username); err != nil {
		return err
	}

	if err := s.page.Type(ctx, s.sel.Username, email); err != nil {
		return err
	}
	if err := s.page.Type(ctx, s.sel.Password, password); err != nil {
		return err
	}
	if err := s.page.ClickAndWait(ctx, s.sel.Submit); err != nil {
		return err
	}

	current, err := s.page.URL(ctx)
	if err != nil {
		return err
	}
	if samePage(current, s.loginURL) {
		return ErrLoginRejected
	}

	return nil
}

func (s *Scraper) Volumes(ctx context.Context, bookURL string) ([]string, error) {
	html, base, err := s.load(ctx, bookURL)
	if err != nil {
		return nil, err
	}

	links, err := ExtractVolumeLinks(html, base, s.sel)
	if err != nil {
		return nil, fmt.Errorf("parse book page: %w", err)
	}
	s.debugf("book page %s: %d unique volume links", bookURL, len(links))

	return links, nil
}

func (s *Scraper) Volume(ctx context.Context, link string, index int) (providers.VolumeMeta, error) {
	html, base, err := s.load(ctx, link)
	if err != nil {
		return providers.VolumeMeta{}, err
	}

	title, cover, episodes, err := ParseVolumePage(html, base, s.sel)
	if err != nil {
		return providers.VolumeMeta{}, err
	}

	return providers.VolumeMeta{
		Link:     link,
		Index:    index,
		Title:    title,
		Cover:    cover,
		Episodes: episodes,
	}, nil
}

func (s *Scraper) Episode(ctx context.Context, ref providers.EpisodeRef) (providers.EpisodeContent, error) {
	if err := s.page.Navigate(ctx, ref.Link); err != nil {
		return providers.EpisodeContent{}, err
	}
	if err := s.checkSession(ctx); err != nil {
		return providers.EpisodeContent{}, err
	}

	if err := s.page.WaitElement(ctx, s.sel.Reader); err != nil {
		return providers.EpisodeContent{}, err
	}

	html, err := s.page.HTML(ctx)
	if err != nil {
		return providers.EpisodeContent{}, err
	}

	data, err := ExtractOuterHTML(html, s.sel.Reader)
	if err != nil {
		return providers.EpisodeContent{}, err
	}

	return providers.EpisodeContent{Title: ref.Name, Data: data, Link: ref.Link}, nil
}

// load navigates to target and returns the rendered DOM together with
// the final URL used to resolve relative links.
func (s *Scraper) load(ctx context.Context, target string) (html, base string, err error) {
	if err := s.page.Navigate(ctx, target); err != nil {
		return "", "", err
	}

	base, err = s.page.URL(ctx)
	if err != nil || base == "" {
		base = target
	}
	if samePage(base, s.loginURL) && !samePage(target, s.loginURL) {
		return "", "", ErrSessionExpired
	}

	html, err = s.page.HTML(ctx)
	if err != nil {
		return "", "", err
	}

	return html, base, nil
}

func (s *Scraper) checkSession(ctx context.Context) error {
	current, err := s.page.URL(ctx)
	if err != nil {
		return err
	}
	if samePage(current, s.loginURL) {
		return ErrSessionExpired
	}

	return nil
}

func (s *Scraper) debugf(format string, args ...any) {
	if s.log != nil {
		s.log.Debugf(format, args...)
	}
}
