package ralevon

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/noveld/internal/providers"
)

const (
	UntitledVolume = "Sin título"
	UnnamedEpisode = "Sin nombre"
)

// Selectors locate the elements the scraper reads on each page type.
type Selectors struct {
	Username    string
	Password    string
	Submit      string
	VolumeLink  string
	VolumeTitle string
	Cover       string
	EpisodeLink string
	Reader      string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Username:    "#username",
		Password:    `input[type="password"]`,
		Submit:      `button[type="submit"]`,
		VolumeLink:  `a.nav-link.active.rounded-1[href^="/volume/"]`,
		VolumeTitle: "#main-content > section.position-relative.bg-primary-subtle > div > div > div > h1",
		Cover:       "img.img-fluid.rounded.border",
		EpisodeLink: "a.fs-6",
		Reader:      "#readerBox",
	}
}

var ErrElementNotFound = errors.New("element not found")

func parse(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// ExtractVolumeLinks returns the absolute hrefs of every volume anchor,
// deduplicated in first-seen order.
func ExtractVolumeLinks(html, pageURL string, sel Selectors) ([]string, error) {
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find(sel.VolumeLink).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		links = append(links, resolveURL(pageURL, strings.TrimSpace(href)))
	})

	return Dedupe(links), nil
}

// Dedupe drops repeated entries keeping the first occurrence of each.
func Dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))

	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}

	return out
}

// ParseVolumePage reads title, cover and the ordered episode list.
// Missing title or cover elements are errors; an empty title is not.
func ParseVolumePage(html, pageURL string, sel Selectors) (title, cover string, episodes []providers.EpisodeRef, err error) {
	doc, err := parse(html)
	if err != nil {
		return "", "", nil, err
	}

	h := doc.Find(sel.VolumeTitle).First()
	if h.Length() == 0 {
		return "", "", nil, fmt.Errorf("volume title %q: %w", sel.VolumeTitle, ErrElementNotFound)
	}
	title = strings.TrimSpace(h.Text())
	if title == "" {
		title = UntitledVolume
	}

	img := doc.Find(sel.Cover).First()
	if img.Length() == 0 {
		return "", "", nil, fmt.Errorf("cover %q: %w", sel.Cover, ErrElementNotFound)
	}
	src, _ := img.Attr("src")
	cover = resolveURL(pageURL, strings.TrimSpace(src))

	doc.Find(sel.EpisodeLink).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		name := strings.TrimSpace(a.Text())
		if name == "" {
			name = UnnamedEpisode
		}

		episodes = append(episodes, providers.EpisodeRef{
			Link: resolveURL(pageURL, strings.TrimSpace(href)),
			Name: name,
		})
	})

	return title, cover, episodes, nil
}

// ExtractOuterHTML serializes the first element matching selector
// including its own tag.
func ExtractOuterHTML(html, selector string) (string, error) {
	doc, err := parse(html)
	if err != nil {
		return "", err
	}

	el := doc.Find(selector).First()
	if el.Length() == 0 {
		return "", fmt.Errorf("%q: %w", selector, ErrElementNotFound)
	}

	return goquery.OuterHtml(el)
}

func resolveURL(baseURL, href string) string {
	if href == "" {
		return baseURL
	}

	u, err := url.Parse(href)
	if err == nil && u.IsAbs() {
		return u.String()
	}
	if err != nil {
		return href
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}

// samePage reports whether two URLs point at the same host and path,
// ignoring query, fragment and a trailing slash.
func samePage(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}

	return strings.EqualFold(ua.Host, ub.Host) &&
		strings.TrimSuffix(ua.Path, "/") == strings.TrimSuffix(ub.Path, "/")
}
