package epub

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// lazySrcAttrs are checked in order when an <img> has no usable src.
var lazySrcAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

type imageCollector struct {
	items []string
	seen  map[string]bool
}

func newImageCollector() *imageCollector {
	return &imageCollector{seen: make(map[string]bool)}
}

func (c *imageCollector) add(u string) {
	if u == "" || c.seen[u] {
		return
	}
	c.seen[u] = true
	c.items = append(c.items, u)
}

// imageSource picks the URL an <img> displays, resolved against base.
func imageSource(img *goquery.Selection, base string) string {
	for _, k := range lazySrcAttrs {
		v, ok := img.Attr(k)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			continue
		}

		lv := strings.ToLower(v)
		if strings.HasPrefix(lv, "data:") || strings.HasPrefix(lv, "javascript:") {
			return ""
		}

		return resolve(base, v)
	}

	return ""
}

// ScanFragment collects image URLs of one episode body in document order.
func (c *imageCollector) ScanFragment(fragment, base string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return err
	}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		c.add(imageSource(img, base))
	})

	return nil
}

// rewriteImages points every <img> whose source is in internal at the
// embedded copy. Images that were not embedded keep their original src.
func rewriteImages(fragment, base string, internal map[string]string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		path, ok := internal[imageSource(img, base)]
		if !ok {
			return
		}

		img.SetAttr("src", path)
		for _, k := range lazySrcAttrs[1:] {
			img.RemoveAttr(k)
		}
		img.RemoveAttr("srcset")
	})

	return doc.Find("body").Html()
}

func resolve(base, raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u == nil {
		return raw
	}

	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(base)
	if err != nil || b == nil {
		return raw
	}

	return b.ResolveReference(u).String()
}
