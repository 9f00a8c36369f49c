package downloader

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/brogergvhs/noveld/internal/util"
)

// Downloader fetches images referenced by scraped pages (cover and
// inline illustrations) into a per-volume folder.
type Downloader struct {
	client   *http.Client
	attempts int
	backoff  time.Duration
	onBytes  func(delta int64)
	log      interface{ Debugf(string, ...any) }
}

func New(c *http.Client, log interface{ Debugf(string, ...any) }) *Downloader {
	return &Downloader{
		client:   c,
		attempts: 3,
		backoff:  time.Second,
		log:      log,
	}
}

// CountBytes registers a callback receiving every chunk size written to
// disk, across all workers. It must be safe for concurrent use.
func (d *Downloader) CountBytes(fn func(delta int64)) {
	d.onBytes = fn
}

// Asset is the outcome for one URL; Path is empty when Err is set.
type Asset struct {
	URL   string
	Path  string
	Bytes int64
	Err   error
}

// FetchAll downloads urls into folder with up to maxParallel workers.
// Results keep the order of urls; failures are reported per asset.
func (d *Downloader) FetchAll(
	ctx context.Context,
	urls []string,
	folder string,
	prefix string,
	referer string,
	maxParallel int,
) ([]Asset, error) {

	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, err
	}

	total := len(urls)
	if maxParallel < 1 {
		maxParallel = 1
	}
	if maxParallel > total && total > 0 {
		maxParallel = total
	}

	out := make([]Asset, total)
	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			u := urls[i]
			dest := filepath.Join(folder, fmt.Sprintf("%s_%03d%s", prefix, i+1, ExtFor(u)))
			out[i] = d.fetchAsset(ctx, u, dest, referer)
		}
	}

	wg.Add(maxParallel)
	for w := 0; w < maxParallel; w++ {
		go worker()
	}

	for i := range urls {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return out, ctx.Err()
		case jobs <- i:
		}
	}

	close(jobs)
	wg.Wait()

	return out, nil
}

// Fetch downloads a single image to dest.
func (d *Downloader) Fetch(ctx context.Context, u, dest, referer string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, err
	}

	return d.download(ctx, u, dest, referer)
}

// fetchAsset runs one pool job. A panic while fetching becomes that
// asset's error instead of taking the process down.
func (d *Downloader) fetchAsset(ctx context.Context, u, dest, referer string) (a Asset) {
	defer func() {
		if r := recover(); r != nil {
			a = Asset{URL: u, Err: fmt.Errorf("panic downloading %s: %v", u, r)}
		}
	}()

	n, err := d.download(ctx, u, dest, referer)
	if err != nil {
		return Asset{URL: u, Err: err}
	}
	return Asset{URL: u, Path: dest, Bytes: n}
}

// download retries transport errors and 5xx responses through
// util.DoWithRetry; anything else is final.
func (d *Downloader) download(ctx context.Context, u, output, referer string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(d.attempts)*30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := util.DoWithRetry(d.client, req, d.attempts, d.backoff)
	if err != nil {
		if d.log != nil {
			d.log.Debugf("download %s: %v", u, err)
		}
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); !strings.HasPrefix(mt, "image/") {
			return 0, fmt.Errorf("unexpected MIME: %s", ct)
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return 0, err
	}

	var last int64
	written, err := copyWithProgress(f, resp.Body, func(done int64) {
		if d.onBytes != nil {
			d.onBytes(done - last)
		}
		last = done
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(output)
		return 0, err
	}

	return written, nil
}

// ExtFor picks the file extension for an image URL, defaulting to .jpg.
func ExtFor(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ".jpg"
	}

	switch ext := strings.ToLower(path.Ext(u.Path)); ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg":
		return ext
	default:
		return ".jpg"
	}
}
