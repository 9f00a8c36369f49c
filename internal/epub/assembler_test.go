package epub

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/brogergvhs/noveld/internal/downloader"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLog struct{}

func (nopLog) Debugf(string, ...any) {}
func (nopLog) Warnf(string, ...any)  {}

// fakeFetcher writes a 1x1 PNG for every URL not listed in fail.
type fakeFetcher struct {
	fail    map[string]bool
	fetched []string
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

var pngBytes []byte

func (f *fakeFetcher) Fetch(_ context.Context, u, dest, _ string) (int64, error) {
	f.fetched = append(f.fetched, u)
	if f.fail[u] {
		return 0, errors.New("HTTP 404")
	}
	return int64(len(pngBytes)), os.WriteFile(dest, pngBytes, 0644)
}

func (f *fakeFetcher) FetchAll(ctx context.Context, urls []string, folder, prefix, referer string, _ int) ([]downloader.Asset, error) {
	out := make([]downloader.Asset, len(urls))
	for i, u := range urls {
		dest := filepath.Join(folder, prefix+"_"+string(rune('a'+i))+".png")
		n, err := f.Fetch(ctx, u, dest, referer)
		if err != nil {
			out[i] = downloader.Asset{URL: u, Err: err}
			continue
		}
		out[i] = downloader.Asset{URL: u, Path: dest, Bytes: n}
	}
	return out, nil
}

func zipEntries(t *testing.T, path string) map[string]string {
	t.Helper()

	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	out := map[string]string{}
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		_ = rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

func episodeFiles(entries map[string]string) []string {
	var names []string
	for name := range entries {
		if strings.Contains(name, "episode_") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func TestAssemble_WritesOneSectionPerEpisode(t *testing.T) {
	pngBytes = tinyPNG(t)
	f := &fakeFetcher{}
	a := NewAssembler(f, false, 2, nopLog{})

	dir := t.TempDir()
	dest := filepath.Join(dir, "1. Tomo.epub")
	content := []providers.EpisodeContent{
		{Title: "Prólogo", Data: `<div id="readerBox"><p>uno</p></div>`},
		{Title: "Capítulo 1", Data: `<div id="readerBox"><p>dos</p></div>`},
		{Title: "Capítulo 3", Data: `<div id="readerBox"><p>cuatro</p></div>`},
		{Title: "Epílogo", Data: `<div id="readerBox"><p>cinco</p></div>`},
	}

	res, err := a.Assemble(context.Background(), Options{
		Title:      "1. Tomo",
		Cover:      "https://ralevon.fyi/media/cover.jpg",
		Author:     "Miya Kazuki - You Shiina",
		Language:   "es",
		Identifier: Identifier("https://ralevon.fyi/volume/aaa"),
		Source:     "https://ralevon.fyi/volume/aaa",
		Content:    content,
	}, dest, filepath.Join(dir, "work_tmp"))
	require.NoError(t, err)

	assert.Equal(t, 4, res.Chapters)
	assert.Equal(t, dest, res.Path)
	assert.Equal(t, []string{"https://ralevon.fyi/media/cover.jpg"}, f.fetched)

	entries := zipEntries(t, dest)
	names := episodeFiles(entries)
	require.Len(t, names, 4)
	assert.Contains(t, entries[names[0]], "uno")
	assert.Contains(t, entries[names[2]], "cuatro")
	assert.Contains(t, entries[names[3]], "<h1>Epílogo</h1>")

	var opf string
	for name, body := range entries {
		if strings.HasSuffix(name, ".opf") {
			opf = body
		}
	}
	assert.Contains(t, opf, "Miya Kazuki - You Shiina")
	assert.Contains(t, opf, Identifier("https://ralevon.fyi/volume/aaa"))
}

func TestAssemble_CoverFailureFailsVolume(t *testing.T) {
	pngBytes = tinyPNG(t)
	f := &fakeFetcher{fail: map[string]bool{"https://ralevon.fyi/broken.jpg": true}}
	a := NewAssembler(f, false, 1, nopLog{})

	dir := t.TempDir()
	dest := filepath.Join(dir, "x.epub")
	_, err := a.Assemble(context.Background(), Options{
		Title:   "x",
		Cover:   "https://ralevon.fyi/broken.jpg",
		Content: []providers.EpisodeContent{{Title: "a", Data: "<p>a</p>"}},
	}, dest, filepath.Join(dir, "work_tmp"))

	assert.ErrorContains(t, err, "cover")
	assert.NoFileExists(t, dest)
}

func TestAssemble_EmbedsInlineImages(t *testing.T) {
	pngBytes = tinyPNG(t)
	f := &fakeFetcher{fail: map[string]bool{"https://ralevon.fyi/media/missing.png": true}}
	a := NewAssembler(f, true, 2, nopLog{})

	dir := t.TempDir()
	dest := filepath.Join(dir, "img.epub")
	res, err := a.Assemble(context.Background(), Options{
		Title: "img",
		Content: []providers.EpisodeContent{{
			Title: "Ilustraciones",
			Link:  "https://ralevon.fyi/episode/1",
			Data:  `<div id="readerBox"><img src="/media/a.png"><img data-src="/media/missing.png"><img src="/media/a.png"></div>`,
		}},
	}, dest, filepath.Join(dir, "work_tmp"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Images)
	assert.Equal(t, 1, res.ImageFailures)

	body := entries1(t, dest)
	assert.NotContains(t, body, `src="/media/a.png"`)
	assert.Contains(t, body, "images/img_a.png")
	assert.Contains(t, body, `data-src="/media/missing.png"`)
}

func entries1(t *testing.T, path string) string {
	t.Helper()
	entries := zipEntries(t, path)
	names := episodeFiles(entries)
	require.Len(t, names, 1)
	return entries[names[0]]
}

func TestIdentifier_IsStable(t *testing.T) {
	a := Identifier("https://ralevon.fyi/volume/aaa")
	b := Identifier("https://ralevon.fyi/volume/aaa")
	c := Identifier("https://ralevon.fyi/volume/bbb")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "urn:uuid:"))
}

func TestRewriteImages(t *testing.T) {
	out, err := rewriteImages(
		`<div id="readerBox"><img src="a.png" srcset="a-2x.png 2x"><img src="data:image/png;base64,xx"></div>`,
		"https://ralevon.fyi/episode/1",
		map[string]string{"https://ralevon.fyi/episode/a.png": "../images/img_001.png"},
	)
	require.NoError(t, err)

	assert.Equal(t, `<div id="readerBox"><img src="../images/img_001.png"/><img src="data:image/png;base64,xx"/></div>`, out)
}

func TestImageCollector_DedupesInOrder(t *testing.T) {
	c := newImageCollector()
	require.NoError(t, c.ScanFragment(`<img src="/b.png"><img data-original="/a.png"><img src="/b.png"><img src="data:x">`, "https://ralevon.fyi/episode/1"))

	assert.Equal(t, []string{"https://ralevon.fyi/b.png", "https://ralevon.fyi/a.png"}, c.items)
}
