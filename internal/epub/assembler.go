// Package epub packages scraped episodes of one volume into an EPUB file.
package epub

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/brogergvhs/noveld/internal/downloader"
	"github.com/brogergvhs/noveld/internal/providers"

	goepub "github.com/go-shiori/go-epub"
	"github.com/google/uuid"
)

// Options is everything needed to write one volume.
type Options struct {
	Title      string
	Cover      string
	Author     string
	Language   string
	Identifier string
	Source     string
	Content    []providers.EpisodeContent
}

// Result describes a written file.
type Result struct {
	Path          string
	Chapters      int
	Images        int
	ImageFailures int
}

type Fetcher interface {
	Fetch(ctx context.Context, u, dest, referer string) (int64, error)
	FetchAll(ctx context.Context, urls []string, folder, prefix, referer string, maxParallel int) ([]downloader.Asset, error)
}

type Assembler struct {
	fetch        Fetcher
	embedImages  bool
	imageWorkers int
	log          interface {
		Debugf(string, ...any)
		Warnf(string, ...any)
	}
}

func NewAssembler(f Fetcher, embedImages bool, imageWorkers int, log interface {
	Debugf(string, ...any)
	Warnf(string, ...any)
}) *Assembler {
	return &Assembler{
		fetch:        f,
		embedImages:  embedImages,
		imageWorkers: imageWorkers,
		log:          log,
	}
}

// Identifier derives a stable EPUB identifier from the volume URL.
func Identifier(volumeURL string) string {
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(volumeURL)).String()
}

// Assemble writes opts to dest. workDir holds downloaded images until the
// file is written; the caller removes it.
func (a *Assembler) Assemble(ctx context.Context, opts Options, dest, workDir string) (Result, error) {
	e, err := goepub.NewEpub(opts.Title)
	if err != nil {
		return Result{}, fmt.Errorf("new epub: %w", err)
	}

	e.SetAuthor(opts.Author)
	if opts.Language != "" {
		e.SetLang(opts.Language)
	}
	if opts.Identifier != "" {
		e.SetIdentifier(opts.Identifier)
	}
	if opts.Source != "" {
		e.SetDescription(opts.Source)
	}

	if err := os.MkdirAll(workDir, 0755); err != nil {
		return Result{}, err
	}

	if opts.Cover != "" {
		if err := a.addCover(ctx, e, opts, workDir); err != nil {
			return Result{}, err
		}
	}

	res := Result{Path: dest}

	internal := map[string]string{}
	if a.embedImages {
		internal, res.Images, res.ImageFailures = a.addImages(ctx, e, opts.Content, workDir, opts.Source)
	}

	for i, c := range opts.Content {
		body := c.Data
		if len(internal) > 0 {
			if rewritten, err := rewriteImages(body, c.Link, internal); err == nil {
				body = rewritten
			}
		}

		section := "<h1>" + html.EscapeString(c.Title) + "</h1>\n" + body
		filename := fmt.Sprintf("episode_%03d.xhtml", i+1)
		if _, err := e.AddSection(section, c.Title, filename, ""); err != nil {
			return Result{}, fmt.Errorf("add section %q: %w", c.Title, err)
		}
		res.Chapters++
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if err := e.Write(dest); err != nil {
		return Result{}, fmt.Errorf("write epub %s: %w", dest, err)
	}

	return res, nil
}

func (a *Assembler) addCover(ctx context.Context, e *goepub.Epub, opts Options, workDir string) error {
	local := filepath.Join(workDir, "cover"+downloader.ExtFor(opts.Cover))

	if _, err := a.fetch.Fetch(ctx, opts.Cover, local, opts.Source); err != nil {
		return fmt.Errorf("cover %s: %w", opts.Cover, err)
	}

	internalPath, err := e.AddImage(local, filepath.Base(local))
	if err != nil {
		return fmt.Errorf("add cover: %w", err)
	}
	if err := e.SetCover(internalPath, ""); err != nil {
		return fmt.Errorf("set cover: %w", err)
	}

	return nil
}

// addImages downloads every inline image once and registers it in the
// book. It returns source URL -> internal path for the ones that worked.
func (a *Assembler) addImages(ctx context.Context, e *goepub.Epub, content []providers.EpisodeContent, workDir, referer string) (map[string]string, int, int) {
	col := newImageCollector()
	for _, c := range content {
		if err := col.ScanFragment(c.Data, c.Link); err != nil {
			a.log.Warnf("No se pudieron analizar las imágenes de %s: %v", c.Title, err)
		}
	}

	internal := map[string]string{}
	if len(col.items) == 0 {
		return internal, 0, 0
	}

	assets, err := a.fetch.FetchAll(ctx, col.items, workDir, "img", referer, a.imageWorkers)
	if err != nil {
		a.log.Warnf("Descarga de imágenes interrumpida: %v", err)
	}

	failed := 0
	for _, as := range assets {
		if as.URL == "" {
			continue
		}
		if as.Err != nil {
			failed++
			a.log.Warnf("Imagen omitida %s: %v", as.URL, as.Err)
			continue
		}

		p, err := e.AddImage(as.Path, filepath.Base(as.Path))
		if err != nil {
			failed++
			a.log.Warnf("Imagen omitida %s: %v", as.URL, err)
			continue
		}
		internal[as.URL] = p
	}
	a.log.Debugf("embedded %d/%d images", len(internal), len(col.items))

	return internal, len(internal), failed
}
