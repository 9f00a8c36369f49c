// Package export drives the volume loop: discover, read each volume,
// collect its episodes one by one on the shared page, then assemble.
package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/brogergvhs/noveld/internal/epub"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"
	"github.com/brogergvhs/noveld/internal/volumes"
)

var ErrNoContent = errors.New("no episode could be collected")

type Assembler interface {
	Assemble(ctx context.Context, opts epub.Options, dest, workDir string) (epub.Result, error)
}

type Options struct {
	OutputDir string
	Author    string
	Language  string
	Range     string
	List      string
	DryRun    bool
}

type Exporter struct {
	site  providers.Site
	asm   Assembler
	opts  Options
	log   *ui.Logger
	pm    *ui.MPBProgressManager
	stats *ui.Stats
}

func New(site providers.Site, asm Assembler, opts Options, log *ui.Logger, pm *ui.MPBProgressManager, stats *ui.Stats) *Exporter {
	if stats == nil {
		stats = &ui.Stats{}
	}

	return &Exporter{
		site:  site,
		asm:   asm,
		opts:  opts,
		log:   log,
		pm:    pm,
		stats: stats,
	}
}

// Run discovers the book's volumes and processes the selected ones in
// discovery order. Only discovery failure or cancellation is returned as
// an error; per-volume failures live in the report.
func (x *Exporter) Run(ctx context.Context, bookURL string) (RunReport, error) {
	var report RunReport

	links, err := x.site.Volumes(ctx, bookURL)
	if err != nil {
		return report, fmt.Errorf("discover volumes: %w", err)
	}
	x.log.Infof("Volúmenes encontrados: %d", len(links))

	selected := volumes.Filter(volumes.Number(links), x.opts.Range, x.opts.List)
	if len(selected) != len(links) {
		x.log.Infof("Volúmenes seleccionados: %d", len(selected))
	}

	for _, l := range selected {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		x.log.Infof("Procesando volumen %d/%d: %s", l.Index, len(links), l.URL)
		vr := x.ProcessVolume(ctx, l)
		x.stats.SkippedEpisodes.Add(int64(len(vr.EpisodeFailures)))
		if vr.Err != nil {
			x.stats.FailedVolumes.Add(1)
			x.log.Errorf("Error al procesar el volumen en %s: %v", l.URL, vr.Err)
		}
		report.Volumes = append(report.Volumes, vr)
	}

	return report, ctx.Err()
}

// ProcessVolume never returns an error: every failure ends up in the
// report so the caller can move on to the next volume.
func (x *Exporter) ProcessVolume(ctx context.Context, l volumes.Link) VolumeReport {
	vr := VolumeReport{Index: l.Index, Link: l.URL, DryRun: x.opts.DryRun}

	meta, err := x.site.Volume(ctx, l.URL, l.Index)
	if err != nil {
		vr.Err = err
		return vr
	}

	vol := volumes.Volume{VolumeMeta: meta}
	vr.Title = meta.Title
	vr.Episodes = len(meta.Episodes)
	log := x.log.With("volumen", strconv.Itoa(l.Index))
	log.Infof("Procesando volumen %d: %s", l.Index, meta.Title)
	log.Infof("Episodios encontrados: %d", len(meta.Episodes))

	if x.opts.DryRun {
		for i, ep := range meta.Episodes {
			log.Infof("  %3d) %s  %s", i+1, ep.Name, ep.Link)
		}
		vr.Path = vol.OutputEPUBPath(x.opts.OutputDir)
		return vr
	}

	handle := x.pm.Register(fmt.Sprintf("Vol.%d", l.Index))
	handle.SetTotal(len(meta.Episodes))

	results := x.collectEpisodes(ctx, log, meta.Episodes, handle)
	content, failures := Partition(results)
	vr.EpisodeFailures = failures

	if err := ctx.Err(); err != nil {
		handle.Abort()
		vr.Err = err
		return vr
	}
	if len(content) == 0 {
		handle.Abort()
		vr.Err = ErrNoContent
		return vr
	}
	handle.MarkDone()

	dest := vol.OutputEPUBPath(x.opts.OutputDir)
	workDir := filepath.Join(x.opts.OutputDir, vol.FolderName())
	defer util.CleanupFolder(workDir)

	res, err := x.asm.Assemble(ctx, epub.Options{
		Title:      vol.DisplayTitle(),
		Cover:      meta.Cover,
		Author:     x.opts.Author,
		Language:   x.opts.Language,
		Identifier: epub.Identifier(meta.Link),
		Source:     meta.Link,
		Content:    content,
	}, dest, workDir)
	if err != nil {
		vr.Err = err
		return vr
	}

	vr.Path = res.Path
	vr.Chapters = res.Chapters
	vr.Images = res.Images
	x.stats.TotalVolumes.Add(1)
	x.stats.TotalChapters.Add(int64(res.Chapters))
	x.stats.TotalImages.Add(int64(res.Images))
	log.Infof("EPUB creado exitosamente: %s", filepath.Base(res.Path))

	return vr
}

// collectEpisodes visits refs strictly in order on the shared page. A
// failing episode is logged and skipped; cancellation stops the loop.
func (x *Exporter) collectEpisodes(ctx context.Context, log *ui.Logger, refs []providers.EpisodeRef, handle *ui.ProgressHandle) []EpisodeResult {
	results := make([]EpisodeResult, 0, len(refs))
	var collected int64

	for i, ref := range refs {
		if ctx.Err() != nil {
			break
		}

		log.Infof("Procesando episodio %d de %d: %s", i+1, len(refs), ref.Name)
		content, err := x.site.Episode(ctx, ref)
		r := EpisodeResult{Index: i + 1, Ref: ref, Content: content, Err: err}
		if err != nil {
			log.Errorf("Error al procesar el episodio %d (%s): %v", i+1, ref.Name, err)
		} else {
			collected += int64(len(content.Data))
		}

		results = append(results, r)
		handle.Update(i+1, len(refs), collected)
	}

	return results
}
