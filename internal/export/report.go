package export

import (
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/ui"
)

// EpisodeResult carries either the scraped content or why it was skipped.
type EpisodeResult struct {
	Index   int // 1-based position within the volume
	Ref     providers.EpisodeRef
	Content providers.EpisodeContent
	Err     error
}

func (r EpisodeResult) OK() bool { return r.Err == nil }

type EpisodeFailure struct {
	Index int
	Ref   providers.EpisodeRef
	Err   error
}

// Partition splits results into kept content and failures, both in the
// original order.
func Partition(results []EpisodeResult) ([]providers.EpisodeContent, []EpisodeFailure) {
	content := make([]providers.EpisodeContent, 0, len(results))
	var failures []EpisodeFailure

	for _, r := range results {
		if r.OK() {
			content = append(content, r.Content)
			continue
		}
		failures = append(failures, EpisodeFailure{Index: r.Index, Ref: r.Ref, Err: r.Err})
	}

	return content, failures
}

type VolumeReport struct {
	Index           int
	Link            string
	Title           string
	Path            string
	Episodes        int
	Chapters        int
	Images          int
	EpisodeFailures []EpisodeFailure
	DryRun          bool
	Err             error
}

func (r VolumeReport) OK() bool { return r.Err == nil }

type RunReport struct {
	Volumes []VolumeReport
}

func (r RunReport) Succeeded() []VolumeReport {
	var out []VolumeReport
	for _, v := range r.Volumes {
		if v.OK() {
			out = append(out, v)
		}
	}
	return out
}

func (r RunReport) Failed() []VolumeReport {
	var out []VolumeReport
	for _, v := range r.Volumes {
		if !v.OK() {
			out = append(out, v)
		}
	}
	return out
}

func (r RunReport) SummaryRows() []ui.SummaryRow {
	rows := make([]ui.SummaryRow, 0, len(r.Volumes))
	for _, v := range r.Volumes {
		title := v.Title
		if title == "" {
			title = v.Link
		}

		result := "OK"
		switch {
		case v.Err != nil:
			result = "Error: " + v.Err.Error()
		case v.DryRun:
			result = "simulación"
		}

		rows = append(rows, ui.SummaryRow{
			Index:    v.Index,
			Title:    title,
			Chapters: v.Chapters,
			Skipped:  len(v.EpisodeFailures),
			Result:   result,
		})
	}
	return rows
}
