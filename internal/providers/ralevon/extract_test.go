package ralevon

import (
	"strings"
	"testing"

	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookPage = `<html><body>
<nav>
  <a class="nav-link active rounded-1" href="/volume/aaa">Vol 1</a>
  <a class="nav-link active rounded-1" href="/volume/bbb">Vol 2</a>
  <a class="nav-link active rounded-1" href="/volume/aaa">Vol 1 again</a>
  <a class="nav-link rounded-1" href="/volume/zzz">inactive</a>
  <a class="nav-link active rounded-1" href="/book/other">not a volume</a>
  <a class="nav-link active rounded-1" href="/volume/ccc">Vol 3</a>
</nav>
</body></html>`

func volumePage(title string) string {
	return `<html><body><div id="main-content">
<section class="position-relative bg-primary-subtle"><div><div><div><h1>` + title + `</h1></div></div></div></section>
<img class="img-fluid rounded border" src="/media/cover-1.jpg">
<ul>
  <li><a class="fs-6" href="/episode/1">  Prólogo </a></li>
  <li><a class="fs-6" href="https://cdn.example.org/episode/2">Capítulo 1</a></li>
  <li><a class="fs-6" href="/episode/3"></a></li>
</ul>
</div></body></html>`
}

func TestDedupe_PreservesFirstOccurrence(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, Dedupe([]string{"A", "B", "A", "C"}))
	assert.Equal(t, []string{}, Dedupe(nil))
	assert.Equal(t, []string{"x"}, Dedupe([]string{"x", "x", "x"}))
}

func TestExtractVolumeLinks(t *testing.T) {
	links, err := ExtractVolumeLinks(bookPage, "https://ralevon.fyi/book/FnQRiP5O1X4jkcz3", DefaultSelectors())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://ralevon.fyi/volume/aaa",
		"https://ralevon.fyi/volume/bbb",
		"https://ralevon.fyi/volume/ccc",
	}, links)
}

func TestExtractVolumeLinks_NoMatches(t *testing.T) {
	links, err := ExtractVolumeLinks("<html><body></body></html>", "https://ralevon.fyi/book/x", DefaultSelectors())
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestParseVolumePage(t *testing.T) {
	title, cover, eps, err := ParseVolumePage(volumePage(" El comienzo "), "https://ralevon.fyi/volume/aaa", DefaultSelectors())
	require.NoError(t, err)

	assert.Equal(t, "El comienzo", title)
	assert.Equal(t, "https://ralevon.fyi/media/cover-1.jpg", cover)
	assert.Equal(t, []providers.EpisodeRef{
		{Link: "https://ralevon.fyi/episode/1", Name: "Prólogo"},
		{Link: "https://cdn.example.org/episode/2", Name: "Capítulo 1"},
		{Link: "https://ralevon.fyi/episode/3", Name: UnnamedEpisode},
	}, eps)
}

func TestParseVolumePage_EmptyTitleFallsBack(t *testing.T) {
	title, _, _, err := ParseVolumePage(volumePage("   "), "https://ralevon.fyi/volume/aaa", DefaultSelectors())
	require.NoError(t, err)
	assert.Equal(t, UntitledVolume, title)
}

func TestParseVolumePage_MissingElements(t *testing.T) {
	noTitle := strings.Replace(volumePage("x"), "<h1>x</h1>", "", 1)
	_, _, _, err := ParseVolumePage(noTitle, "https://ralevon.fyi/volume/aaa", DefaultSelectors())
	assert.ErrorIs(t, err, ErrElementNotFound)

	noCover := strings.Replace(volumePage("x"), `class="img-fluid rounded border"`, "", 1)
	_, _, _, err = ParseVolumePage(noCover, "https://ralevon.fyi/volume/aaa", DefaultSelectors())
	assert.ErrorIs(t, err, ErrElementNotFound)
}

func TestExtractOuterHTML(t *testing.T) {
	page := `<html><body><div id="readerBox" class="reader"><p>Hola <b>mundo</b></p></div><div id="readerBox">second</div></body></html>`

	out, err := ExtractOuterHTML(page, "#readerBox")
	require.NoError(t, err)
	assert.Equal(t, `<div id="readerBox" class="reader"><p>Hola <b>mundo</b></p></div>`, out)

	_, err = ExtractOuterHTML("<html></html>", "#readerBox")
	assert.ErrorIs(t, err, ErrElementNotFound)
}

func TestSamePage(t *testing.T) {
	assert.True(t, samePage("https://ralevon.fyi/login", "https://ralevon.fyi/login/"))
	assert.True(t, samePage("https://ralevon.fyi/login?next=/book/x", "https://ralevon.fyi/login"))
	assert.False(t, samePage("https://ralevon.fyi/book/x", "https://ralevon.fyi/login"))
	assert.False(t, samePage("https://other.fyi/login", "https://ralevon.fyi/login"))
}
