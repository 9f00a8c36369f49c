package providers

import "context"

// EpisodeRef is one chapter link as listed on a volume page.
type EpisodeRef struct {
	Link string
	Name string
}

// EpisodeContent is the scraped body of one episode. Link is where it
// was read from and resolves relative URLs inside Data.
type EpisodeContent struct {
	Title string
	Data  string
	Link  string
}

// VolumeMeta is everything read from a volume page before its episodes
// are visited. Index is 1-based in discovery order.
type VolumeMeta struct {
	Link     string
	Index    int
	Title    string
	Cover    string
	Episodes []EpisodeRef
}

// Page is the subset of the browser session a provider drives. One
// implementation owns one page and runs one operation at a time.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitElement(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error
	ClickAndWait(ctx context.Context, selector string) error
	HTML(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
}

// Site scrapes one reading platform through a shared Page.
type Site interface {
	Login(ctx context.Context, email, password string) error
	Volumes(ctx context.Context, bookURL string) ([]string, error)
	Volume(ctx context.Context, link string, index int) (VolumeMeta, error)
	Episode(ctx context.Context, ref EpisodeRef) (EpisodeContent, error)
}
