package webpage

import (
	"fmt"
	"html"
)

// Kind is the closed set of page classes the fetcher distinguishes.
type Kind int

const (
	KindPage Kind = iota
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	default:
		return "page"
	}
}

type Provider string

const (
	ProviderYouTube Provider = "youtube"
	ProviderVimeo   Provider = "vimeo"
)

// Embed references a hosted video player.
type Embed struct {
	Provider  Provider
	VideoID   string
	PlayerURL string
}

// HTML renders the player as an iframe fragment for an entry description.
func (e *Embed) HTML() string {
	return fmt.Sprintf(
		`<iframe width="560" height="315" src="%s" title="%s video player" frameborder="0" allow="encrypted-media; picture-in-picture" allowfullscreen></iframe>`,
		html.EscapeString(e.PlayerURL), e.Provider)
}

// Result is what a fetch learned about a URL. Err is a *FetchError when the
// page could not be retrieved or parsed; Kind and Embed are still set for
// recognized video URLs in that case.
type Result struct {
	Kind        Kind
	Title       string
	Description string
	Embed       *Embed
	Err         error
}

func (r Result) Failed() bool {
	return r.Err != nil
}

// FetchError carries a human-readable reason for a failed fetch.
type FetchError struct {
	URL    string
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: %s", e.URL, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
