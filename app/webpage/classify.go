package webpage

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	youtubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	vimeoIDPattern   = regexp.MustCompile(`^[0-9]+$`)
)

var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
}

// classify recognizes video URLs from the URL alone.
func classify(u *url.URL) (Kind, *Embed) {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := pathSegments(u.Path)

	switch {
	case youtubeHosts[host]:
		if len(segments) == 1 && segments[0] == "watch" {
			return youtubeEmbed(u.Query().Get("v"))
		}
		if len(segments) >= 2 {
			switch segments[0] {
			case "shorts", "embed", "live", "v":
				return youtubeEmbed(segments[1])
			}
		}

	case host == "youtu.be":
		if len(segments) >= 1 {
			return youtubeEmbed(segments[0])
		}

	case host == "youtube-nocookie.com":
		if len(segments) >= 2 && segments[0] == "embed" {
			return youtubeEmbed(segments[1])
		}

	case host == "vimeo.com":
		// vimeo.com/<id> and vimeo.com/channels/<name>/<id>
		if len(segments) >= 1 {
			return vimeoEmbed(segments[len(segments)-1])
		}

	case host == "player.vimeo.com":
		if len(segments) >= 2 && segments[0] == "video" {
			return vimeoEmbed(segments[1])
		}
	}

	return KindPage, nil
}

func youtubeEmbed(id string) (Kind, *Embed) {
	if !youtubeIDPattern.MatchString(id) {
		return KindPage, nil
	}
	return KindVideo, &Embed{
		Provider:  ProviderYouTube,
		VideoID:   id,
		PlayerURL: "https://www.youtube-nocookie.com/embed/" + id,
	}
}

func vimeoEmbed(id string) (Kind, *Embed) {
	if !vimeoIDPattern.MatchString(id) {
		return KindPage, nil
	}
	return KindVideo, &Embed{
		Provider:  ProviderVimeo,
		VideoID:   id,
		PlayerURL: "https://player.vimeo.com/video/" + id,
	}
}

func pathSegments(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
