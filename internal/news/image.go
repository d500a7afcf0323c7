package news

import (
	"net/url"
	"strings"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif", ".svg"}

// Hosts that serve valid images from extensionless URLs.
var imageHosts = []string{
	"images.unsplash.com",
	"img.youtube.com",
	"i.guim.co.uk",
	"media.guim.co.uk",
	"ichef.bbci.co.uk",
	"cloudfront.net",
	"gravatar.com",
	"googleusercontent.com",
	"wp.com",
	"cloudinary.com",
	"imgix.net",
	"nation.africa",
	"standardmedia.co.ke",
}

// ValidImageURL filters out the garbage values providers put in image
// fields ("null", "N/A", relative paths). It returns the URL when it
// looks like a fetchable image and "" otherwise, so the renderer never
// shows a broken placeholder.
func ValidImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	switch strings.ToLower(raw) {
	case "null", "none", "n/a", "undefined":
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Host == "" {
		return ""
	}

	path := strings.ToLower(u.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return raw
		}
	}
	host := strings.ToLower(u.Host)
	for _, h := range imageHosts {
		if host == h || strings.HasSuffix(host, "."+h) || strings.Contains(host, h) {
			return raw
		}
	}
	return ""
}
