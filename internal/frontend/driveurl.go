package frontend

import (
	"net/url"
	"regexp"
	"strings"
)

var driveFilePath = regexp.MustCompile(`^/file/d/([A-Za-z0-9_-]+)`)

// DirectImageURL rewrites Google Drive share links to a URL an <img> tag can load.
// Any other URL is returned unchanged.
func DirectImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(parsed.Host, "drive.google.com") {
		return raw
	}

	id := ""
	if match := driveFilePath.FindStringSubmatch(parsed.Path); match != nil {
		id = match[1]
	} else if parsed.Path == "/open" || parsed.Path == "/uc" {
		id = parsed.Query().Get("id")
	}
	if id == "" {
		return raw
	}
	return "https://drive.google.com/uc?export=view&id=" + url.QueryEscape(id)
}
