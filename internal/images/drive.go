// Package images normalizes product photo URLs before they reach the
// database. Google Drive share links are not directly embeddable, so
// they are rewritten to the googleusercontent image-serving form.
package images

import "regexp"

var (
	driveFileRe  = regexp.MustCompile(`drive\.google\.com/file/d/([a-zA-Z0-9_-]+)`)
	driveQueryRe = regexp.MustCompile(`drive\.google\.com/[^#]*[?&]id=([a-zA-Z0-9_-]+)`)
)

// NormalizeDriveURL rewrites a Google Drive share link (either the
// /file/d/<id>/view or the ?id=<id> form) to the direct image URL
// keyed on the extracted file id. Other URLs pass through unchanged.
func NormalizeDriveURL(raw string) string {
	if m := driveFileRe.FindStringSubmatch(raw); m != nil {
		return "https://lh3.googleusercontent.com/d/" + m[1]
	}
	if m := driveQueryRe.FindStringSubmatch(raw); m != nil {
		return "https://lh3.googleusercontent.com/d/" + m[1]
	}
	return raw
}

// NormalizeAll normalizes every URL in the ordered photo list.
func NormalizeAll(urls []string) []string {
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = NormalizeDriveURL(u)
	}
	return out
}
