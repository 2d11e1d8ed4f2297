// Package media pulls an embedded image link out of question text.
package media

import (
	"path"
	"regexp"
	"strings"
)

// FallbackMIMEType is reported for image extensions without a specific type.
const FallbackMIMEType = "image"

var imageURL = regexp.MustCompile(`(?i)https?://\S+?\.(jpg|jpeg|png|gif|webp|svg|bmp|tiff|ico)(?:\s|$)`)

var mimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"ico":  "image/x-icon",
}

// Result is the outcome of Extract. URL and MIMEType are empty when the text
// carries no image link.
type Result struct {
	Text     string
	URL      string
	MIMEType string
}

// HasMedia reports whether an image link was found.
func (r Result) HasMedia() bool {
	return r.URL != ""
}

// Extract finds the first image URL in text, removes it and reports its MIME
// type. The URL must end in a known image extension followed by whitespace
// or the end of the text. Later links are left in place.
func Extract(text string) Result {
	loc := imageURL.FindStringSubmatchIndex(text)
	if loc == nil {
		return Result{Text: text}
	}

	ext := strings.ToLower(text[loc[2]:loc[3]])
	url := text[loc[0]:loc[3]]
	return Result{
		Text:     strings.TrimSpace(text[:loc[0]] + text[loc[1]:]),
		URL:      url,
		MIMEType: MIMEType(ext),
	}
}

// MIMEType maps an image extension (with or without the dot) or a file name
// onto a MIME type.
func MIMEType(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(path.Ext("x."+strings.TrimPrefix(ext, ".")), "."))
	if t, ok := mimeTypes[ext]; ok {
		return t
	}
	return FallbackMIMEType
}
