package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantText string
		wantURL  string
		wantType string
	}{
		{
			name:     "trailing png",
			input:    "Describe the lesion. https://x.test/img.png",
			wantText: "Describe the lesion.",
			wantURL:  "https://x.test/img.png",
			wantType: "image/png",
		},
		{
			name:     "url in the middle",
			input:    "See http://cdn.test/a/b/scan.JPG then answer.",
			wantText: "See then answer.",
			wantURL:  "http://cdn.test/a/b/scan.JPG",
			wantType: "image/jpeg",
		},
		{
			name:     "only the first url",
			input:    "https://x.test/1.gif https://x.test/2.svg",
			wantText: "https://x.test/2.svg",
			wantURL:  "https://x.test/1.gif",
			wantType: "image/gif",
		},
		{
			name:     "extension must end the token",
			input:    "Visit https://x.test/img.png?size=2 for details",
			wantText: "Visit https://x.test/img.png?size=2 for details",
		},
		{
			name:     "non image link",
			input:    "Reference: https://x.test/article.html",
			wantText: "Reference: https://x.test/article.html",
		},
		{
			name:     "plain text",
			input:    "  What is the first-line treatment?  ",
			wantText: "  What is the first-line treatment?  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.input)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantURL, got.URL)
			assert.Equal(t, tt.wantType, got.MIMEType)
			assert.Equal(t, tt.wantURL != "", got.HasMedia())
		})
	}
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "image/webp", MIMEType("webp"))
	assert.Equal(t, "image/tiff", MIMEType(".TIFF"))
	assert.Equal(t, "image/x-icon", MIMEType("ico"))
	assert.Equal(t, "image/svg+xml", MIMEType("svg"))
	assert.Equal(t, FallbackMIMEType, MIMEType("heic"))
}
