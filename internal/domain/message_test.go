package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachment_IsImage(t *testing.T) {
	tests := []struct {
		name       string
		attachment Attachment
		want       bool
	}{
		{"content type image/png", Attachment{Filename: "pic", ContentType: "image/png"}, true},
		{"content type image/webp", Attachment{Filename: "x.bin", ContentType: "image/webp"}, true},
		{"content type text/plain", Attachment{Filename: "notes.txt", ContentType: "text/plain"}, false},
		{"no content type, png extension", Attachment{Filename: "screenshot.PNG"}, true},
		{"no content type, jpeg extension", Attachment{Filename: "photo.jpeg"}, true},
		{"no content type, jpg extension", Attachment{Filename: "photo.jpg"}, true},
		{"no content type, gif extension", Attachment{Filename: "anim.gif"}, true},
		{"no content type, webp extension", Attachment{Filename: "sticker.webp"}, true},
		{"no content type, pdf extension", Attachment{Filename: "doc.pdf"}, false},
		{"extension wins over non-image content type", Attachment{Filename: "weird.png", ContentType: "application/octet-stream"}, true},
		{"empty attachment", Attachment{}, false},
		{"extension embedded mid-name", Attachment{Filename: "x.png.exe"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.attachment.IsImage())
		})
	}
}

func TestCountImages(t *testing.T) {
	attachments := []Attachment{
		{Filename: "a.png"},
		{Filename: "b.txt"},
		{Filename: "c", ContentType: "image/jpeg"},
		{Filename: "d.mp4", ContentType: "video/mp4"},
	}

	assert.Equal(t, 2, CountImages(attachments))
}

func TestCountImages_Empty(t *testing.T) {
	assert.Equal(t, 0, CountImages(nil))
}

func TestRank(t *testing.T) {
	entries := []Entry{
		{UserID: "111", Points: 5},
		{UserID: "222", Points: 3},
	}

	ranked := Rank(entries)

	assert.Len(t, ranked, 2)
	assert.Equal(t, RankedEntry{Rank: 1, UserID: "111", Points: 5}, ranked[0])
	assert.Equal(t, RankedEntry{Rank: 2, UserID: "222", Points: 3}, ranked[1])
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}
