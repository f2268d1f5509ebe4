package domain

import "strings"

// Message is a platform-neutral inbound chat message.
type Message struct {
	ID          string
	ChannelID   string
	GuildID     string
	AuthorID    string
	AuthorIsBot bool
	Content     string
	Attachments []Attachment
}

// Attachment is a file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
}

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// IsImage reports whether the attachment is an image, either by declared
// content type or by filename extension.
func (a Attachment) IsImage() bool {
	if strings.HasPrefix(a.ContentType, "image/") {
		return true
	}
	name := strings.ToLower(a.Filename)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// CountImages returns the number of image attachments on a message.
func CountImages(attachments []Attachment) int {
	n := 0
	for _, a := range attachments {
		if a.IsImage() {
			n++
		}
	}
	return n
}
