package models

// Message is a rendered notification with a plaintext part and an HTML
// alternative part.
type Message struct {
	Subject string
	Text    string
	HTML    string
}
