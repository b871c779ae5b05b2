// Package mailer renders and delivers credential messages.
//
// Rendering produces a plaintext body with an HTML alternative from embedded
// templates. Delivery is either simulated (the rendered message is echoed to
// the operator, nothing touches the network) or real, over authenticated
// SMTP with a typed retry policy. Pacing between messages lives here too,
// since the provider's throttling thresholds are a mail concern.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	texttemplate "text/template"
	"time"

	"github.com/dmitrijs2005/votekeeper/internal/config"
	"github.com/dmitrijs2005/votekeeper/internal/models"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// messageData is the payload both body templates render from.
type messageData struct {
	Name           string
	PublicID       string
	PrivateKey     string
	ElectionName   string
	ElectionWindow string
	Link           string
	Sender         string
	Year           int
}

// Renderer builds the subject, plaintext and HTML parts of a credential
// message.
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template

	subject        string
	electionName   string
	electionWindow string
	senderName     string

	formURL      string
	formIDEntry  string
	formKeyEntry string
}

func NewRenderer(cfg *config.Config) (*Renderer, error) {
	text, err := texttemplate.ParseFS(templatesFS, "templates/body.text.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse text template: %w", err)
	}
	html, err := htmltemplate.ParseFS(templatesFS, "templates/body.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	return &Renderer{
		text:           text,
		html:           html,
		subject:        cfg.Subject,
		electionName:   cfg.ElectionName,
		electionWindow: cfg.ElectionWindow,
		senderName:     cfg.SenderName,
		formURL:        cfg.FormURL,
		formIDEntry:    cfg.FormIDEntry,
		formKeyEntry:   cfg.FormKeyEntry,
	}, nil
}

// Render produces the message for one voter and credential.
func (r *Renderer) Render(voter models.Voter, cred models.Credential) (models.Message, error) {
	data := messageData{
		Name:           voter.Name,
		PublicID:       cred.PublicID,
		PrivateKey:     cred.PrivateKey,
		ElectionName:   r.electionName,
		ElectionWindow: r.electionWindow,
		Link:           r.FormLink(cred),
		Sender:         r.senderName,
		Year:           time.Now().Year(),
	}

	var textBuf bytes.Buffer
	if err := r.text.Execute(&textBuf, data); err != nil {
		return models.Message{}, fmt.Errorf("render text body: %w", err)
	}
	var htmlBuf bytes.Buffer
	if err := r.html.Execute(&htmlBuf, data); err != nil {
		return models.Message{}, fmt.Errorf("render html body: %w", err)
	}

	return models.Message{
		Subject: r.subject,
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}

// FormLink builds the voter's prefilled voting-form URL. Empty when the base
// URL or the id entry is not configured; the private-key entry is optional
// so the form can be set up to require typing the key by hand.
func (r *Renderer) FormLink(cred models.Credential) string {
	if r.formURL == "" || r.formIDEntry == "" {
		return ""
	}
	params := url.Values{}
	params.Set(r.formIDEntry, cred.PublicID)
	if r.formKeyEntry != "" {
		params.Set(r.formKeyEntry, cred.PrivateKey)
	}
	return r.formURL + "?" + params.Encode()
}
