// Package mail renders the emails sent by the credentials service.
package mail

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/aussiebroadwan/trivia/pkg/mailx"
)

//go:embed templates/*
var templates embed.FS

// DefaultConfirmationSubject is used when no subject is configured.
const DefaultConfirmationSubject = "Confirm your email address with Famous Trivia."

// ConfirmationData fills the confirmation templates.
type ConfirmationData struct {
	AppName  string
	Username string
	HomeURL  string
	Link     string
}

// Renderer builds messages from the embedded templates.
type Renderer struct {
	From    string
	Subject string

	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewRenderer(from, subject string) (*Renderer, error) {
	if subject == "" {
		subject = DefaultConfirmationSubject
	}

	html, err := htmltemplate.ParseFS(templates, "templates/confirmation.html")
	if err != nil {
		return nil, err
	}
	text, err := texttemplate.ParseFS(templates, "templates/confirmation.txt")
	if err != nil {
		return nil, err
	}

	return &Renderer{From: from, Subject: subject, html: html, text: text}, nil
}

// Confirmation renders the confirmation email for to.
func (r *Renderer) Confirmation(to string, data ConfirmationData) (mailx.Message, error) {
	if data.AppName == "" {
		data.AppName = "Famous Trivia"
	}

	var html, text bytes.Buffer
	if err := r.html.Execute(&html, data); err != nil {
		return mailx.Message{}, err
	}
	if err := r.text.Execute(&text, data); err != nil {
		return mailx.Message{}, err
	}

	return mailx.Message{
		To:      to,
		From:    r.From,
		Subject: r.Subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
