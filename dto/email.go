package dto

import "github.com/calcbuilder/adminstack/internal/enum"

// RenderedEmail is the output of rendering a template in one language.
type RenderedEmail struct {
	Template enum.EmailTemplate `json:"template"`
	Language enum.Language      `json:"language"`
	Subject  string             `json:"subject"`
	HTML     string             `json:"html"`
	Text     string             `json:"text"`
}

type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

type RenderEmailRequest struct {
	Template string            `json:"template"`
	Language string            `json:"language"`
	Params   map[string]string `json:"params"`
}

type SendEmailRequest struct {
	To       string            `json:"to"`
	ToName   string            `json:"to_name"`
	Template string            `json:"template"`
	Language string            `json:"language"`
	Params   map[string]string `json:"params"`
}
