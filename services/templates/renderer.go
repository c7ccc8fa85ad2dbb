package templates

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/jaytaylor/html2text"
	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/enum"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
)

const layout = `<!DOCTYPE html>
<html lang="{{.Language}}">
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
{{.Body}}
<hr>
<p style="font-size: 12px; color: #6b7280;">{{.Footer}}</p>
</body>
</html>`

type compiledTemplate struct {
	subject *texttemplate.Template
	body    *htmltemplate.Template
	footer  string
}

type layoutData struct {
	Language enum.Language
	Subject  string
	Body     htmltemplate.HTML
	Footer   string
}

type renderer struct {
	defaultLanguage enum.Language
	layout          *htmltemplate.Template
	templates       map[enum.EmailTemplate]map[enum.Language]compiledTemplate
}

// NewRenderer parses the built-in catalog once. Languages without a translation
// fall back to defaultLanguage.
func NewRenderer(defaultLanguage enum.Language) (interfaces.TemplateRenderer, error) {
	if !defaultLanguage.IsValid() {
		defaultLanguage = enum.LanguageFinnish
	}

	r := &renderer{
		defaultLanguage: defaultLanguage,
		layout:          htmltemplate.Must(htmltemplate.New("layout").Parse(layout)),
		templates:       make(map[enum.EmailTemplate]map[enum.Language]compiledTemplate, len(catalog)),
	}

	for id, translations := range catalog {
		r.templates[id] = make(map[enum.Language]compiledTemplate, len(translations))
		for language, t := range translations {
			name := id.String() + "." + language.String()
			subject, err := texttemplate.New(name).Option("missingkey=zero").Parse(t.Subject)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to parse subject of %s", name)
			}
			body, err := htmltemplate.New(name).Option("missingkey=zero").Parse(t.Body)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to parse body of %s", name)
			}
			footer := t.Footer
			if footer == "" {
				footer = footers[language]
			}
			r.templates[id][language] = compiledTemplate{subject: subject, body: body, footer: footer}
		}
	}

	return r, nil
}

func (r *renderer) Render(template enum.EmailTemplate, language enum.Language, params map[string]string) (*dto.RenderedEmail, error) {
	translations, ok := r.templates[template]
	if !ok {
		return nil, apperrors.ErrUnknownTemplate
	}
	compiled, ok := translations[language]
	if !ok {
		language = r.defaultLanguage
		compiled = translations[language]
	}
	if params == nil {
		params = map[string]string{}
	}

	var subject bytes.Buffer
	if err := compiled.subject.Execute(&subject, params); err != nil {
		return nil, errors.Wrap(err, "failed to render subject")
	}

	var body bytes.Buffer
	if err := compiled.body.Execute(&body, params); err != nil {
		return nil, errors.Wrap(err, "failed to render body")
	}

	var html bytes.Buffer
	err := r.layout.Execute(&html, layoutData{
		Language: language,
		Subject:  strings.TrimSpace(subject.String()),
		Body:     htmltemplate.HTML(body.String()),
		Footer:   compiled.footer,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render layout")
	}

	text, err := html2text.FromString(html.String(), html2text.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert html to text")
	}

	return &dto.RenderedEmail{
		Template: template,
		Language: language,
		Subject:  strings.TrimSpace(subject.String()),
		HTML:     html.String(),
		Text:     text,
	}, nil
}
