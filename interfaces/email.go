package interfaces

import (
	"context"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/enum"
)

type TemplateRenderer interface {
	Render(template enum.EmailTemplate, language enum.Language, params map[string]string) (*dto.RenderedEmail, error)
}

type EmailService interface {
	Send(ctx context.Context, message dto.EmailMessage) error
	SendTemplate(ctx context.Context, to string, template enum.EmailTemplate, language enum.Language, params map[string]string) error
}
