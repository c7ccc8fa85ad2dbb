package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jhillyerd/enmime"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/internal/validation"
)

var (
	ErrSmtpNotConfigured = errors.New("smtp is not configured")
	ErrEmptySubject      = errors.New("empty subject")
	ErrEmptyEmailBody    = errors.New("empty email body")
)

type emailService struct {
	emailConfig *config.EmailConfig
	sender      enmime.Sender
	renderer    interfaces.TemplateRenderer
	log         logger.Logger
}

// NewEmailService sends over the configured SMTP relay. Without SMTP_HOST every send fails with
// ErrSmtpNotConfigured, which callers only log.
func NewEmailService(cfg *config.Config, renderer interfaces.TemplateRenderer, log logger.Logger) interfaces.EmailService {
	var sender enmime.Sender
	if cfg.SmtpConfig.Host != "" {
		addr := fmt.Sprintf("%s:%d", cfg.SmtpConfig.Host, cfg.SmtpConfig.Port)
		var auth smtp.Auth
		if cfg.SmtpConfig.Username != "" {
			auth = smtp.PlainAuth("", cfg.SmtpConfig.Username, cfg.SmtpConfig.Password, cfg.SmtpConfig.Host)
		}
		sender = enmime.NewSMTP(addr, auth)
	}
	return newEmailService(cfg.EmailConfig, sender, renderer, log)
}

func newEmailService(emailConfig *config.EmailConfig, sender enmime.Sender, renderer interfaces.TemplateRenderer, log logger.Logger) *emailService {
	return &emailService{
		emailConfig: emailConfig,
		sender:      sender,
		renderer:    renderer,
		log:         log,
	}
}

func (s *emailService) Send(ctx context.Context, message dto.EmailMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailService.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagComponentExternal(span)
	span.LogKV("request.subject", message.Subject)

	if s.sender == nil {
		tracing.TraceErr(span, ErrSmtpNotConfigured)
		return ErrSmtpNotConfigured
	}

	to, err := validation.NormalizeEmail("to", message.To)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if message.Subject == "" {
		return ErrEmptySubject
	}
	if message.HTML == "" && message.Text == "" {
		return ErrEmptyEmailBody
	}

	builder := enmime.Builder().
		From(s.emailConfig.FromName, s.emailConfig.FromAddress).
		To(message.ToName, to).
		Subject(message.Subject)
	if message.Text != "" {
		builder = builder.Text([]byte(message.Text))
	}
	if message.HTML != "" {
		builder = builder.HTML([]byte(message.HTML))
	}

	err = builder.Send(s.sender)
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "failed to send email"))
		return errors.Wrap(err, "failed to send email")
	}

	span.LogKV("result.sent", true)
	return nil
}

func (s *emailService) SendTemplate(ctx context.Context, to string, template enum.EmailTemplate, language enum.Language, params map[string]string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailService.SendTemplate")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("request.template", template.String(), "request.language", language.String())

	if language == "" {
		language = s.emailConfig.DefaultLanguage
	}

	rendered, err := s.renderer.Render(template, language, params)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	return s.Send(ctx, dto.EmailMessage{
		To:      to,
		ToName:  params["Name"],
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	})
}
