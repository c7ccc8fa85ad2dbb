package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/internal/validation"
	"github.com/calcbuilder/adminstack/services/email"
)

type EmailsHandler struct {
	renderer interfaces.TemplateRenderer
	emails   interfaces.EmailService
}

func NewEmailsHandler(renderer interfaces.TemplateRenderer, emails interfaces.EmailService) *EmailsHandler {
	return &EmailsHandler{
		renderer: renderer,
		emails:   emails,
	}
}

// Preview renders a template without sending it
func (h *EmailsHandler) Preview() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Preview")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.RenderEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid request body")
			return
		}
		span.LogKV("request.template", req.Template, "request.language", req.Language)

		rendered, err := h.renderer.Render(enum.EmailTemplate(req.Template), enum.Language(req.Language), req.Params)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, rendered)
	}
}

// Send renders a template and delivers it to a single recipient
func (h *EmailsHandler) Send() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Send")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.SendEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid request body")
			return
		}
		span.LogKV("request.template", req.Template, "request.language", req.Language)

		to, err := validation.NormalizeEmail("to", req.To)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}

		rendered, err := h.renderer.Render(enum.EmailTemplate(req.Template), enum.Language(req.Language), req.Params)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}

		err = h.emails.Send(ctx, dto.EmailMessage{
			To:      to,
			ToName:  req.ToName,
			Subject: rendered.Subject,
			HTML:    rendered.HTML,
			Text:    rendered.Text,
		})
		if errors.Is(err, email.ErrSmtpNotConfigured) {
			tracing.TraceErr(span, err)
			respondError(c, http.StatusServiceUnavailable, "Email delivery is not configured", nil)
			return
		}
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, gin.H{"sent": true, "to": to, "subject": rendered.Subject})
	}
}
