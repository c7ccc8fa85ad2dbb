package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/tracing"
)

type DomainHandler struct {
	domains interfaces.DomainVerificationService
}

func NewDomainHandler(domains interfaces.DomainVerificationService) *DomainHandler {
	return &DomainHandler{
		domains: domains,
	}
}

// RequestVerification issues a new TXT + CNAME challenge for the company domain
func (h *DomainHandler) RequestVerification() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DomainHandler.RequestVerification")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.DomainVerificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid request body")
			return
		}

		issued, err := h.domains.RequestVerification(ctx, c.Param("companyId"), req)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, issued)
	}
}

func (h *DomainHandler) GetDomainStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DomainHandler.GetDomainStatus")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		status, err := h.domains.GetDomainStatus(ctx, c.Param("companyId"))
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, status)
	}
}

// UpdateDomain updates the domain flags and re-issues the challenge when the domain changed
func (h *DomainHandler) UpdateDomain() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DomainHandler.UpdateDomain")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.DomainVerificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid request body")
			return
		}

		issued, err := h.domains.UpdateDomain(ctx, c.Param("companyId"), req)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, issued)
	}
}

// CheckVerification resolves the published records and records the outcome
func (h *DomainHandler) CheckVerification() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DomainHandler.CheckVerification")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		result, err := h.domains.CheckVerification(ctx, c.Param("companyId"))
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, result)
	}
}
