package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/tracing"
)

type CompanyHandler struct {
	companies interfaces.CompanyService
}

func NewCompanyHandler(companies interfaces.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		companies: companies,
	}
}

func (h *CompanyHandler) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "CompanyHandler.Create")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.CreateCompanyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid request body")
			return
		}

		company, err := h.companies.Create(ctx, req)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondCreated(c, company)
	}
}

// Search serves both the plain listing and the search endpoint; an empty query lists everything
func (h *CompanyHandler) Search() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "CompanyHandler.Search")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.CompanySearchRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid query parameters")
			return
		}

		result, err := h.companies.Search(ctx, req)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, result)
	}
}

func (h *CompanyHandler) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "CompanyHandler.Get")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		company, err := h.companies.Get(ctx, c.Param("companyId"))
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, company)
	}
}

func (h *CompanyHandler) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "CompanyHandler.Update")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.UpdateCompanyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid request body")
			return
		}

		company, err := h.companies.Update(ctx, c.Param("companyId"), req)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, company)
	}
}

func (h *CompanyHandler) UpdateBranding() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "CompanyHandler.UpdateBranding")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.UpdateBrandingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, span, err, "Invalid request body")
			return
		}

		company, err := h.companies.UpdateBranding(ctx, c.Param("companyId"), req)
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, company)
	}
}

func (h *CompanyHandler) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "CompanyHandler.Delete")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		companyId := c.Param("companyId")
		if err := h.companies.Delete(ctx, companyId); err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, gin.H{"id": companyId})
	}
}
