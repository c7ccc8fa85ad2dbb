package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/interfaces"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
	"github.com/calcbuilder/adminstack/internal/tracing"
)

// MaxUploadBytes bounds what is read from a multipart upload. Per type limits are enforced by the asset service.
const MaxUploadBytes = 10 << 20

type AssetHandler struct {
	assets interfaces.AssetService
}

func NewAssetHandler(assets interfaces.AssetService) *AssetHandler {
	return &AssetHandler{
		assets: assets,
	}
}

// Upload expects a multipart form with a "file" part and a "type" field
func (h *AssetHandler) Upload() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "AssetHandler.Upload")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondServiceError(c, span, apperrors.NewFieldError("file", "file is required"))
			return
		}
		span.LogFields(tracingLog.String("file.name", fileHeader.Filename), tracingLog.Int64("file.size", fileHeader.Size))

		file, err := fileHeader.Open()
		if err != nil {
			respondBadRequest(c, span, err, "Unable to read uploaded file")
			return
		}
		defer file.Close()

		// one byte over the limit is enough for the service to reject oversized files
		data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
		if err != nil {
			respondBadRequest(c, span, errors.Wrap(err, "reading upload"), "Unable to read uploaded file")
			return
		}

		asset, err := h.assets.Upload(ctx, c.Param("companyId"), dto.UploadAssetRequest{
			AssetType: c.PostForm("type"),
			FileName:  fileHeader.Filename,
			Data:      data,
		})
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondCreated(c, asset)
	}
}

// List returns the company assets, optionally filtered with ?type=
func (h *AssetHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "AssetHandler.List")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		assets, err := h.assets.List(ctx, c.Param("companyId"), c.Query("type"))
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, assets)
	}
}

func (h *AssetHandler) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "AssetHandler.Get")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)
		tracing.TagEntity(span, c.Param("assetId"))

		asset, err := h.assets.Get(ctx, c.Param("companyId"), c.Param("assetId"))
		if err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, asset)
	}
}

func (h *AssetHandler) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "AssetHandler.Delete")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		assetId := c.Param("assetId")
		tracing.TagEntity(span, assetId)

		if err := h.assets.Delete(ctx, c.Param("companyId"), assetId); err != nil {
			respondServiceError(c, span, err)
			return
		}
		respondOK(c, gin.H{"id": assetId})
	}
}
