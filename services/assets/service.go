package assets

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/enum"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/internal/utils"
)

const (
	objectNameLength  = 21
	maxFileNameLength = 255
)

type assetService struct {
	log       logger.Logger
	companies repository.CompanyRepository
	assets    repository.CompanyAssetRepository
	storage   interfaces.StorageService
	publisher interfaces.EventPublisher
}

func NewAssetService(log logger.Logger, repos *repository.Repositories, storage interfaces.StorageService, publisher interfaces.EventPublisher) interfaces.AssetService {
	return &assetService{
		log:       log,
		companies: repos.CompanyRepository,
		assets:    repos.CompanyAssetRepository,
		storage:   storage,
		publisher: publisher,
	}
}

// Upload stores the file under companies/<companyId>/<folder>/<random>.<ext> after checking the
// sniffed content type and size against the asset type. A logo upload becomes the company logo.
func (s *assetService) Upload(ctx context.Context, companyId string, request dto.UploadAssetRequest) (*models.CompanyAsset, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AssetService.Upload")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	span.LogFields(
		tracingLog.String("request.assetType", request.AssetType),
		tracingLog.String("request.fileName", request.FileName),
		tracingLog.Int("request.size", len(request.Data)),
	)

	assetType, contentType, err := validateUpload(request)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	company, err := s.getCompany(ctx, companyId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	_, typeSpec, _ := enum.LookupAssetType(assetType.String())
	extension := utils.GetFileExtensionFromContentType(contentType)
	key := fmt.Sprintf("companies/%s/%s/%s.%s", company.ID, typeSpec.Folder, utils.GenerateNanoIDWithPrefix("", objectNameLength), extension)

	if err := s.storage.Upload(ctx, key, request.Data, contentType); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to store asset")
	}

	asset := &models.CompanyAsset{
		CompanyID:   company.ID,
		AssetType:   assetType,
		FileName:    sanitizeFileName(request.FileName, assetType, extension),
		StorageKey:  key,
		ContentType: contentType,
		SizeBytes:   int64(len(request.Data)),
		PublicURL:   s.storage.PublicURL(key),
		UploadedBy:  utils.GetUserIdFromContext(ctx),
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		tracing.TraceErr(span, err)
		if cleanupErr := s.storage.Delete(ctx, key); cleanupErr != nil {
			s.log.Warnf("Failed to remove orphaned object %s: %v", key, cleanupErr)
		}
		return nil, errors.Wrap(err, "failed to save asset")
	}
	tracing.TagEntity(span, asset.ID)

	if assetType == enum.AssetTypeLogo {
		err = s.companies.UpdateFields(ctx, company.ID, map[string]interface{}{"logo_url": asset.PublicURL})
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, errors.Wrap(err, "failed to update company logo")
		}
		s.publisher.PublishNotification(ctx, company.ID, company.ID, enum.COMPANY, &dto.EventCompletedDetails{Update: true})
	}
	s.publisher.PublishNotification(ctx, company.ID, asset.ID, enum.COMPANY_ASSET, &dto.EventCompletedDetails{Create: true})

	return asset, nil
}

func (s *assetService) List(ctx context.Context, companyId string, assetType string) ([]models.CompanyAsset, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AssetService.List")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	span.LogKV("request.assetType", assetType)

	var filter *enum.AssetType
	if assetType != "" {
		t, _, ok := enum.LookupAssetType(assetType)
		if !ok {
			return nil, apperrors.NewFieldError("type", "unknown asset type")
		}
		filter = &t
	}

	if _, err := s.getCompany(ctx, companyId); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	assets, err := s.assets.List(ctx, companyId, filter)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to list assets")
	}
	return assets, nil
}

func (s *assetService) Get(ctx context.Context, companyId, assetId string) (*models.CompanyAsset, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AssetService.Get")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, assetId)

	asset, err := s.assets.GetByID(ctx, companyId, assetId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to get asset")
	}
	if asset == nil {
		return nil, apperrors.ErrAssetNotFound
	}
	return asset, nil
}

// Delete removes the stored object before the row, so a failed object delete leaves the asset listed.
func (s *assetService) Delete(ctx context.Context, companyId, assetId string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AssetService.Delete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, assetId)

	asset, err := s.Get(ctx, companyId, assetId)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	if err := s.storage.Delete(ctx, asset.StorageKey); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to delete stored asset")
	}
	if err := s.assets.Delete(ctx, companyId, assetId); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to delete asset")
	}

	if asset.AssetType == enum.AssetTypeLogo {
		company, err := s.companies.GetByID(ctx, companyId)
		if err == nil && company != nil && utils.GetOrDefault(company.LogoURL, "") == asset.PublicURL {
			if err := s.companies.UpdateFields(ctx, companyId, map[string]interface{}{"logo_url": nil}); err != nil {
				s.log.Errorf("Failed to clear logo of company %s: %v", companyId, err)
			}
		}
	}

	s.publisher.PublishNotification(ctx, companyId, assetId, enum.COMPANY_ASSET, &dto.EventCompletedDetails{Delete: true})
	return nil
}

func (s *assetService) getCompany(ctx context.Context, companyId string) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, companyId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get company")
	}
	if company == nil {
		return nil, apperrors.ErrCompanyNotFound
	}
	return company, nil
}

// validateUpload returns the asset type and the sniffed content type. The declared content type
// of the upload is never trusted.
func validateUpload(request dto.UploadAssetRequest) (enum.AssetType, string, error) {
	assetType, typeSpec, ok := enum.LookupAssetType(strings.ToLower(strings.TrimSpace(request.AssetType)))
	if !ok {
		return "", "", apperrors.NewFieldError("type", "asset type must be one of logo, banner, favicon, document")
	}

	size := int64(len(request.Data))
	if size == 0 {
		return "", "", apperrors.NewFieldError("file", "file is empty")
	}
	if size > typeSpec.MaxSizeBytes {
		return "", "", apperrors.NewFieldError("file", fmt.Sprintf("file exceeds the %d byte limit for %s", typeSpec.MaxSizeBytes, assetType))
	}

	detected := mimetype.Detect(request.Data)
	for _, allowed := range typeSpec.ContentTypes {
		if detected.Is(allowed) {
			return assetType, allowed, nil
		}
	}
	return "", "", apperrors.NewFieldError("file", fmt.Sprintf("content type %s is not allowed for %s", detected.String(), assetType))
}

func sanitizeFileName(name string, assetType enum.AssetType, extension string) string {
	name = strings.TrimSpace(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		name = assetType.String() + "." + extension
	}
	if len(name) > maxFileNameLength {
		name = name[len(name)-maxFileNameLength:]
	}
	return name
}
