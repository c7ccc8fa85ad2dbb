package utils

import (
	"context"

	"github.com/gin-gonic/gin"

	apperrors "github.com/calcbuilder/adminstack/internal/errors"
)

type CustomContext struct {
	AppSource string
	CompanyId string
	UserId    string
	UserEmail string
}

type customContextKeyType string

const customContextKey customContextKeyType = "CUSTOM_CONTEXT"

func WithCustomContext(ctx context.Context, customContext *CustomContext) context.Context {
	return context.WithValue(ctx, customContextKey, customContext)
}

func WithCustomContextFromGinRequest(c *gin.Context, appSource string) context.Context {
	customContext := &CustomContext{
		AppSource: appSource,
		CompanyId: c.Param("companyId"),
		UserId:    c.GetString("UserId"),
		UserEmail: c.GetString("UserEmail"),
	}
	return WithCustomContext(c.Request.Context(), customContext)
}

func GetContext(ctx context.Context) *CustomContext {
	customContext, ok := ctx.Value(customContextKey).(*CustomContext)
	if !ok {
		return new(CustomContext)
	}
	return customContext
}

func GetAppSourceFromContext(ctx context.Context) string {
	return GetContext(ctx).AppSource
}

func GetCompanyIdFromContext(ctx context.Context) string {
	return GetContext(ctx).CompanyId
}

func GetUserIdFromContext(ctx context.Context) string {
	return GetContext(ctx).UserId
}

func GetUserEmailFromContext(ctx context.Context) string {
	return GetContext(ctx).UserEmail
}

func SetCompanyIdInContext(ctx context.Context, companyId string) context.Context {
	customContext := *GetContext(ctx)
	customContext.CompanyId = companyId
	return WithCustomContext(ctx, &customContext)
}

func SetUserIdInContext(ctx context.Context, userId string) context.Context {
	customContext := *GetContext(ctx)
	customContext.UserId = userId
	return WithCustomContext(ctx, &customContext)
}

func ValidateCompany(ctx context.Context) error {
	if GetCompanyIdFromContext(ctx) == "" {
		return apperrors.ErrCompanyMissing
	}
	return nil
}
