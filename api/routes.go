package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/calcbuilder/adminstack/api/handlers"
	"github.com/calcbuilder/adminstack/api/middleware"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/services"
)

const AppSource = "adminstack"

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, apiKey string) {
	if s == nil {
		panic("Services cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))
	r.MaxMultipartMemory = handlers.MaxUploadBytes

	apiHandlers := handlers.InitHandlers(s)

	r.GET("/health", handlers.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  middleware.APIKeyHeader,
		ValidAPIKey: apiKey,
	}))
	api.Use(middleware.UserMiddleware())
	api.Use(middleware.CustomContextMiddleware(AppSource))
	api.Use(middleware.TracingMiddleware())
	{
		companies := api.Group("/companies")
		{
			companies.POST("", apiHandlers.Companies.Create())
			companies.GET("", apiHandlers.Companies.Search())
			companies.GET("/search", apiHandlers.Companies.Search())
			companies.GET("/:companyId", apiHandlers.Companies.Get())
			companies.PUT("/:companyId", apiHandlers.Companies.Update())
			companies.DELETE("/:companyId", apiHandlers.Companies.Delete())
			companies.PUT("/:companyId/branding", apiHandlers.Companies.UpdateBranding())

			domains := companies.Group("/:companyId/domains")
			{
				domains.POST("", apiHandlers.Domains.RequestVerification())
				domains.GET("", apiHandlers.Domains.GetDomainStatus())
				domains.PUT("", apiHandlers.Domains.UpdateDomain())
				domains.POST("/verify", apiHandlers.Domains.CheckVerification())
			}

			team := companies.Group("/:companyId/team")
			{
				team.GET("/members", apiHandlers.Team.ListMembers())
				team.POST("/members", apiHandlers.Team.AddMember())
				team.PUT("/members/:memberId", apiHandlers.Team.UpdateMember())
				team.DELETE("/members/:memberId", apiHandlers.Team.RemoveMember())

				team.GET("/roles", apiHandlers.Team.ListRoles())
				team.POST("/roles", apiHandlers.Team.CreateRole())
				team.PUT("/roles/:roleId", apiHandlers.Team.UpdateRole())
				team.DELETE("/roles/:roleId", apiHandlers.Team.DeleteRole())

				team.GET("/invitations", apiHandlers.Team.ListInvitations())
				team.POST("/invitations", apiHandlers.Team.CreateInvitation())
				team.DELETE("/invitations/:invitationId", apiHandlers.Team.RevokeInvitation())
			}

			assets := companies.Group("/:companyId/assets")
			{
				assets.GET("", apiHandlers.Assets.List())
				assets.POST("", apiHandlers.Assets.Upload())
				assets.GET("/:assetId", apiHandlers.Assets.Get())
				assets.DELETE("/:assetId", apiHandlers.Assets.Delete())
			}
		}

		api.POST("/invitations/:token/accept", apiHandlers.Team.AcceptInvitation())

		emails := api.Group("/emails")
		{
			emails.POST("/preview", apiHandlers.Emails.Preview())
			emails.POST("/send", apiHandlers.Emails.Send())
		}
	}
}
