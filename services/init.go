package services

import (
	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/services/assets"
	"github.com/calcbuilder/adminstack/services/company"
	"github.com/calcbuilder/adminstack/services/domain"
	"github.com/calcbuilder/adminstack/services/email"
	"github.com/calcbuilder/adminstack/services/events"
	"github.com/calcbuilder/adminstack/services/resolver"
	"github.com/calcbuilder/adminstack/services/storage"
	"github.com/calcbuilder/adminstack/services/team"
	"github.com/calcbuilder/adminstack/services/templates"
)

type Services struct {
	EventsService             *events.EventsService
	DNSResolver               interfaces.DNSResolver
	HTTPChallengeVerifier     interfaces.HTTPChallengeVerifier
	TemplateRenderer          interfaces.TemplateRenderer
	EmailService              interfaces.EmailService
	StorageService            interfaces.StorageService
	CompanyService            interfaces.CompanyService
	TeamService               interfaces.TeamService
	AssetService              interfaces.AssetService
	DomainVerificationService interfaces.DomainVerificationService
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	// events
	publisherConfig := events.DefaultPublisherConfig()
	eventsService, err := events.NewEventsService(cfg.AppConfig.RabbitMQURL, log, publisherConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init events")
	}
	publisher := eventsService.Publisher

	// email
	renderer, err := templates.NewRenderer(cfg.EmailConfig.DefaultLanguage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init email templates")
	}
	emailService := email.NewEmailService(cfg, renderer, log)

	// storage
	storageService, err := storage.NewStorageService(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init storage")
	}

	dnsResolver := resolver.NewDNSResolver(cfg.DomainConfig, log)
	httpChallenge := resolver.NewHTTPChallengeVerifier(cfg.DomainConfig, log)

	services := Services{
		EventsService:         eventsService,
		DNSResolver:           dnsResolver,
		HTTPChallengeVerifier: httpChallenge,
		TemplateRenderer:      renderer,
		EmailService:          emailService,
		StorageService:        storageService,
		CompanyService:        company.NewCompanyService(log, repos, publisher),
		TeamService:           team.NewTeamService(cfg, log, repos, publisher, emailService),
		AssetService:          assets.NewAssetService(log, repos, storageService, publisher),
		DomainVerificationService: domain.NewDomainVerificationService(
			cfg, log, repos, dnsResolver, httpChallenge, publisher, emailService,
		),
	}

	return &services, nil
}
