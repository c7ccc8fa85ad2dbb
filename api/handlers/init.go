package handlers

import "github.com/calcbuilder/adminstack/services"

type APIHandlers struct {
	Domains   *DomainHandler
	Companies *CompanyHandler
	Team      *TeamHandler
	Assets    *AssetHandler
	Emails    *EmailsHandler
}

func InitHandlers(s *services.Services) *APIHandlers {
	return &APIHandlers{
		Domains:   NewDomainHandler(s.DomainVerificationService),
		Companies: NewCompanyHandler(s.CompanyService),
		Team:      NewTeamHandler(s.TeamService),
		Assets:    NewAssetHandler(s.AssetService),
		Emails:    NewEmailsHandler(s.TemplateRenderer, s.EmailService),
	}
}
