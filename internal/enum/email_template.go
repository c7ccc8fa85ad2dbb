package enum

type EmailTemplate string

const (
	EmailTemplateWelcome        EmailTemplate = "welcome"
	EmailTemplateVerification   EmailTemplate = "verification"
	EmailTemplatePasswordReset  EmailTemplate = "password-reset"
	EmailTemplateTeamInvitation EmailTemplate = "team-invitation"
	EmailTemplateDomainVerified EmailTemplate = "domain-verified"
)

func (t EmailTemplate) String() string {
	return string(t)
}

type Language string

const (
	LanguageFinnish Language = "fi"
	LanguageEnglish Language = "en"
	LanguageSwedish Language = "sv"
)

func (l Language) IsValid() bool {
	return l == LanguageFinnish || l == LanguageEnglish || l == LanguageSwedish
}

func (l Language) String() string {
	return string(l)
}
