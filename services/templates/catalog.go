package templates

import "github.com/calcbuilder/adminstack/internal/enum"

type localizedTemplate struct {
	Subject string
	Body    string
	Footer  string
}

var footers = map[enum.Language]string{
	enum.LanguageFinnish: "Tämä viesti lähetettiin automaattisesti CalcBuilder Pro -palvelusta.",
	enum.LanguageEnglish: "This message was sent automatically by CalcBuilder Pro.",
	enum.LanguageSwedish: "Detta meddelande skickades automatiskt av CalcBuilder Pro.",
}

// catalog bodies are html/template fragments rendered inside the shared layout.
var catalog = map[enum.EmailTemplate]map[enum.Language]localizedTemplate{
	enum.EmailTemplateWelcome: {
		enum.LanguageFinnish: {
			Subject: "Tervetuloa {{.CompanyName}} -tiimiin",
			Body: `<h1>Tervetuloa, {{.Name}}!</h1>
<p>Sinut on lisätty yrityksen <strong>{{.CompanyName}}</strong> tiimiin CalcBuilder Prossa.</p>
<p><a href="{{.LoginURL}}">Kirjaudu sisään</a> aloittaaksesi.</p>`,
		},
		enum.LanguageEnglish: {
			Subject: "Welcome to the {{.CompanyName}} team",
			Body: `<h1>Welcome, {{.Name}}!</h1>
<p>You have been added to the <strong>{{.CompanyName}}</strong> team on CalcBuilder Pro.</p>
<p><a href="{{.LoginURL}}">Sign in</a> to get started.</p>`,
		},
		enum.LanguageSwedish: {
			Subject: "Välkommen till {{.CompanyName}}s team",
			Body: `<h1>Välkommen, {{.Name}}!</h1>
<p>Du har lagts till i teamet för <strong>{{.CompanyName}}</strong> i CalcBuilder Pro.</p>
<p><a href="{{.LoginURL}}">Logga in</a> för att komma igång.</p>`,
		},
	},
	enum.EmailTemplateVerification: {
		enum.LanguageFinnish: {
			Subject: "Vahvista sähköpostiosoitteesi",
			Body: `<h1>Hei {{.Name}},</h1>
<p>Vahvista sähköpostiosoitteesi napsauttamalla alla olevaa linkkiä.</p>
<p><a href="{{.VerificationURL}}">Vahvista sähköposti</a></p>`,
		},
		enum.LanguageEnglish: {
			Subject: "Confirm your email address",
			Body: `<h1>Hi {{.Name}},</h1>
<p>Please confirm your email address by clicking the link below.</p>
<p><a href="{{.VerificationURL}}">Confirm email</a></p>`,
		},
		enum.LanguageSwedish: {
			Subject: "Bekräfta din e-postadress",
			Body: `<h1>Hej {{.Name}},</h1>
<p>Bekräfta din e-postadress genom att klicka på länken nedan.</p>
<p><a href="{{.VerificationURL}}">Bekräfta e-post</a></p>`,
		},
	},
	enum.EmailTemplatePasswordReset: {
		enum.LanguageFinnish: {
			Subject: "Salasanan vaihto",
			Body: `<h1>Hei {{.Name}},</h1>
<p>Saimme pyynnön vaihtaa tilisi salasanan. Linkki on voimassa {{.ExpiresInHours}} tuntia.</p>
<p><a href="{{.ResetURL}}">Vaihda salasana</a></p>
<p>Jos et pyytänyt vaihtoa, voit jättää tämän viestin huomiotta.</p>`,
		},
		enum.LanguageEnglish: {
			Subject: "Reset your password",
			Body: `<h1>Hi {{.Name}},</h1>
<p>We received a request to reset your password. The link is valid for {{.ExpiresInHours}} hours.</p>
<p><a href="{{.ResetURL}}">Reset password</a></p>
<p>If you did not request this, you can ignore this email.</p>`,
		},
		enum.LanguageSwedish: {
			Subject: "Återställ ditt lösenord",
			Body: `<h1>Hej {{.Name}},</h1>
<p>Vi har fått en begäran om att återställa ditt lösenord. Länken är giltig i {{.ExpiresInHours}} timmar.</p>
<p><a href="{{.ResetURL}}">Återställ lösenord</a></p>
<p>Om du inte begärde detta kan du ignorera meddelandet.</p>`,
		},
	},
	enum.EmailTemplateTeamInvitation: {
		enum.LanguageFinnish: {
			Subject: "{{.InviterName}} kutsui sinut yritykseen {{.CompanyName}}",
			Body: `<h1>Sinut on kutsuttu!</h1>
<p>{{.InviterName}} kutsui sinut yrityksen <strong>{{.CompanyName}}</strong> tiimiin roolissa {{.RoleName}}.</p>
<p><a href="{{.InviteURL}}">Hyväksy kutsu</a></p>
<p>Kutsu vanhenee {{.ExpiresAt}}.</p>`,
		},
		enum.LanguageEnglish: {
			Subject: "{{.InviterName}} invited you to {{.CompanyName}}",
			Body: `<h1>You have been invited!</h1>
<p>{{.InviterName}} invited you to join the <strong>{{.CompanyName}}</strong> team as {{.RoleName}}.</p>
<p><a href="{{.InviteURL}}">Accept invitation</a></p>
<p>The invitation expires on {{.ExpiresAt}}.</p>`,
		},
		enum.LanguageSwedish: {
			Subject: "{{.InviterName}} har bjudit in dig till {{.CompanyName}}",
			Body: `<h1>Du har blivit inbjuden!</h1>
<p>{{.InviterName}} har bjudit in dig till teamet för <strong>{{.CompanyName}}</strong> som {{.RoleName}}.</p>
<p><a href="{{.InviteURL}}">Acceptera inbjudan</a></p>
<p>Inbjudan går ut {{.ExpiresAt}}.</p>`,
		},
	},
	enum.EmailTemplateDomainVerified: {
		enum.LanguageFinnish: {
			Subject: "Verkkotunnus {{.Domain}} on vahvistettu",
			Body: `<h1>Verkkotunnus vahvistettu</h1>
<p>Verkkotunnus <strong>{{.Domain}}</strong> on nyt vahvistettu yritykselle {{.CompanyName}}.</p>
<p>Laskurisi ovat käytettävissä osoitteessa <a href="https://{{.Domain}}">https://{{.Domain}}</a>.</p>`,
		},
		enum.LanguageEnglish: {
			Subject: "Domain {{.Domain}} has been verified",
			Body: `<h1>Domain verified</h1>
<p>The domain <strong>{{.Domain}}</strong> is now verified for {{.CompanyName}}.</p>
<p>Your calculators are available at <a href="https://{{.Domain}}">https://{{.Domain}}</a>.</p>`,
		},
		enum.LanguageSwedish: {
			Subject: "Domänen {{.Domain}} har verifierats",
			Body: `<h1>Domänen verifierad</h1>
<p>Domänen <strong>{{.Domain}}</strong> är nu verifierad för {{.CompanyName}}.</p>
<p>Dina kalkylatorer finns på <a href="https://{{.Domain}}">https://{{.Domain}}</a>.</p>`,
		},
	},
}
