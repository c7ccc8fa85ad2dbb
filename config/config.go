package config

import (
	"time"

	"github.com/calcbuilder/adminstack/internal/enum"
)

type AppConfig struct {
	APIPort           string `env:"PORT,required" envDefault:"12222"`
	APIKey            string `env:"API_KEY,required"`
	RabbitMQURL       string `env:"RABBITMQ_URL"`
	CanonicalHostname string `env:"PLATFORM_CANONICAL_HOSTNAME" envDefault:"calcbuilder.com"`
	PublicAppUrl      string `env:"PUBLIC_APP_URL" envDefault:"https://app.calcbuilder.com"`
	PodName           string `env:"POD_NAME"`
	PodNamespace      string `env:"POD_NAMESPACE" envDefault:"default"`
}

type DomainConfig struct {
	DNSTimeout           time.Duration `env:"DNS_TIMEOUT" envDefault:"5s"`
	DNSNameservers       []string      `env:"DNS_NAMESERVERS" envSeparator:","`
	HTTPChallengeTimeout time.Duration `env:"DOMAIN_HTTP_CHALLENGE_TIMEOUT" envDefault:"10s"`
	VerificationTTL      time.Duration `env:"DOMAIN_VERIFICATION_TTL" envDefault:"168h"`
}

type DatabaseConfig struct {
	Host            string `env:"POSTGRES_HOST,required"`
	Port            string `env:"POSTGRES_PORT,required"`
	User            string `env:"POSTGRES_USER,required"`
	DBName          string `env:"POSTGRES_DB_NAME,required"`
	Password        string `env:"POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"POSTGRES_SSL_MODE" envDefault:"require"`
}

type R2StorageConfig struct {
	AccountID       string `env:"CLOUDFLARE_R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"CLOUDFLARE_R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"CLOUDFLARE_R2_ACCESS_KEY_SECRET"`
	AssetsBucket    string `env:"BUCKET_NAME_COMPANY_ASSETS" envDefault:"company-assets"`
	PublicBaseUrl   string `env:"COMPANY_ASSETS_PUBLIC_URL"`
}

// S3StorageConfig is used instead of R2 when STORAGE_PROVIDER=s3.
type S3StorageConfig struct {
	Provider string `env:"STORAGE_PROVIDER" envDefault:"r2"`
	Region   string `env:"AWS_REGION" envDefault:"eu-north-1"`
}

type SmtpConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
}

type EmailConfig struct {
	FromAddress     string        `env:"EMAIL_FROM_ADDRESS" envDefault:"no-reply@calcbuilder.com"`
	FromName        string        `env:"EMAIL_FROM_NAME" envDefault:"CalcBuilder Pro"`
	DefaultLanguage enum.Language `env:"EMAIL_DEFAULT_LANGUAGE" envDefault:"fi"`
	InvitationTTL   time.Duration `env:"TEAM_INVITATION_TTL" envDefault:"168h"`
}
