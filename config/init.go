package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	cron_config "github.com/calcbuilder/adminstack/internal/cron/config"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/tracing"
)

type Config struct {
	AppConfig       *AppConfig
	Logger          *logger.Config
	Tracing         *tracing.JaegerConfig
	DatabaseConfig  *DatabaseConfig
	DomainConfig    *DomainConfig
	R2StorageConfig *R2StorageConfig
	S3StorageConfig *S3StorageConfig
	SmtpConfig      *SmtpConfig
	EmailConfig     *EmailConfig
	CronConfig      *cron_config.Config
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:       &AppConfig{},
		Logger:          &logger.Config{},
		Tracing:         &tracing.JaegerConfig{},
		DatabaseConfig:  &DatabaseConfig{},
		DomainConfig:    &DomainConfig{},
		R2StorageConfig: &R2StorageConfig{},
		S3StorageConfig: &S3StorageConfig{},
		SmtpConfig:      &SmtpConfig{},
		EmailConfig:     &EmailConfig{},
		CronConfig:      &cron_config.Config{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, err
	}

	if !config.EmailConfig.DefaultLanguage.IsValid() {
		log.Printf("Unsupported EMAIL_DEFAULT_LANGUAGE %q, using fi", config.EmailConfig.DefaultLanguage)
		config.EmailConfig.DefaultLanguage = "fi"
	}

	return config, nil
}
