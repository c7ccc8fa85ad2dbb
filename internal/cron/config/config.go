package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Expire stale domain verifications, every 15 minutes
	CronScheduleExpireVerifications string `env:"CRON_SCHEDULE_EXPIRE_VERIFICATIONS" envDefault:"0 */15 * * * *"`
	// Expire stale team invitations, hourly
	CronScheduleExpireInvitations string `env:"CRON_SCHEDULE_EXPIRE_INVITATIONS" envDefault:"0 30 * * * *"`
}
