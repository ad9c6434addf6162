package config

import "time"

type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

// Enabled reports whether a broker is configured
func (ec EventsConfig) Enabled() bool {
	return ec.AMQPURL != ""
}

type CatalogConfig struct {
	File string
}

type RecruitConfig struct {
	InvitationDueDays   int
	ResumeSweepInterval time.Duration
}

// InvitationDuePeriod is the time a candidate has to answer an invitation
func (rc RecruitConfig) InvitationDuePeriod() time.Duration {
	return time.Duration(rc.InvitationDueDays) * 24 * time.Hour
}

func loadEventsConfig() EventsConfig {
	return EventsConfig{
		AMQPURL:  getEnv("AMQP_URL", ""),
		Exchange: getEnv("AMQP_EXCHANGE", "peekpa.events"),
	}
}

func loadCatalogConfig() CatalogConfig {
	return CatalogConfig{
		File: getEnv("CATALOG_FILE", "./catalog.yaml"),
	}
}

func loadRecruitConfig() RecruitConfig {
	return RecruitConfig{
		InvitationDueDays:   getEnvInt("INVITATION_DUE_DAYS", 3),
		ResumeSweepInterval: getEnvDuration("RESUME_SWEEP_INTERVAL", time.Hour),
	}
}
