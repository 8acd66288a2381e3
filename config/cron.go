package config

// CronSchedules maps job names to configured schedules. Jobs missing here keep
// the schedule they were registered with.
func CronSchedules(cfg *Config) map[string]string {
	return map[string]string{
		"exchangerates": cfg.RatesSchedule,
		"refreshtokens": cfg.TokenPurgeSchedule,
	}
}
