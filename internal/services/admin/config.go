// internal/services/admin/config.go
package admin

// Config carries the admin console settings.
type Config struct {
	Password     string // console password, loaded from env in production
	SearchLogCap int    // newest-first log entries retained
	RegistryPath string // optional sponsored seed registry file
}

func DefaultConfig() Config {
	return Config{
		Password:     "admin123",
		SearchLogCap: 100,
	}
}
