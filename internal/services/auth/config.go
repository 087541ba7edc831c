// internal/services/auth/config.go
package auth

// Config carries the account service settings. Accounts are a mocked portal
// surface: there is no password storage and no real identity provider.
type Config struct {
	AvatarBaseURL string
}

func DefaultConfig() Config {
	return Config{
		AvatarBaseURL: "https://ui-avatars.com/api/",
	}
}
