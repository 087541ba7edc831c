package models

// APIPlan is a developer-portal plan tier.
type APIPlan string

const (
	PlanFree    APIPlan = "free"
	PlanPro     APIPlan = "pro"
	PlanPartner APIPlan = "partner"
)

// APIUsage tracks request consumption against a plan quota.
type APIUsage struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

// User is a mocked portal account. Timestamps are unix milliseconds to stay
// wire-compatible with the web client.
type User struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Avatar    string   `json:"avatar,omitempty"`
	JoinedAt  int64    `json:"joinedAt"`
	APIKey    string   `json:"apiKey,omitempty"`
	APISecret string   `json:"apiSecret,omitempty"`
	APIPlan   APIPlan  `json:"apiPlan"`
	APIUsage  APIUsage `json:"apiUsage"`
}
