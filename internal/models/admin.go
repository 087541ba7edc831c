package models

// RequestStatus is the review state of a developer API key request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// SearchLog records one submitted search for the admin analytics view.
type SearchLog struct {
	ID        string   `json:"id"`
	Query     string   `json:"query"`
	Timestamp int64    `json:"timestamp"`
	Location  string   `json:"location"` // county filter at submission time
	Language  Language `json:"language"`
}

// APIRequest is a developer-portal key request awaiting review.
type APIRequest struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Organization string        `json:"organization,omitempty"`
	Type         APIPlan       `json:"type"`
	Status       RequestStatus `json:"status"`
	Timestamp    int64         `json:"timestamp"`
	APIKey       string        `json:"apiKey,omitempty"`
}

// DonationMethod distinguishes local mobile-money flows from card payments.
type DonationMethod string

const (
	DonationLocal         DonationMethod = "local"
	DonationInternational DonationMethod = "international"
)

// DonationLog records one completed donation.
type DonationLog struct {
	ID        string         `json:"id"`
	Amount    string         `json:"amount"`
	Method    DonationMethod `json:"method"`
	Timestamp int64          `json:"timestamp"`
	Status    string         `json:"status"`
}

// SponsoredItem is one homepage content card managed from the admin console.
type SponsoredItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Tag         string `json:"tag"`
	LinkURL     string `json:"linkUrl,omitempty"`
	ButtonText  string `json:"buttonText,omitempty"`
}

// Stats is the aggregate view shown on the admin dashboard.
type Stats struct {
	TotalSearches   int     `json:"totalSearches"`
	ActiveUsers     int     `json:"activeUsers"`
	PendingRequests int     `json:"pendingRequests"`
	TotalRevenue    float64 `json:"totalRevenue"`
}
