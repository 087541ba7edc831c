// internal/services/admin/service.go
package admin

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"askliberia/internal/common/database"
	"askliberia/internal/common/errors"
	"askliberia/internal/common/logger"
	"askliberia/internal/models"
	"askliberia/pkg/registry"
)

// Storage keys. The web client kept these records in browser storage under
// the same names; keeping them stable lets exported data round-trip.
const (
	keyLogs         = "askliberia_logs"
	keyAPIRequests  = "askliberia_api_requests"
	keyDonations    = "askliberia_donations"
	keySponsored    = "askliberia_sponsored"
	keyAdminSession = "askliberia_admin_session"
	keyUsers        = "askliberia_users" // same key the auth service writes
)

// Service implements the admin console: session gate, search analytics,
// developer key review, donation records and the sponsored-content CMS.
type Service struct {
	config Config
	store  *database.RedisClient
	logger logger.Logger
}

func NewService(cfg Config, store *database.RedisClient, log logger.Logger) *Service {
	if cfg.SearchLogCap <= 0 {
		cfg.SearchLogCap = DefaultConfig().SearchLogCap
	}
	if cfg.Password == "" {
		cfg.Password = DefaultConfig().Password
	}
	return &Service{
		config: cfg,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "admin"}),
	}
}

// ==========================
// Session
// ==========================

// Login checks the console password and opens the admin session. Returns
// false without error on a wrong password.
func (s *Service) Login(ctx context.Context, password string) (bool, error) {
	if password != s.config.Password {
		return false, nil
	}
	if err := s.store.Set(ctx, keyAdminSession, "true", 0); err != nil {
		return false, errors.NewStoreWriteFailedError(keyAdminSession, err)
	}
	return true, nil
}

func (s *Service) IsAuthenticated(ctx context.Context) bool {
	val, err := s.store.Get(ctx, keyAdminSession)
	return err == nil && val == "true"
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Del(ctx, keyAdminSession); err != nil {
		return errors.NewStoreWriteFailedError(keyAdminSession, err)
	}
	return nil
}

// ==========================
// Analytics and logs
// ==========================

// LogSearch records one submitted search, newest first, trimmed to the
// configured cap. Logging is best-effort: the caller's search proceeds even
// when this fails.
func (s *Service) LogSearch(ctx context.Context, query, location string, lang models.Language) error {
	logs, err := s.GetLogs(ctx)
	if err != nil {
		return err
	}
	entry := models.SearchLog{
		ID:        uuid.New().String(),
		Query:     query,
		Timestamp: time.Now().UnixMilli(),
		Location:  location,
		Language:  lang,
	}
	logs = append([]models.SearchLog{entry}, logs...)
	if len(logs) > s.config.SearchLogCap {
		logs = logs[:s.config.SearchLogCap]
	}
	if err := s.store.SetJSON(ctx, keyLogs, logs); err != nil {
		return errors.NewStoreWriteFailedError(keyLogs, err)
	}
	return nil
}

func (s *Service) GetLogs(ctx context.Context) ([]models.SearchLog, error) {
	var logs []models.SearchLog
	if err := s.store.GetJSON(ctx, keyLogs, &logs); err != nil {
		if err == redis.Nil {
			return []models.SearchLog{}, nil
		}
		return nil, errors.NewStoreReadFailedError(keyLogs, err)
	}
	return logs, nil
}

// GetUsers reads the account list the auth service maintains.
func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.store.GetJSON(ctx, keyUsers, &users); err != nil {
		if err == redis.Nil {
			return []models.User{}, nil
		}
		return nil, errors.NewStoreReadFailedError(keyUsers, err)
	}
	return users, nil
}

// GetStats aggregates the dashboard counters from the underlying records.
func (s *Service) GetStats(ctx context.Context) (models.Stats, error) {
	logs, err := s.GetLogs(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	requests, err := s.GetAPIRequests(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	donations, err := s.GetDonations(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	users, err := s.GetUsers(ctx)
	if err != nil {
		return models.Stats{}, err
	}

	pending := 0
	for _, req := range requests {
		if req.Status == models.RequestPending {
			pending++
		}
	}

	var revenue float64
	for _, d := range donations {
		revenue += parseAmount(d.Amount)
	}

	return models.Stats{
		TotalSearches:   len(logs),
		ActiveUsers:     len(users),
		PendingRequests: pending,
		TotalRevenue:    revenue,
	}, nil
}

// parseAmount reads a donation amount string leniently: currency symbols and
// whitespace are tolerated, anything unparseable counts as zero.
func parseAmount(amount string) float64 {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(amount), "$"))
	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return val
}

// ==========================
// Developer key requests
// ==========================

// SubmitAPIRequest files a pending developer key request.
func (s *Service) SubmitAPIRequest(ctx context.Context, email, organization string, plan models.APIPlan) (models.APIRequest, error) {
	requests, err := s.GetAPIRequests(ctx)
	if err != nil {
		return models.APIRequest{}, err
	}
	req := models.APIRequest{
		ID:           uuid.New().String(),
		Email:        email,
		Organization: organization,
		Type:         plan,
		Status:       models.RequestPending,
		Timestamp:    time.Now().UnixMilli(),
	}
	requests = append([]models.APIRequest{req}, requests...)
	if err := s.store.SetJSON(ctx, keyAPIRequests, requests); err != nil {
		return models.APIRequest{}, errors.NewStoreWriteFailedError(keyAPIRequests, err)
	}
	return req, nil
}

func (s *Service) GetAPIRequests(ctx context.Context) ([]models.APIRequest, error) {
	var requests []models.APIRequest
	if err := s.store.GetJSON(ctx, keyAPIRequests, &requests); err != nil {
		if err == redis.Nil {
			return []models.APIRequest{}, nil
		}
		return nil, errors.NewStoreReadFailedError(keyAPIRequests, err)
	}
	return requests, nil
}

// UpdateAPIRequestStatus approves or rejects a pending request. Approval
// mints the key; rejection clears any previously minted one.
func (s *Service) UpdateAPIRequestStatus(ctx context.Context, id string, status models.RequestStatus) (models.APIRequest, error) {
	if status != models.RequestApproved && status != models.RequestRejected {
		return models.APIRequest{}, errors.NewValidationFailedError("status must be approved or rejected")
	}
	requests, err := s.GetAPIRequests(ctx)
	if err != nil {
		return models.APIRequest{}, err
	}

	var updated models.APIRequest
	found := false
	for i, req := range requests {
		if req.ID != id {
			continue
		}
		req.Status = status
		if status == models.RequestApproved {
			req.APIKey = mintAPIKey()
		} else {
			req.APIKey = ""
		}
		requests[i] = req
		updated = req
		found = true
		break
	}
	if !found {
		return models.APIRequest{}, errors.NewRecordNotFoundError("api request", id)
	}

	if err := s.store.SetJSON(ctx, keyAPIRequests, requests); err != nil {
		return models.APIRequest{}, errors.NewStoreWriteFailedError(keyAPIRequests, err)
	}
	return updated, nil
}

// mintAPIKey produces a developer key in the ask_lib_ namespace.
func mintAPIKey() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "ask_lib_" + raw[:10]
}

// ==========================
// Donations
// ==========================

// LogDonation records one completed donation newest first.
func (s *Service) LogDonation(ctx context.Context, amount string, method models.DonationMethod) (models.DonationLog, error) {
	donations, err := s.GetDonations(ctx)
	if err != nil {
		return models.DonationLog{}, err
	}
	entry := models.DonationLog{
		ID:        uuid.New().String(),
		Amount:    amount,
		Method:    method,
		Timestamp: time.Now().UnixMilli(),
		Status:    "completed",
	}
	donations = append([]models.DonationLog{entry}, donations...)
	if err := s.store.SetJSON(ctx, keyDonations, donations); err != nil {
		return models.DonationLog{}, errors.NewStoreWriteFailedError(keyDonations, err)
	}
	return entry, nil
}

func (s *Service) GetDonations(ctx context.Context) ([]models.DonationLog, error) {
	var donations []models.DonationLog
	if err := s.store.GetJSON(ctx, keyDonations, &donations); err != nil {
		if err == redis.Nil {
			return []models.DonationLog{}, nil
		}
		return nil, errors.NewStoreReadFailedError(keyDonations, err)
	}
	return donations, nil
}

// ==========================
// Sponsored content CMS
// ==========================

// GetSponsoredContent returns the homepage cards, seeding storage on first
// read so the admin console always has something to edit.
func (s *Service) GetSponsoredContent(ctx context.Context) ([]models.SponsoredItem, error) {
	var items []models.SponsoredItem
	err := s.store.GetJSON(ctx, keySponsored, &items)
	if err == nil {
		return items, nil
	}
	if err != redis.Nil {
		return nil, errors.NewStoreReadFailedError(keySponsored, err)
	}

	seeds, fromFile, seedErr := registry.LoadSeeds(s.config.RegistryPath)
	if seedErr != nil {
		s.logger.Warn("sponsored seed registry unusable, using built-in seeds", map[string]interface{}{
			"path":  s.config.RegistryPath,
			"error": seedErr.Error(),
		})
	}
	if fromFile {
		s.logger.Info("seeded sponsored content from registry", map[string]interface{}{
			"path":  s.config.RegistryPath,
			"items": len(seeds),
		})
	}
	if err := s.store.SetJSON(ctx, keySponsored, seeds); err != nil {
		return nil, errors.NewStoreWriteFailedError(keySponsored, err)
	}
	return seeds, nil
}

// AddSponsoredItem prepends a new card and assigns its id.
func (s *Service) AddSponsoredItem(ctx context.Context, item models.SponsoredItem) (models.SponsoredItem, error) {
	items, err := s.GetSponsoredContent(ctx)
	if err != nil {
		return models.SponsoredItem{}, err
	}
	item.ID = uuid.New().String()
	items = append([]models.SponsoredItem{item}, items...)
	if err := s.store.SetJSON(ctx, keySponsored, items); err != nil {
		return models.SponsoredItem{}, errors.NewStoreWriteFailedError(keySponsored, err)
	}
	return item, nil
}

// DeleteSponsoredItem removes a card by id. Deleting an unknown id is a
// no-op, matching the console's optimistic UI.
func (s *Service) DeleteSponsoredItem(ctx context.Context, id string) error {
	items, err := s.GetSponsoredContent(ctx)
	if err != nil {
		return err
	}
	filtered := items[:0:0]
	for _, item := range items {
		if item.ID != id {
			filtered = append(filtered, item)
		}
	}
	if err := s.store.SetJSON(ctx, keySponsored, filtered); err != nil {
		return errors.NewStoreWriteFailedError(keySponsored, err)
	}
	return nil
}
