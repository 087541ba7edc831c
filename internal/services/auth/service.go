// internal/services/auth/service.go
package auth

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"askliberia/internal/common/database"
	"askliberia/internal/common/errors"
	"askliberia/internal/common/logger"
	"askliberia/internal/models"
)

// Storage keys, shared wire format with the original web client.
const (
	keyUsers       = "askliberia_users"
	keyCurrentUser = "askliberia_current_user"
)

// freePlanQuota is the monthly request allowance of a fresh account.
const freePlanQuota = 1000

// Service implements the mocked account portal. Passwords are accepted but
// never stored or checked beyond account existence; this mirrors the demo
// behaviour of the product and must not be mistaken for real authentication.
type Service struct {
	config Config
	store  *database.RedisClient
	logger logger.Logger
}

func NewService(cfg Config, store *database.RedisClient, log logger.Logger) *Service {
	if cfg.AvatarBaseURL == "" {
		cfg.AvatarBaseURL = DefaultConfig().AvatarBaseURL
	}
	return &Service{
		config: cfg,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "auth"}),
	}
}

// Users returns every registered account.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.store.GetJSON(ctx, keyUsers, &users); err != nil {
		if err == redis.Nil {
			return []models.User{}, nil
		}
		return nil, errors.NewStoreReadFailedError(keyUsers, err)
	}
	return users, nil
}

// CurrentUser returns the signed-in account, or nil when signed out.
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.store.GetJSON(ctx, keyCurrentUser, &user); err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errors.NewStoreReadFailedError(keyCurrentUser, err)
	}
	return &user, nil
}

func (s *Service) IsAuthenticated(ctx context.Context) bool {
	user, err := s.CurrentUser(ctx)
	return err == nil && user != nil
}

// Login signs in an existing account. The password is accepted as long as
// the email is registered; unknown emails fail with invalid credentials.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	_ = password // demo surface, existence check only

	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if strings.EqualFold(user.Email, email) {
			if err := s.store.SetJSON(ctx, keyCurrentUser, user); err != nil {
				return nil, errors.NewStoreWriteFailedError(keyCurrentUser, err)
			}
			return &user, nil
		}
	}
	return nil, errors.NewInvalidCredentialsError()
}

// Signup registers a new account and signs it in. Email comparison is
// case-insensitive; duplicates are rejected.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	_ = password

	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if strings.EqualFold(user.Email, email) {
			return nil, errors.NewDuplicateAccountError(email)
		}
	}

	user := models.User{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    email,
		JoinedAt: time.Now().UnixMilli(),
		Avatar:   s.avatarURL(name),
		APIPlan:  models.PlanFree,
		APIUsage: models.APIUsage{Limit: freePlanQuota},
	}
	users = append(users, user)

	if err := s.store.SetJSON(ctx, keyUsers, users); err != nil {
		return nil, errors.NewStoreWriteFailedError(keyUsers, err)
	}
	if err := s.store.SetJSON(ctx, keyCurrentUser, user); err != nil {
		return nil, errors.NewStoreWriteFailedError(keyCurrentUser, err)
	}

	s.logger.Info("account created", map[string]interface{}{"userId": user.ID})
	return &user, nil
}

// LoginWithGoogle simulates a federated sign-in by synthesizing a visitor
// account. No provider round-trip happens.
func (s *Service) LoginWithGoogle(ctx context.Context) (*models.User, error) {
	user := models.User{
		ID:       "google_" + uuid.New().String(),
		Name:     "Liberian Visitor",
		Email:    fmt.Sprintf("visitor%d@gmail.com", rand.Intn(1000)),
		JoinedAt: time.Now().UnixMilli(),
		Avatar:   "https://lh3.googleusercontent.com/a/default-user=s96-c",
		APIPlan:  models.PlanFree,
		APIUsage: models.APIUsage{Limit: freePlanQuota},
	}

	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	users = append(users, user)

	if err := s.store.SetJSON(ctx, keyUsers, users); err != nil {
		return nil, errors.NewStoreWriteFailedError(keyUsers, err)
	}
	if err := s.store.SetJSON(ctx, keyCurrentUser, user); err != nil {
		return nil, errors.NewStoreWriteFailedError(keyCurrentUser, err)
	}
	return &user, nil
}

// Logout signs the current account out. Signing out while signed out is a
// no-op.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Del(ctx, keyCurrentUser); err != nil {
		return errors.NewStoreWriteFailedError(keyCurrentUser, err)
	}
	return nil
}

func (s *Service) avatarURL(name string) string {
	return fmt.Sprintf("%s?name=%s&background=002868&color=fff",
		s.config.AvatarBaseURL, url.QueryEscape(name))
}
