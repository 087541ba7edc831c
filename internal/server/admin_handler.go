// internal/server/admin_handler.go
package server

import (
	"net/http"

	"askliberia/internal/common/errors"
	"askliberia/internal/models"
)

type adminLoginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	ok, err := s.admin.Login(r.Context(), req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		s.writeError(w, errors.NewInvalidCredentialsError())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.Logout(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleAdminLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.admin.GetLogs(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.admin.GetStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.admin.GetUsers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleAdminRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.admin.GetAPIRequests(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, requests)
}

// handleSubmitAPIRequest files a developer key request from the public
// portal.
func (s *Server) handleSubmitAPIRequest(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if err := validatePayload(apiRequestSchema, body); err != nil {
		s.writeError(w, err)
		return
	}

	email, _ := body["email"].(string)
	organization, _ := body["organization"].(string)
	plan, _ := body["type"].(string)

	req, err := s.admin.SubmitAPIRequest(r.Context(), email, organization, models.APIPlan(plan))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, req)
}

type decideRequest struct {
	ID     string               `json:"id"`
	Status models.RequestStatus `json:"status"`
}

func (s *Server) handleDecideAPIRequest(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	updated, err := s.admin.UpdateAPIRequestStatus(r.Context(), req.ID, req.Status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

// handleLogDonation records a completed donation from the public flow.
func (s *Server) handleLogDonation(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if err := validatePayload(donationSchema, body); err != nil {
		s.writeError(w, err)
		return
	}

	amount, _ := body["amount"].(string)
	method, _ := body["method"].(string)

	entry, err := s.admin.LogDonation(r.Context(), amount, models.DonationMethod(method))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleAdminDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := s.admin.GetDonations(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, donations)
}

// handleSponsoredList serves the homepage cards; no session required.
func (s *Server) handleSponsoredList(w http.ResponseWriter, r *http.Request) {
	items, err := s.admin.GetSponsoredContent(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddSponsored(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if err := validatePayload(sponsoredSchema, body); err != nil {
		s.writeError(w, err)
		return
	}

	item := models.SponsoredItem{
		Title:       stringField(body, "title"),
		Description: stringField(body, "description"),
		ImageURL:    stringField(body, "imageUrl"),
		Tag:         stringField(body, "tag"),
		LinkURL:     stringField(body, "linkUrl"),
		ButtonText:  stringField(body, "buttonText"),
	}

	added, err := s.admin.AddSponsoredItem(r.Context(), item)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleDeleteSponsored(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.writeError(w, errors.NewValidationFailedError("id is required"))
		return
	}
	if err := s.admin.DeleteSponsoredItem(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func stringField(body map[string]interface{}, key string) string {
	val, _ := body[key].(string)
	return val
}
