package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/idoblueprint/guestlist/internal/guestimport"
	"github.com/idoblueprint/guestlist/internal/model"
)

// handleListGuests returns every guest for the request's couple, optionally
// filtered by RSVP status via ?status=.
func (s *Server) handleListGuests(w http.ResponseWriter, r *http.Request) {
	coupleID, ok := s.coupleID(r)
	if !ok {
		s.badRequest(w, r, "malformed "+coupleIDHeader+" header")
		return
	}
	if coupleID == uuid.Nil {
		s.respondError(w, r, guestimport.ErrTenantMissing)
		return
	}

	guests, err := s.guests.Guests(r.Context(), coupleID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if status := r.URL.Query().Get("status"); status != "" {
		want := model.ParseRSVPStatus(status)
		filtered := guests[:0]
		for _, g := range guests {
			if g.RSVPStatus == want {
				filtered = append(filtered, g)
			}
		}
		guests = filtered
	}
	if r.URL.Query().Get("weddingParty") == "true" {
		filtered := guests[:0]
		for _, g := range guests {
			if g.IsWeddingParty {
				filtered = append(filtered, g)
			}
		}
		guests = filtered
	}

	if guests == nil {
		guests = []model.Guest{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"guests": guests,
		"total":  len(guests),
	})
}

// handleCreateGuest adds a single guest. First and last name are required;
// identity, timestamps, and defaults are assigned server-side.
func (s *Server) handleCreateGuest(w http.ResponseWriter, r *http.Request) {
	coupleID, ok := s.coupleID(r)
	if !ok {
		s.badRequest(w, r, "malformed "+coupleIDHeader+" header")
		return
	}
	if coupleID == uuid.Nil {
		s.respondError(w, r, guestimport.ErrTenantMissing)
		return
	}

	var g model.Guest
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		s.badRequest(w, r, "invalid JSON body")
		return
	}
	g.FirstName = strings.TrimSpace(g.FirstName)
	g.LastName = strings.TrimSpace(g.LastName)
	if g.FirstName == "" || g.LastName == "" {
		s.badRequest(w, r, "firstName and lastName are required")
		return
	}

	now := time.Now().UTC()
	g.ID = uuid.New()
	g.CoupleID = coupleID
	g.CreatedAt = now
	g.UpdatedAt = now
	if g.RSVPStatus == "" {
		g.RSVPStatus = model.RSVPPending
	}
	if g.Country == "" {
		g.Country = model.DefaultCountry
	}

	if err := s.guests.AddGuest(r.Context(), g); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// handleGetGuest returns one guest by id.
func (s *Server) handleGetGuest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "guestID"))
	if err != nil {
		s.badRequest(w, r, "malformed guest id")
		return
	}

	g, err := s.guests.GetGuest(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleUpdateGuest replaces a guest's editable fields. Identity, couple,
// and creation time are preserved from the stored record.
func (s *Server) handleUpdateGuest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "guestID"))
	if err != nil {
		s.badRequest(w, r, "malformed guest id")
		return
	}

	existing, err := s.guests.GetGuest(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var g model.Guest
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		s.badRequest(w, r, "invalid JSON body")
		return
	}
	g.FirstName = strings.TrimSpace(g.FirstName)
	g.LastName = strings.TrimSpace(g.LastName)
	if g.FirstName == "" || g.LastName == "" {
		s.badRequest(w, r, "firstName and lastName are required")
		return
	}

	g.ID = existing.ID
	g.CoupleID = existing.CoupleID
	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = time.Now().UTC()
	if g.RSVPStatus == "" {
		g.RSVPStatus = existing.RSVPStatus
	}

	if err := s.guests.UpdateGuest(r.Context(), g); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleDeleteGuest removes one guest by id.
func (s *Server) handleDeleteGuest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "guestID"))
	if err != nil {
		s.badRequest(w, r, "malformed guest id")
		return
	}

	if err := s.guests.DeleteGuest(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GuestStats summarizes a couple's list for the dashboard.
type GuestStats struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"byStatus"`
	ByInvitedBy map[string]int `json:"byInvitedBy"`
	Attending   int            `json:"attending"`
	PlusOnes    int            `json:"plusOnes"`
	Party       int            `json:"weddingParty"`
	WithEmail   int            `json:"withEmail"`
}

// handleGuestStats returns aggregate counts over the couple's guests.
func (s *Server) handleGuestStats(w http.ResponseWriter, r *http.Request) {
	coupleID, ok := s.coupleID(r)
	if !ok {
		s.badRequest(w, r, "malformed "+coupleIDHeader+" header")
		return
	}
	if coupleID == uuid.Nil {
		s.respondError(w, r, guestimport.ErrTenantMissing)
		return
	}

	guests, err := s.guests.Guests(r.Context(), coupleID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	stats := GuestStats{
		ByStatus:    make(map[string]int),
		ByInvitedBy: make(map[string]int),
	}
	for _, g := range guests {
		stats.Total++
		stats.ByStatus[string(g.RSVPStatus)]++
		if g.InvitedBy != nil {
			stats.ByInvitedBy[string(*g.InvitedBy)]++
		}
		if g.RSVPStatus == model.RSVPAttending {
			stats.Attending++
			if g.PlusOneAttending {
				stats.PlusOnes++
			}
		}
		if g.IsWeddingParty {
			stats.Party++
		}
		if g.EmailKey() != "" {
			stats.WithEmail++
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleExportGuests downloads the couple's list as CSV with the canonical
// column set, re-importable as-is.
func (s *Server) handleExportGuests(w http.ResponseWriter, r *http.Request) {
	coupleID, ok := s.coupleID(r)
	if !ok {
		s.badRequest(w, r, "malformed "+coupleIDHeader+" header")
		return
	}
	if coupleID == uuid.Nil {
		s.respondError(w, r, guestimport.ErrTenantMissing)
		return
	}

	guests, err := s.guests.Guests(r.Context(), coupleID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data, err := guestimport.ExportCSV(guests)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("guests_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	w.Write(data)
}
