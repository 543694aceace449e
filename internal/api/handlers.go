package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alexanderramin/rapport/internal/domain"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	levels := s.catalog.Levels.Levels()
	out := make([]levelDTO, 0, len(levels))
	for _, l := range levels {
		out = append(out, toLevelDTO(l))
	}
	respondJSON(w, http.StatusOK, out)
}

// handleListPaths lists catalog paths, optionally filtered by ?tier=N.
func (s *Server) handleListPaths(w http.ResponseWriter, r *http.Request) {
	var tiers []int
	if raw := r.URL.Query().Get("tier"); raw != "" {
		tier, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, apiError{Code: "invalid_request", Message: "tier must be an integer"})
			return
		}
		tiers = []int{tier}
	} else {
		for _, l := range s.catalog.Levels.Levels() {
			tiers = append(tiers, l.Level)
		}
	}

	out := []pathDTO{}
	for _, tier := range tiers {
		for _, p := range s.catalog.Paths.ForTier(tier) {
			out = append(out, toPathDTO(p))
		}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleListRelationships(w http.ResponseWriter, r *http.Request) {
	rels, err := s.services.Progression.ListRelationships(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	out := make([]relationshipDTO, 0, len(rels))
	for _, rel := range rels {
		out = append(out, toRelationshipDTO(rel))
	}
	respondJSON(w, http.StatusOK, out)
}

type enrollRequest struct {
	ContactID string `json:"contact_id"`
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ContactID) == "" {
		respondError(w, http.StatusBadRequest, apiError{Code: "invalid_request", Message: "contact_id is required"})
		return
	}
	rel, err := s.services.Progression.Enroll(r.Context(), strings.TrimSpace(req.ContactID))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toRelationshipDTO(rel))
}

func (s *Server) handleGetRelationship(w http.ResponseWriter, r *http.Request) {
	rel, err := s.services.Progression.GetRelationship(r.Context(), chi.URLParam(r, "contactID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRelationshipDTO(rel))
}

func (s *Server) handleLevelOverview(w http.ResponseWriter, r *http.Request) {
	states, err := s.services.Progression.LevelOverview(r.Context(), chi.URLParam(r, "contactID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	out := make([]levelStateDTO, 0, len(states))
	for _, st := range states {
		out = append(out, toLevelStateDTO(st))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleLevelStatus(w http.ResponseWriter, r *http.Request) {
	level, ok := intParam(w, r, "level")
	if !ok {
		return
	}
	contactID := chi.URLParam(r, "contactID")

	complete, err := s.services.Progression.IsLevelComplete(r.Context(), contactID, level)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	unlocked, err := s.services.Progression.IsLevelUnlocked(r.Context(), contactID, level)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"level":    level,
		"complete": complete,
		"unlocked": unlocked,
	})
}

type switchLevelRequest struct {
	Level int `json:"level"`
}

func (s *Server) handleSwitchLevel(w http.ResponseWriter, r *http.Request) {
	var req switchLevelRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rel, err := s.services.Progression.SwitchLevel(r.Context(), chi.URLParam(r, "contactID"), req.Level)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRelationshipDTO(rel))
}

func (s *Server) handleListPathInstances(w http.ResponseWriter, r *http.Request) {
	insts, err := s.services.Progression.ListPathInstances(r.Context(), chi.URLParam(r, "contactID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	out := make([]pathInstanceDTO, 0, len(insts))
	for _, inst := range insts {
		out = append(out, toPathInstanceDTO(inst))
	}
	respondJSON(w, http.StatusOK, out)
}

type startPathRequest struct {
	PathID string `json:"path_id"`
}

func (s *Server) handleStartPath(w http.ResponseWriter, r *http.Request) {
	var req startPathRequest
	if !decodeBody(w, r, &req) {
		return
	}
	inst, err := s.services.Progression.StartPath(r.Context(), chi.URLParam(r, "contactID"), req.PathID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPathInstanceDTO(inst))
}

func (s *Server) handleCompleteStep(w http.ResponseWriter, r *http.Request) {
	index, ok := intParam(w, r, "index")
	if !ok {
		return
	}
	progress, err := s.services.Progression.CompleteStep(r.Context(), chi.URLParam(r, "contactID"), index)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toStepProgressDTO(progress))
}

func (s *Server) handleEndPath(w http.ResponseWriter, r *http.Request) {
	inst, err := s.services.Progression.EndPath(r.Context(), chi.URLParam(r, "contactID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPathInstanceDTO(inst))
}

func (s *Server) handleSkipPath(w http.ResponseWriter, r *http.Request) {
	inst, err := s.services.Progression.SkipPath(r.Context(), chi.URLParam(r, "contactID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPathInstanceDTO(inst))
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	events, err := s.services.Progression.Timeline(r.Context(), chi.URLParam(r, "contactID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	out := make([]timelineEventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toTimelineEventDTO(e))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleListOutreaches(w http.ResponseWriter, r *http.Request) {
	list, err := s.services.Outreach.List(r.Context(), chi.URLParam(r, "contactID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	now := s.now()
	out := make([]outreachDTO, 0, len(list))
	for _, o := range list {
		out = append(out, toOutreachDTO(o, now))
	}
	respondJSON(w, http.StatusOK, out)
}

type scheduleOutreachRequest struct {
	Title          string    `json:"title"`
	DueDate        time.Time `json:"due_date"`
	PathInstanceID *string   `json:"path_instance_id"`
	StepIndex      *int      `json:"step_index"`
}

func (s *Server) handleScheduleOutreach(w http.ResponseWriter, r *http.Request) {
	var req scheduleOutreachRequest
	if !decodeBody(w, r, &req) {
		return
	}
	o := &domain.Outreach{
		ContactID:      chi.URLParam(r, "contactID"),
		Title:          req.Title,
		DueDate:        req.DueDate,
		PathInstanceID: req.PathInstanceID,
		StepIndex:      req.StepIndex,
	}
	if err := s.services.Outreach.Schedule(r.Context(), o); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOutreachDTO(o, s.now()))
}

func (s *Server) handleCompleteOutreach(w http.ResponseWriter, r *http.Request) {
	o, err := s.services.Outreach.Complete(r.Context(), chi.URLParam(r, "outreachID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOutreachDTO(o, s.now()))
}

func (s *Server) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	list, err := s.services.Interactions.List(r.Context(), chi.URLParam(r, "contactID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	out := make([]interactionDTO, 0, len(list))
	for _, i := range list {
		out = append(out, toInteractionDTO(i))
	}
	respondJSON(w, http.StatusOK, out)
}

type logInteractionRequest struct {
	Date         time.Time `json:"date"`
	Location     string    `json:"location"`
	Topics       []string  `json:"topics"`
	Warmth       int       `json:"warmth"`
	Strengthened bool      `json:"strengthened"`
	Note         string    `json:"note"`
}

func (s *Server) handleLogInteraction(w http.ResponseWriter, r *http.Request) {
	var req logInteractionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	i := &domain.Interaction{
		ContactID:    chi.URLParam(r, "contactID"),
		Date:         req.Date,
		Location:     req.Location,
		Topics:       req.Topics,
		Warmth:       req.Warmth,
		Strengthened: req.Strengthened,
		Note:         req.Note,
	}
	if err := s.services.Interactions.Log(r.Context(), i); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toInteractionDTO(i))
}

func (s *Server) handleDeleteInteraction(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Interactions.Delete(r.Context(), chi.URLParam(r, "interactionID")); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, apiError{Code: "invalid_request", Message: name + " must be an integer"})
		return 0, false
	}
	return v, true
}
