package devapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type createJourneyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type createCheckpointRequest struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Note string  `json:"note"`
}

func (s *Server) handleListJourneys(w http.ResponseWriter, r *http.Request) {
	journeys := s.store.listJourneys(requestUserID(r))
	s.writeData(w, http.StatusOK, toJourneyViews(journeys), "")
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	journeys := s.store.listPublicJourneys(page, limit)
	s.writeData(w, http.StatusOK, toJourneyViews(journeys), "")
}

func (s *Server) handleCreateJourney(w http.ResponseWriter, r *http.Request) {
	var req createJourneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		s.writeError(w, http.StatusBadRequest, "title cannot be empty")
		return
	}

	j := s.store.createJourney(requestUserID(r), req.Title, req.Description, req.IsPublic)
	s.logger.Info().Str("journey_id", j.ID).Str("user_id", j.OwnerID).Msg("journey created")
	s.writeData(w, http.StatusCreated, toJourneyView(j), "Journey created successfully")
}

func (s *Server) handleDeleteJourney(w http.ResponseWriter, r *http.Request) {
	err := s.store.deleteJourney(requestUserID(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeJourneyError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, nil, "Journey deleted")
}

func (s *Server) handleCreateCheckpoint(w http.ResponseWriter, r *http.Request) {
	var req createCheckpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cp, err := s.store.addCheckpoint(requestUserID(r), mux.Vars(r)["id"], req.Lat, req.Lng, req.Note)
	if err != nil {
		s.writeJourneyError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, toCheckpointView(cp), "Checkpoint created successfully")
}

func (s *Server) handleDeleteCheckpoint(w http.ResponseWriter, r *http.Request) {
	err := s.store.deleteCheckpoint(requestUserID(r), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, errCPNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeJourneyError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, nil, "Checkpoint deleted")
}

func (s *Server) writeJourneyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errJourneyNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errNotOwner):
		s.writeError(w, http.StatusForbidden, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, "unexpected error")
	}
}
