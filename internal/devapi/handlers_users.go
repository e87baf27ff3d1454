package devapi

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxAvatarBytes = 5 << 20

type updateMeRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.getUser(requestUserID(r))
	if err != nil {
		s.writeError(w, http.StatusNotFound, errUserNotFound.Error())
		return
	}
	s.writeData(w, http.StatusOK, toUserView(u), "")
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid update data")
		return
	}
	if req.DisplayName == "" {
		s.writeError(w, http.StatusBadRequest, "display name cannot be empty")
		return
	}

	u, err := s.store.updateDisplayName(requestUserID(r), req.DisplayName)
	if err != nil {
		s.writeError(w, http.StatusNotFound, errUserNotFound.Error())
		return
	}
	s.writeData(w, http.StatusOK, toUserView(u), "")
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "Image file is required")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	// The dev server does not persist uploads; it fabricates the public URL
	// the real backend would return after storing the image.
	url := "/static/avatars/" + uuid.NewString() + filepath.Ext(header.Filename)
	u, err := s.store.setProfilePic(requestUserID(r), url)
	if err != nil {
		s.writeError(w, http.StatusNotFound, errUserNotFound.Error())
		return
	}

	s.logger.Debug().Str("user_id", u.ID).Str("url", url).Msg("avatar updated")
	s.writeData(w, http.StatusOK, toUserView(u), "")
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, toUserViews(s.store.listUsers()), "")
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["id"]
	followers, err := s.store.listFollowers(targetID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, errUserNotFound.Error())
		return
	}
	s.writeData(w, http.StatusOK, toUserViews(followers), "")
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["id"]
	if targetID == requestUserID(r) {
		s.writeError(w, http.StatusBadRequest, "cannot follow yourself")
		return
	}
	if err := s.store.follow(requestUserID(r), targetID); err != nil {
		s.writeError(w, http.StatusNotFound, errUserNotFound.Error())
		return
	}
	s.writeData(w, http.StatusOK, nil, "")
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["id"]
	if err := s.store.unfollow(requestUserID(r), targetID); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeData(w, http.StatusOK, nil, "")
}
