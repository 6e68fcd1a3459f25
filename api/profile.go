package api

import (
	"net/http"

	"github.com/rumCAJs/atomicapp/internal/core"
)

type ProfileHandler struct {
	profiles *core.ProfileService
}

func NewProfileHandler(profiles *core.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	profile, err := h.profiles.GetByPublicID(r.Context(), pid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, profile, http.StatusOK)
}

type updateProfileRequest struct {
	Nick string `json:"nick"`
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	var req updateProfileRequest
	if !decodeValid(w, r, "profile_update", &req) {
		return
	}

	profile, err := h.profiles.ChangeInfo(r.Context(), pid, req.Nick)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, profile, http.StatusOK)
}
