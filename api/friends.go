package api

import (
	"net/http"

	"github.com/rumCAJs/atomicapp/internal/core"
)

type FriendsHandler struct {
	friends *core.FriendService
}

func NewFriendsHandler(friends *core.FriendService) *FriendsHandler {
	return &FriendsHandler{friends: friends}
}

type friendRequestRequest struct {
	ProfileID string `json:"profile_id"`
}

func (h *FriendsHandler) Request(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	var req friendRequestRequest
	if !decodeValid(w, r, "friend_request", &req) {
		return
	}

	res, err := h.friends.Request(r.Context(), pid, req.ProfileID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, res, http.StatusOK)
}

type friendProcessRequest struct {
	ProfileID string `json:"profile_id"`
	Action    string `json:"action"`
}

func (h *FriendsHandler) Process(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	var req friendProcessRequest
	if !decodeValid(w, r, "friend_process", &req) {
		return
	}

	res, err := h.friends.Process(r.Context(), pid, req.ProfileID, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, res, http.StatusOK)
}

func (h *FriendsHandler) List(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	friends, err := h.friends.List(r.Context(), pid, r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, friends, http.StatusOK)
}
