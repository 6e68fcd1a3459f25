package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rumCAJs/atomicapp/internal/core"
)

type ProjectsHandler struct {
	projects *core.ProjectService
}

func NewProjectsHandler(projects *core.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects}
}

type createProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	var req createProjectRequest
	if !decodeValid(w, r, "project_create", &req) {
		return
	}

	project, err := h.projects.Create(r.Context(), req.Name, req.Description, pid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, project, http.StatusCreated)
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	projects, err := h.projects.ListForUser(r.Context(), pid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, projects, http.StatusOK)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	showInactive := r.URL.Query().Get("show_inactive") == "true"

	overview, err := h.projects.Overview(r.Context(), mux.Vars(r)["id"], showInactive, pid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, overview, http.StatusOK)
}

type updateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
	Version     int64   `json:"version"`
}

func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	var req updateProjectRequest
	if !decodeValid(w, r, "project_update", &req) {
		return
	}

	project, err := h.projects.Update(r.Context(), core.UpdateProjectInput{
		PublicID:        mux.Vars(r)["id"],
		Name:            req.Name,
		Description:     req.Description,
		IsActive:        req.IsActive,
		ExpectedVersion: req.Version,
		ActorPublicID:   pid,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, project, http.StatusOK)
}

func (h *ProjectsHandler) History(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	history, err := h.projects.History(r.Context(), mux.Vars(r)["id"], pid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, history, http.StatusOK)
}
