package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rumCAJs/atomicapp/internal/core"
)

type TasksHandler struct {
	tasks *core.TaskService
}

func NewTasksHandler(tasks *core.TaskService) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// taskID parses the numeric task id path variable.
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

type addTaskRequest struct {
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	Reward          int64   `json:"reward"`
	ProjectPublicID string  `json:"project_public_id"`
}

func (h *TasksHandler) Add(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	var req addTaskRequest
	if !decodeValid(w, r, "task_add", &req) {
		return
	}

	task, err := h.tasks.Add(r.Context(), core.AddTaskInput{
		ProjectPublicID: req.ProjectPublicID,
		Name:            req.Name,
		Description:     req.Description,
		Reward:          req.Reward,
		ActorPublicID:   pid,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, task, http.StatusCreated)
}

func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), id, pid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, task, http.StatusOK)
}

type completeTaskResponse struct {
	Balance int64 `json:"balance"`
}

func (h *TasksHandler) Complete(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	balance, err := h.tasks.Complete(r.Context(), id, pid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, completeTaskResponse{Balance: balance}, http.StatusOK)
}

type updateTaskRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Reward      int64   `json:"reward"`
	IsActive    bool    `json:"is_active"`
	Version     int64   `json:"version"`
}

func (h *TasksHandler) Update(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if !decodeValid(w, r, "task_update", &req) {
		return
	}

	task, err := h.tasks.Update(r.Context(), core.UpdateTaskInput{
		TaskID:          id,
		Name:            req.Name,
		Description:     req.Description,
		Reward:          req.Reward,
		IsActive:        req.IsActive,
		ExpectedVersion: req.Version,
		ActorPublicID:   pid,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, task, http.StatusOK)
}

func (h *TasksHandler) Completions(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	completions, err := h.tasks.Completions(r.Context(), id, pid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, completions, http.StatusOK)
}

func (h *TasksHandler) History(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	history, err := h.tasks.History(r.Context(), id, pid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, history, http.StatusOK)
}
