package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"createform/internal/model"
	"createform/internal/service"
	"createform/internal/transport/rest/middleware"
)

// WorkspaceHandler handles workspace endpoints
type WorkspaceHandler struct {
	workspaceSvc *service.WorkspaceService
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaceSvc *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceSvc: workspaceSvc}
}

// List handles GET /v1/workspaces
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.workspaceSvc.List(r.Context(), middleware.GetOwnerID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"workspaces": workspaces})
}

// Create handles POST /v1/workspaces
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.WorkspaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ws, err := h.workspaceSvc.Create(r.Context(), middleware.GetOwnerID(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

// Rename handles PUT /v1/workspaces/{workspaceId}
func (h *WorkspaceHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req model.WorkspaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ws, err := h.workspaceSvc.Rename(r.Context(), middleware.GetOwnerID(r.Context()), mux.Vars(r)["workspaceId"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

// Delete handles DELETE /v1/workspaces/{workspaceId}
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.workspaceSvc.Delete(r.Context(), middleware.GetOwnerID(r.Context()), mux.Vars(r)["workspaceId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
