package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"buildlink-backend/services"
)

type ProjectHandler struct {
	svc *services.ProjectService
}

func NewProjectHandler(s *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: s}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, "Method not allowed", "Use GET method", http.StatusMethodNotAllowed)
		return
	}
	projects, err := h.svc.List()
	if err != nil {
		respondWithError(w, "Internal error", "Failed to list projects", http.StatusInternalServerError)
		return
	}
	respondWithSuccess(w, projects)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, "Method not allowed", "Use POST method", http.StatusMethodNotAllowed)
		return
	}

	var req services.ProjectInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, "Invalid JSON", "Bad request format", http.StatusBadRequest)
		return
	}

	project, err := h.svc.Create(callerID(r), req)
	if err != nil {
		respondWithServiceError(w, "Project creation failed", err)
		return
	}
	respondWithSuccess(w, project)
}

func (h *ProjectHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, "Method not allowed", "Use GET method", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	projects, err := h.svc.Search(q.Get("title"), q.Get("buildingType"), q.Get("status"))
	if err != nil {
		respondWithServiceError(w, "Search failed", err)
		return
	}
	respondWithSuccess(w, projects)
}

// Detail is the method-dispatched /api/projects/detail endpoint:
// GET fetches, PUT updates (owner), DELETE removes (owner). ?id=<projectId>
func (h *ProjectHandler) Detail(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || projectID <= 0 {
		respondWithError(w, "Invalid parameter", "id query parameter is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		project, err := h.svc.Get(projectID)
		if err != nil {
			respondWithServiceError(w, "Lookup failed", err)
			return
		}
		respondWithSuccess(w, project)

	case http.MethodPut:
		var upd services.ProjectUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			respondWithError(w, "Invalid JSON", "Bad request format", http.StatusBadRequest)
			return
		}
		project, err := h.svc.Update(projectID, callerID(r), upd)
		if err != nil {
			respondWithServiceError(w, "Update failed", err)
			return
		}
		respondWithSuccess(w, project)

	case http.MethodDelete:
		if err := h.svc.Delete(projectID, callerID(r)); err != nil {
			respondWithServiceError(w, "Delete failed", err)
			return
		}
		respondWithSuccess(w, map[string]string{"message": "Project deleted"})

	default:
		respondWithError(w, "Method not allowed", "Use GET, PUT or DELETE", http.StatusMethodNotAllowed)
	}
}
