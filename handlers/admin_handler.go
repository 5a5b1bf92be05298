package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"buildlink-backend/services"
)

type AdminHandler struct {
	svc *services.AdminService
}

func NewAdminHandler(s *services.AdminService) *AdminHandler {
	return &AdminHandler{svc: s}
}

// UserStatus handles POST /api/admin/users/status {user_id, active}:
// activate or deactivate an account.
func (h *AdminHandler) UserStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, "Method not allowed", "Use POST method", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		UserID int  `json:"user_id"`
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, "Invalid JSON", "Bad request format", http.StatusBadRequest)
		return
	}

	user, err := h.svc.SetUserActive(req.UserID, req.Active)
	if err != nil {
		respondWithServiceError(w, "Status change failed", err)
		return
	}
	respondWithSuccess(w, user)
}

// Reviews handles DELETE /api/admin/reviews?id=<reviewId>: remove any
// review, regardless of author.
func (h *AdminHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		respondWithError(w, "Method not allowed", "Use DELETE method", http.StatusMethodNotAllowed)
		return
	}

	reviewID, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || reviewID <= 0 {
		respondWithError(w, "Invalid parameter", "id query parameter is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.RemoveReview(reviewID); err != nil {
		respondWithServiceError(w, "Removal failed", err)
		return
	}
	respondWithSuccess(w, map[string]string{"message": "Review removed"})
}
