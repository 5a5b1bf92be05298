package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"buildlink-backend/services"
)

type ReviewHandler struct {
	svc *services.ReviewService
}

func NewReviewHandler(s *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: s}
}

// List serves GET /api/reviews without authentication; reviews are public.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, "Method not allowed", "Use GET method", http.StatusMethodNotAllowed)
		return
	}
	reviews, err := h.svc.List()
	if err != nil {
		respondWithError(w, "Internal error", "Failed to list reviews", http.StatusInternalServerError)
		return
	}
	respondWithSuccess(w, reviews)
}

// ForEngineer serves GET /api/reviews/user?id=<engineerId>, public.
func (h *ReviewHandler) ForEngineer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, "Method not allowed", "Use GET method", http.StatusMethodNotAllowed)
		return
	}

	engineerID, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || engineerID <= 0 {
		respondWithError(w, "Invalid parameter", "id query parameter is required", http.StatusBadRequest)
		return
	}

	reviews, err := h.svc.ListForEngineer(engineerID)
	if err != nil {
		respondWithServiceError(w, "Lookup failed", err)
		return
	}
	respondWithSuccess(w, reviews)
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, "Method not allowed", "Use POST method", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		EngineerID int    `json:"engineer_id"`
		ReviewText string `json:"review_text"`
		Rating     int    `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, "Invalid JSON", "Bad request format", http.StatusBadRequest)
		return
	}

	review, err := h.svc.Create(callerID(r), req.EngineerID, req.ReviewText, req.Rating)
	if err != nil {
		respondWithServiceError(w, "Review submission failed", err)
		return
	}
	respondWithSuccess(w, review)
}

// Detail is the method-dispatched /api/reviews/detail endpoint:
// PUT updates, DELETE removes; author only. ?id=<reviewId>
func (h *ReviewHandler) Detail(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || reviewID <= 0 {
		respondWithError(w, "Invalid parameter", "id query parameter is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req struct {
			ReviewText string `json:"review_text"`
			Rating     int    `json:"rating"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, "Invalid JSON", "Bad request format", http.StatusBadRequest)
			return
		}
		review, err := h.svc.Update(reviewID, callerID(r), req.ReviewText, req.Rating)
		if err != nil {
			respondWithServiceError(w, "Update failed", err)
			return
		}
		respondWithSuccess(w, review)

	case http.MethodDelete:
		if err := h.svc.Delete(reviewID, callerID(r)); err != nil {
			respondWithServiceError(w, "Delete failed", err)
			return
		}
		respondWithSuccess(w, map[string]string{"message": "Review deleted successfully"})

	default:
		respondWithError(w, "Method not allowed", "Use PUT or DELETE", http.StatusMethodNotAllowed)
	}
}
