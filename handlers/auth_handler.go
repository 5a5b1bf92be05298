package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"buildlink-backend/services"
)

type AuthHandler struct {
	svc *services.AuthService
}

func NewAuthHandler(s *services.AuthService) *AuthHandler { return &AuthHandler{svc: s} }

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// WithAuth validates the bearer token and stashes the caller's identity in
// request headers for the wrapped handler.
func (h *AuthHandler) WithAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondWithError(w, "Unauthorized", "Missing Authorization header", http.StatusUnauthorized)
			return
		}
		uid, name, role, err := h.svc.ParseToken(token)
		if err != nil {
			respondWithError(w, "Unauthorized", "Invalid token", http.StatusUnauthorized)
			return
		}
		r.Header.Set("X-User-ID", strconv.Itoa(uid))
		r.Header.Set("X-User-Name", name)
		r.Header.Set("X-User-Role", role)
		next(w, r)
	}
}

// WithRole restricts a handler to callers holding the given role. Wrap
// inside WithAuth.
func (h *AuthHandler) WithRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return h.WithAuth(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-User-Role") != role {
			respondWithError(w, "Forbidden", "Only "+role+"s can access this route", http.StatusForbidden)
			return
		}
		next(w, r)
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, "Method not allowed", "Use POST method", http.StatusMethodNotAllowed)
		return
	}

	var req services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, "Invalid JSON", "Bad request format", http.StatusBadRequest)
		return
	}

	user, err := h.svc.Register(req)
	if err != nil {
		respondWithServiceError(w, "Registration failed", err)
		return
	}

	token, err := h.svc.CreateToken(user)
	if err != nil {
		respondWithError(w, "Token creation failed", "Could not create authentication token", http.StatusInternalServerError)
		return
	}

	respondWithSuccess(w, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, "Method not allowed", "Use POST method", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, "Invalid JSON", "Bad request format", http.StatusBadRequest)
		return
	}

	token, user, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		respondWithError(w, "Authentication failed", "Invalid credentials", http.StatusUnauthorized)
		return
	}

	respondWithSuccess(w, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, "Method not allowed", "Use GET method", http.StatusMethodNotAllowed)
		return
	}
	user, err := h.svc.GetUser(callerID(r))
	if err != nil {
		respondWithServiceError(w, "Lookup failed", err)
		return
	}
	respondWithSuccess(w, user)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, "Method not allowed", "Use POST method", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, "Invalid JSON", "Bad request format", http.StatusBadRequest)
		return
	}

	if err := h.svc.ChangePassword(callerID(r), req.OldPassword, req.NewPassword); err != nil {
		respondWithServiceError(w, "Password change failed", err)
		return
	}
	respondWithSuccess(w, map[string]string{"message": "Password updated"})
}

// Users lists everyone's public identity (id, name, role) for directories
// and the conversation picker.
func (h *AuthHandler) Users(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, "Method not allowed", "Use GET method", http.StatusMethodNotAllowed)
		return
	}

	users, err := h.svc.ListUsers()
	if err != nil {
		respondWithError(w, "Internal error", "Failed to list users", http.StatusInternalServerError)
		return
	}

	type publicUser struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Role string `json:"role"`
	}
	out := make([]publicUser, 0, len(users))
	for _, u := range users {
		out = append(out, publicUser{ID: u.ID, Name: u.DisplayName(), Role: u.Role})
	}
	respondWithSuccess(w, out)
}

// --- shared helpers ---

func bearerToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	if len(token) > 7 && token[:7] == "Bearer " {
		token = token[7:]
	}
	return token
}

func callerID(r *http.Request) int {
	id, _ := strconv.Atoi(r.Header.Get("X-User-ID"))
	return id
}

func callerRole(r *http.Request) string {
	return r.Header.Get("X-User-Role")
}

func respondWithError(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}

func respondWithSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// respondWithServiceError maps the service error taxonomy onto HTTP status
// codes: validation 400, missing records 404, ownership violations 403,
// anything else (persistence) 500.
func respondWithServiceError(w http.ResponseWriter, title string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	}
	respondWithError(w, title, err.Error(), status)
}
