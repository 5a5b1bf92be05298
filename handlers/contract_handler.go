package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"buildlink-backend/models"
	"buildlink-backend/services"
)

type ContractHandler struct {
	svc *services.ContractService
}

func NewContractHandler(s *services.ContractService) *ContractHandler {
	return &ContractHandler{svc: s}
}

// Contracts is the method-dispatched /api/contracts endpoint:
// GET lists the caller's contracts, POST creates one.
func (h *ContractHandler) Contracts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		contracts, err := h.svc.List(callerID(r))
		if err != nil {
			respondWithError(w, "Internal error", "Failed to list contracts", http.StatusInternalServerError)
			return
		}
		respondWithSuccess(w, contracts)

	case http.MethodPost:
		if callerRole(r) != models.RoleClient {
			respondWithError(w, "Forbidden", "Only clients can offer contracts", http.StatusForbidden)
			return
		}
		var req services.ContractInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, "Invalid JSON", "Bad request format", http.StatusBadRequest)
			return
		}
		contract, err := h.svc.Create(callerID(r), req)
		if err != nil {
			respondWithServiceError(w, "Contract creation failed", err)
			return
		}
		respondWithSuccess(w, contract)

	default:
		respondWithError(w, "Method not allowed", "Use GET or POST", http.StatusMethodNotAllowed)
	}
}

// Detail is the method-dispatched /api/contracts/detail endpoint:
// GET fetches, PUT updates (terms, signature, status), DELETE removes.
// All operations are restricted to the two contract parties. ?id=<contractId>
func (h *ContractHandler) Detail(w http.ResponseWriter, r *http.Request) {
	contractID, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || contractID <= 0 {
		respondWithError(w, "Invalid parameter", "id query parameter is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		contract, err := h.svc.Get(contractID, callerID(r))
		if err != nil {
			respondWithServiceError(w, "Lookup failed", err)
			return
		}
		respondWithSuccess(w, contract)

	case http.MethodPut:
		var upd services.ContractUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			respondWithError(w, "Invalid JSON", "Bad request format", http.StatusBadRequest)
			return
		}
		contract, err := h.svc.Update(contractID, callerID(r), upd)
		if err != nil {
			respondWithServiceError(w, "Update failed", err)
			return
		}
		respondWithSuccess(w, contract)

	case http.MethodDelete:
		if err := h.svc.Delete(contractID, callerID(r)); err != nil {
			respondWithServiceError(w, "Delete failed", err)
			return
		}
		respondWithSuccess(w, map[string]string{"message": "Contract deleted"})

	default:
		respondWithError(w, "Method not allowed", "Use GET, PUT or DELETE", http.StatusMethodNotAllowed)
	}
}
