package handlers

import (
	"net/http"

	"github.com/JustArys/tennis/middleware"
	"github.com/JustArys/tennis/models"
	"github.com/JustArys/tennis/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(registrationService services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

type registerInput struct {
	PartnerID *int `json:"partner_id,omitempty"`
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	callerID, err := middleware.CallerID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input registerInput
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	reg, err := h.registrationService.Register(r.Context(), tournamentID, callerID, input.PartnerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"registration": reg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) ConfirmPartner(w http.ResponseWriter, r *http.Request) {
	h.answerInvite(w, r, true)
}

func (h *RegistrationHandler) RejectPartner(w http.ResponseWriter, r *http.Request) {
	h.answerInvite(w, r, false)
}

func (h *RegistrationHandler) answerInvite(w http.ResponseWriter, r *http.Request, confirm bool) {
	registrationID, err := idParam(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	callerID, err := middleware.CallerID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var reg *models.TournamentRegistration
	if confirm {
		reg, err = h.registrationService.ConfirmPartner(r.Context(), registrationID, callerID)
	} else {
		reg, err = h.registrationService.RejectPartner(r.Context(), registrationID, callerID)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	callerID, err := middleware.CallerID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := h.registrationService.Withdraw(r.Context(), tournamentID, callerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistrationHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var statusFilter *models.RegistrationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.RegistrationStatus(raw)
		statusFilter = &status
	}

	regs, err := h.registrationService.ListByTournament(r.Context(), tournamentID, statusFilter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"registrations": regs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
