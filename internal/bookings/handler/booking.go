package handler

import (
	"net/http"

	"guesthouse/internal/bookings/service"
	apperrors "guesthouse/pkg/errors"
	httputil "guesthouse/pkg/http"
	"guesthouse/pkg/logger"
	"guesthouse/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const AdminSecretHeader = "X-Admin-Secret"

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/acknowledge", h.Acknowledge)
	router.GET("/api/acknowledgments", h.List)
	router.GET("/api/blocked-dates", h.BlockedDates)
	router.GET("/api/check-email/:email", h.CheckEmail)
	router.POST("/api/cancel-booking", h.Cancel)
	router.POST("/api/update-govt-id", h.UpdateGovtID)
	router.POST("/api/update-dob", h.UpdateDOB)
}

// writeError logs store failures at Error and refusals such as a bad
// credential or a conflict at Warn. Input errors are left to the service log.
func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	appErr := apperrors.AsAppError(err)
	switch {
	case appErr.Code == apperrors.CodeStoreUnavailable:
		h.log.Error("request failed", "handler", handler, "error", err)
	case !appErr.IsValidation():
		h.log.Warn("request refused", "handler", handler, "code", appErr.Code, "status", appErr.HTTPStatus)
	}
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) Acknowledge(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AcknowledgmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Acknowledge", err)
		return
	}

	booking, err := h.service.Create(r.Context(), &req, httputil.ClientIP(r))
	if err != nil {
		h.writeError(w, "Acknowledge", err)
		return
	}

	data := model.AcknowledgmentCreated{
		ID:           booking.ID,
		SubmittedAt:  booking.SubmittedAt,
		CheckInDate:  booking.CheckInDate,
		CheckOutDate: booking.CheckOutDate,
	}
	if err := httputil.WriteCreated(w, "Acknowledgment recorded successfully", data); err != nil {
		h.log.Error("failed to write created response", "handler", "Acknowledge", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := h.service.ListAll(r.Context(), r.Header.Get(AdminSecretHeader))
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Acknowledgments retrieved", bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) BlockedDates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ranges, err := h.service.BlockedDates(r.Context())
	if err != nil {
		h.writeError(w, "BlockedDates", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Blocked dates retrieved", ranges); err != nil {
		h.log.Error("failed to write success response", "handler", "BlockedDates", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) CheckEmail(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	exists, err := h.service.EmailExists(r.Context(), ps.ByName("email"))
	if err != nil {
		h.writeError(w, "CheckEmail", err)
		return
	}

	if err := httputil.WriteSuccess(w, "", model.EmailCheckResult{Exists: exists}); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckEmail", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CancelRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	result, err := h.service.Cancel(r.Context(), req.AdminSecret, req.BookingID)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	message := "Booking cancelled successfully"
	if result.AlreadyCancelled {
		message = "Booking was already cancelled"
	}
	if err := httputil.WriteSuccess(w, message, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) UpdateGovtID(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.GovtIDCorrectionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "UpdateGovtID", err)
		return
	}

	result, err := h.service.CorrectGovtID(r.Context(), req.AdminSecret, req.BookingID, req.GuestIndex, req.GovtIDNumber)
	if err != nil {
		h.writeError(w, "UpdateGovtID", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Government ID updated successfully", result); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateGovtID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) UpdateDOB(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.DOBCorrectionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "UpdateDOB", err)
		return
	}

	result, err := h.service.CorrectDOB(r.Context(), req.AdminSecret, req.BookingID, req.GuestIndex, req.DOB)
	if err != nil {
		h.writeError(w, "UpdateDOB", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Date of birth updated successfully", result); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateDOB", "operation", "WriteSuccess", "error", err)
	}
}
