package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/payload"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/usecase"
	"github.com/campusconnect/campus-qa-api/shared/utilities"
)

func (h *CampusHTTPHandler) ListPendingVerifications(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	requests, err := h.reviewUsecase.ListPending(
		r.Context(),
		callerID,
		parseUintQuery(r, "limit"),
		parseUintQuery(r, "offset"),
	)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list pending verifications")
		h.writeAdminError(w, err)
		return
	}

	out := make([]payload.VerificationRequestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, payload.NewVerificationRequestResponse(request))
	}

	utilities.WriteJSON(w, http.StatusOK, out)
}

func (h *CampusHTTPHandler) ApproveVerification(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req payload.ApproveVerificationRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.reviewUsecase.Approve(r.Context(), callerID, req.AccountID); err != nil {
		h.logger.Error().Err(err).Str("account_id", req.AccountID).Msg("failed to approve verification")
		h.writeAdminError(w, err)
		return
	}

	utilities.WriteJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *CampusHTTPHandler) RejectVerification(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req payload.RejectVerificationRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.reviewUsecase.Reject(r.Context(), callerID, req.AccountID, req.Reason); err != nil {
		h.logger.Error().Err(err).Str("account_id", req.AccountID).Msg("failed to reject verification")
		h.writeAdminError(w, err)
		return
	}

	utilities.WriteJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *CampusHTTPHandler) SetAccountRole(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req payload.SetAccountRoleRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.adminUsecase.SetRole(r.Context(), callerID, req.AccountID, model.Role(req.Role))
	if err != nil {
		h.logger.Error().Err(err).Str("account_id", req.AccountID).Msg("failed to set account role")

		switch {
		case errors.Is(err, usecase.ErrUnknownRole):
			utilities.WriteStatusError(w, status.Errorf(codes.InvalidArgument, "unknown role"))
		default:
			h.writeAdminError(w, err)
		}
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.NewAccountResponse(account))
}

func (h *CampusHTTPHandler) SetAccountStatus(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req payload.SetAccountStatusRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.adminUsecase.SetAccountStatus(
		r.Context(),
		callerID,
		req.AccountID,
		model.AccountStatus(req.Status),
		req.Reason,
	)
	if err != nil {
		h.logger.Error().Err(err).Str("account_id", req.AccountID).Msg("failed to set account status")

		switch {
		case errors.Is(err, usecase.ErrUnknownAccountStatus):
			utilities.WriteStatusError(w, status.Errorf(codes.InvalidArgument, "unknown account status"))
		default:
			h.writeAdminError(w, err)
		}
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.NewAccountResponse(account))
}

func (h *CampusHTTPHandler) ListAuditTrail(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	entries, err := h.adminUsecase.ListAuditTrail(r.Context(), callerID, chi.URLParam(r, "accountID"))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list audit trail")
		h.writeAdminError(w, err)
		return
	}

	out := make([]payload.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, payload.NewAuditEntryResponse(entry))
	}

	utilities.WriteJSON(w, http.StatusOK, out)
}

// writeAdminError maps the review and admin sentinel errors onto status codes.
func (h *CampusHTTPHandler) writeAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrNotAdmin):
		utilities.WriteStatusError(w, status.Errorf(codes.PermissionDenied, "admin access required"))
	case errors.Is(err, usecase.ErrAccountNotFound):
		utilities.WriteStatusError(w, status.Errorf(codes.NotFound, "account not found"))
	case errors.Is(err, usecase.ErrRequestNotFound):
		utilities.WriteStatusError(w, status.Errorf(codes.NotFound, "verification request not found"))
	case errors.Is(err, usecase.ErrAccountInactive):
		utilities.WriteStatusError(w, status.Errorf(codes.PermissionDenied, "account is suspended or banned"))
	default:
		utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
	}
}
