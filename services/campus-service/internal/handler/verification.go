package handler

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/payload"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/usecase"
	"github.com/campusconnect/campus-qa-api/shared/utilities"
)

func (h *CampusHTTPHandler) SendVerificationEmail(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req payload.SendVerificationEmailRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	_, err := h.verificationUsecase.SendVerificationEmail(r.Context(), callerID, req.Email)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to send verification email")

		switch {
		case errors.Is(err, usecase.ErrAccountNotFound):
			utilities.WriteStatusError(w, status.Errorf(codes.NotFound, "account not found"))
		case errors.Is(err, usecase.ErrInvalidEmailDomain):
			utilities.WriteStatusError(w, status.Errorf(codes.InvalidArgument, "email does not match the institutional domain"))
		case errors.Is(err, usecase.ErrNotStudent):
			utilities.WriteStatusError(w, status.Errorf(codes.FailedPrecondition, "email verification is only available for students"))
		case errors.Is(err, usecase.ErrRateLimited):
			utilities.WriteStatusError(w, status.Errorf(codes.ResourceExhausted, "too many verification emails, try again later"))
		case errors.Is(err, usecase.ErrNotifierFailed):
			utilities.WriteStatusError(w, status.Errorf(codes.Internal, "could not send the verification email, try again later"))
		case errors.Is(err, usecase.ErrAccountInactive):
			utilities.WriteStatusError(w, status.Errorf(codes.PermissionDenied, "account is suspended or banned"))
		default:
			utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		}
		return
	}

	utilities.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (h *CampusHTTPHandler) ConfirmVerificationEmail(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req payload.ConfirmVerificationRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	err := h.verificationUsecase.VerifyEmailToken(r.Context(), callerID, req.Token)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to confirm verification token")

		// Not-found and invalid tokens render the same message so the
		// endpoint cannot be used as a token oracle.
		switch {
		case errors.Is(err, usecase.ErrTokenNotFound):
			utilities.WriteStatusError(w, status.Errorf(codes.NotFound, "invalid or expired verification token"))
		case errors.Is(err, usecase.ErrTokenInvalid):
			utilities.WriteStatusError(w, status.Errorf(codes.FailedPrecondition, "invalid or expired verification token"))
		case errors.Is(err, usecase.ErrAccountNotFound):
			utilities.WriteStatusError(w, status.Errorf(codes.NotFound, "account not found"))
		case errors.Is(err, usecase.ErrAccountInactive):
			utilities.WriteStatusError(w, status.Errorf(codes.PermissionDenied, "account is suspended or banned"))
		default:
			utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		}
		return
	}

	utilities.WriteJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

func (h *CampusHTTPHandler) SubmitVerificationRequest(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req payload.SubmitVerificationRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	requestID, err := h.reviewUsecase.SubmitRequest(r.Context(), callerID, model.Role(req.Role), req.ProofData)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to submit verification request")

		switch {
		case errors.Is(err, usecase.ErrAccountNotFound):
			utilities.WriteStatusError(w, status.Errorf(codes.NotFound, "account not found"))
		case errors.Is(err, usecase.ErrInvalidRequestRole):
			utilities.WriteStatusError(w, status.Errorf(codes.InvalidArgument, "role is not eligible for manual verification"))
		case errors.Is(err, usecase.ErrRequestAlreadyExists):
			utilities.WriteStatusError(w, status.Errorf(codes.AlreadyExists, "verification request already submitted"))
		case errors.Is(err, usecase.ErrAccountInactive):
			utilities.WriteStatusError(w, status.Errorf(codes.PermissionDenied, "account is suspended or banned"))
		default:
			utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		}
		return
	}

	utilities.WriteJSON(w, http.StatusCreated, payload.SubmitVerificationResponse{RequestID: requestID})
}

func (h *CampusHTTPHandler) GetVerificationRequest(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	request, err := h.reviewUsecase.GetRequest(r.Context(), callerID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrRequestNotFound):
			utilities.WriteStatusError(w, status.Errorf(codes.NotFound, "verification request not found"))
		default:
			h.logger.Error().Err(err).Msg("failed to get verification request")
			utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		}
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.NewVerificationRequestResponse(request))
}
