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

func (h *CampusHTTPHandler) GetMyAccount(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	account, err := h.accountUsecase.GetAccount(r.Context(), callerID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get account")

		switch {
		case errors.Is(err, usecase.ErrAccountNotFound):
			utilities.WriteStatusError(w, status.Errorf(codes.NotFound, "account not found"))
		default:
			utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		}
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.NewAccountResponse(account))
}

func (h *CampusHTTPHandler) SelectRole(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req payload.SelectRoleRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.accountUsecase.SelectRole(r.Context(), callerID, model.Role(req.Role))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to select role")

		switch {
		case errors.Is(err, usecase.ErrAccountNotFound):
			utilities.WriteStatusError(w, status.Errorf(codes.NotFound, "account not found"))
		case errors.Is(err, usecase.ErrInvalidRole):
			utilities.WriteStatusError(w, status.Errorf(codes.InvalidArgument, "role is not selectable"))
		case errors.Is(err, usecase.ErrRoleAlreadySet):
			utilities.WriteStatusError(w, status.Errorf(codes.FailedPrecondition, "role has already been set"))
		case errors.Is(err, usecase.ErrAccountInactive):
			utilities.WriteStatusError(w, status.Errorf(codes.PermissionDenied, "account is suspended or banned"))
		default:
			utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		}
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.NewAccountResponse(account))
}

func (h *CampusHTTPHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req payload.CompleteProfileRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	params := usecase.CompleteProfileParams{}
	if req.Student != nil {
		params.Student = req.Student.ToModel()
	}
	if req.Alumni != nil {
		params.Alumni = req.Alumni.ToModel()
	}
	if req.Faculty != nil {
		params.Faculty = req.Faculty.ToModel()
	}
	if req.Recruiter != nil {
		params.Recruiter = req.Recruiter.ToModel()
	}

	account, err := h.accountUsecase.CompleteProfile(r.Context(), callerID, params)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to complete profile")

		switch {
		case errors.Is(err, usecase.ErrAccountNotFound):
			utilities.WriteStatusError(w, status.Errorf(codes.NotFound, "account not found"))
		case errors.Is(err, usecase.ErrNotVerified):
			utilities.WriteStatusError(w, status.Errorf(codes.FailedPrecondition, "account is not verified"))
		case errors.Is(err, usecase.ErrProfileRoleMismatch):
			utilities.WriteStatusError(w, status.Errorf(codes.InvalidArgument, "profile does not match account role"))
		case errors.Is(err, usecase.ErrAccountInactive):
			utilities.WriteStatusError(w, status.Errorf(codes.PermissionDenied, "account is suspended or banned"))
		default:
			utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		}
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.NewAccountResponse(account))
}

func (h *CampusHTTPHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	next, err := h.flowUsecase.NextRequiredStep(r.Context(), callerID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute next step")
		utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.NextStepResponse{NextStep: string(next)})
}
