package handler

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/payload"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/usecase"
	"github.com/campusconnect/campus-qa-api/shared/utilities"
)

func (h *CampusHTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	tokens, err := h.accountUsecase.Register(r.Context(), usecase.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to register account")

		switch {
		case errors.Is(err, usecase.ErrAccountAlreadyExists):
			utilities.WriteStatusError(w, status.Errorf(codes.AlreadyExists, "account already exists"))
		default:
			utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		}
		return
	}

	utilities.WriteJSON(w, http.StatusCreated, payload.RegisterResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (h *CampusHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	tokens, err := h.accountUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to login")

		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			utilities.WriteStatusError(w, status.Errorf(codes.Unauthenticated, "invalid email or password"))
		case errors.Is(err, usecase.ErrAccountInactive):
			utilities.WriteStatusError(w, status.Errorf(codes.PermissionDenied, "account is suspended or banned"))
		default:
			utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		}
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (h *CampusHTTPHandler) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req payload.GoogleLoginRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	tokens, err := h.accountUsecase.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to login with google")

		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			utilities.WriteStatusError(w, status.Errorf(codes.Unauthenticated, "invalid google credential"))
		case errors.Is(err, usecase.ErrAccountInactive):
			utilities.WriteStatusError(w, status.Errorf(codes.PermissionDenied, "account is suspended or banned"))
		default:
			utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		}
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}
