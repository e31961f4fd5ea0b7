package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/usecase"
	"github.com/campusconnect/campus-qa-api/shared/middleware"
	"github.com/campusconnect/campus-qa-api/shared/utilities"
)

// CampusHTTPHandler exposes the service over HTTP. Every endpoint resolves
// the caller from the bearer token claims; client-supplied ids are never
// trusted as the actor.
type CampusHTTPHandler struct {
	accountUsecase      usecase.AccountUsecase
	verificationUsecase usecase.VerificationUsecase
	reviewUsecase       usecase.ReviewUsecase
	flowUsecase         usecase.FlowUsecase
	qaUsecase           usecase.QAUsecase
	engagementUsecase   usecase.EngagementUsecase
	adminUsecase        usecase.AdminUsecase
	streams             *usecase.AnswerStreams
	validator           *requestValidator
	logger              *zerolog.Logger
}

// NewCampusHTTPHandler creates a new instance of CampusHTTPHandler.
func NewCampusHTTPHandler(
	accountUsecase usecase.AccountUsecase,
	verificationUsecase usecase.VerificationUsecase,
	reviewUsecase usecase.ReviewUsecase,
	flowUsecase usecase.FlowUsecase,
	qaUsecase usecase.QAUsecase,
	engagementUsecase usecase.EngagementUsecase,
	adminUsecase usecase.AdminUsecase,
	streams *usecase.AnswerStreams,
	logger *zerolog.Logger,
) *CampusHTTPHandler {
	return &CampusHTTPHandler{
		accountUsecase:      accountUsecase,
		verificationUsecase: verificationUsecase,
		reviewUsecase:       reviewUsecase,
		flowUsecase:         flowUsecase,
		qaUsecase:           qaUsecase,
		engagementUsecase:   engagementUsecase,
		adminUsecase:        adminUsecase,
		streams:             streams,
		validator:           newRequestValidator(),
		logger:              logger,
	}
}

// SetupRoutes mounts all endpoints on the router.
func (h *CampusHTTPHandler) SetupRoutes(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utilities.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/google", h.LoginWithGoogle)
		})

		r.Route("/account", func(r chi.Router) {
			r.Get("/", h.GetMyAccount)
			r.Post("/role", h.SelectRole)
			r.Post("/profile", h.CompleteProfile)
			r.Get("/next-step", h.NextStep)
		})

		r.Route("/verification", func(r chi.Router) {
			r.Post("/email/send", h.SendVerificationEmail)
			r.Post("/email/confirm", h.ConfirmVerificationEmail)
			r.Post("/request", h.SubmitVerificationRequest)
			r.Get("/request", h.GetVerificationRequest)
		})

		r.Route("/questions", func(r chi.Router) {
			r.Use(h.requireOnboarded)
			r.Post("/", h.AskQuestion)
			r.Get("/", h.ListQuestions)
			r.Route("/{questionID}", func(r chi.Router) {
				r.Get("/", h.GetQuestion)
				r.Post("/answers", h.PostAnswer)
				r.Get("/answers", h.ListAnswers)
				r.Get("/answers/stream", h.StreamAnswers)
				r.Post("/answers/{answerID}/like", h.ToggleLike)
				r.Post("/answers/{answerID}/accept", h.AcceptAnswer)
			})
		})

		r.Route("/alumni", func(r chi.Router) {
			r.Use(h.requireOnboarded)
			r.Get("/", h.ListAlumni)
			r.Get("/{accountID}", h.GetAlumniProfile)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/verifications", h.ListPendingVerifications)
			r.Post("/verifications/approve", h.ApproveVerification)
			r.Post("/verifications/reject", h.RejectVerification)
			r.Post("/accounts/role", h.SetAccountRole)
			r.Post("/accounts/status", h.SetAccountStatus)
			r.Get("/accounts/{accountID}/audit", h.ListAuditTrail)
		})
	})
}

// requireOnboarded gates a route group on the onboarding flow: callers whose
// next required step is anything but home are redirected there instead of
// reaching the handler. Write paths still re-check permissions themselves.
func (h *CampusHTTPHandler) requireOnboarded(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.callerID(w, r)
		if !ok {
			return
		}

		route, err := h.flowUsecase.NextRequiredStep(r.Context(), id)
		if err != nil {
			h.logger.Error().Err(err).Str("account_id", id).Msg("failed to resolve next required step")
			utilities.WriteError(w, codes.Internal, "failed to resolve account state")
			return
		}

		if route != usecase.RouteHome {
			utilities.WriteError(w, codes.FailedPrecondition,
				"onboarding incomplete, next step: "+string(route))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// callerID resolves the authenticated account from the request context.
func (h *CampusHTTPHandler) callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.CallerID(r.Context())
	if !ok {
		utilities.WriteError(w, codes.Unauthenticated, "missing or invalid credentials")
		return "", false
	}

	return id, true
}
