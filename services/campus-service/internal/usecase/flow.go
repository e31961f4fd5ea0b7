package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/repository"
)

// Route is a navigation destination the flow guard can require.
type Route string

const (
	RouteLogin            Route = "/login"
	RouteRoleSelect       Route = "/verify/role-select"
	RouteStudentEmail     Route = "/verify/student-email"
	RoutePendingReview    Route = "/verify/pending"
	RouteAlumniRequest    Route = "/verify/alumni-request"
	RouteRecruiterRequest Route = "/verify/recruiter-request"
	RouteFacultyReview    Route = "/verify/faculty-review"
	RouteProfileComplete  Route = "/profile/complete"
	RouteHome             Route = "/home"
)

// FlowUsecase computes the single legal next step for an account. It is a
// pure reader: verification status is only ever written by the verification
// engine and the review workflow.
type FlowUsecase interface {
	NextRequiredStep(ctx context.Context, accountID string) (Route, error)
}

type flowUsecase struct {
	accountRepo repository.AccountRepository
	requestRepo repository.VerificationRequestRepository
}

// NewFlowUsecase creates a new instance of FlowUsecase.
func NewFlowUsecase(
	accountRepo repository.AccountRepository,
	requestRepo repository.VerificationRequestRepository,
) FlowUsecase {
	return &flowUsecase{
		accountRepo: accountRepo,
		requestRepo: requestRepo,
	}
}

func (u *flowUsecase) NextRequiredStep(ctx context.Context, accountID string) (Route, error) {
	account, err := u.accountRepo.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return RouteLogin, nil
		}
		return "", err
	}

	request, err := u.requestRepo.GetActiveRequestByAccount(ctx, accountID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	var requestStatus model.RequestStatus
	if request != nil {
		requestStatus = request.Status
	}

	return NextStep(account, requestStatus), nil
}

// NextStep is the canonical flow state machine. The precedence is a fixed
// contract: authentication, then role, then verification, then profile.
// It is total: every combination of inputs maps to a route, and a record
// violating the profileCompleted-implies-verified invariant fails closed to
// the earlier verification step.
func NextStep(account *model.Account, requestStatus model.RequestStatus) Route {
	if account == nil {
		return RouteLogin
	}

	if account.Role == "" {
		return RouteRoleSelect
	}

	if account.VerificationStatus != model.VerificationVerified {
		if account.Role == model.RoleStudent {
			return RouteStudentEmail
		}

		switch requestStatus {
		case model.RequestPending, model.RequestApproved:
			// An approved request with an unverified account can only be a
			// partially observed write; hold at the pending page until the
			// account catches up.
			return RoutePendingReview
		}

		// No request yet, or a rejected one: back to the role's own page.
		switch account.Role {
		case model.RoleAlumni:
			return RouteAlumniRequest
		case model.RoleRecruiter:
			return RouteRecruiterRequest
		case model.RoleFaculty:
			// Faculty are verified by admin assignment, not self-submission.
			return RouteFacultyReview
		default:
			// Moderators and admins are verified by assignment; there is
			// nothing for them to submit.
			return RoutePendingReview
		}
	}

	if !account.ProfileCompleted {
		return RouteProfileComplete
	}

	return RouteHome
}

// IntermediateRoutes are the onboarding destinations a fully verified,
// profile-complete user should be redirected away from.
var IntermediateRoutes = map[Route]bool{
	RouteRoleSelect:       true,
	RouteStudentEmail:     true,
	RoutePendingReview:    true,
	RouteAlumniRequest:    true,
	RouteRecruiterRequest: true,
	RouteFacultyReview:    true,
	RouteProfileComplete:  true,
}
