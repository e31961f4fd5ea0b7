package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is the community role an account holds. An empty Role means the user
// has not picked one yet.
type Role string

const (
	RoleStudent   Role = "student"
	RoleAlumni    Role = "alumni"
	RoleFaculty   Role = "faculty"
	RoleRecruiter Role = "recruiter"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// SelectableRoles are the roles a user may pick for themselves during
// onboarding. Moderator and admin are assigned by admins only.
var SelectableRoles = map[Role]bool{
	RoleStudent:   true,
	RoleAlumni:    true,
	RoleFaculty:   true,
	RoleRecruiter: true,
}

// VerificationStatus tracks where an account is in the verification flow.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

// AccountStatus is the moderation axis, independent of verification.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountBanned    AccountStatus = "banned"
)

// VerificationMethod records how an account got verified.
type VerificationMethod string

const (
	VerificationMethodNone   VerificationMethod = "none"
	VerificationMethodAuto   VerificationMethod = "auto"
	VerificationMethodManual VerificationMethod = "manual"
)

// Account is the durable per-user record driving all access decisions.
// At most one of the role profiles is populated, matching Role.
type Account struct {
	ID                 bson.ObjectID      `bson:"_id,omitempty"`
	PersonalEmail      string             `bson:"personal_email"`
	DisplayName        string             `bson:"display_name"`
	PasswordHash       string             `bson:"password_hash,omitempty"`
	Role               Role               `bson:"role"`
	VerificationStatus VerificationStatus `bson:"verification_status"`
	AccountStatus      AccountStatus      `bson:"account_status"`
	VerificationMethod VerificationMethod `bson:"verification_method"`
	ProfileCompleted   bool               `bson:"profile_completed"`
	InstitutionalEmail *string            `bson:"institutional_email,omitempty"`
	VerifiedAt         *time.Time         `bson:"verified_at,omitempty"`
	VerifiedBy         *string            `bson:"verified_by,omitempty"`

	StudentProfile   *StudentProfile   `bson:"student_profile,omitempty"`
	AlumniProfile    *AlumniProfile    `bson:"alumni_profile,omitempty"`
	FacultyProfile   *FacultyProfile   `bson:"faculty_profile,omitempty"`
	RecruiterProfile *RecruiterProfile `bson:"recruiter_profile,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}
