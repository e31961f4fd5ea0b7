package payload

import (
	"time"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
)

type SelectRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student alumni faculty recruiter"`
}

// CompleteProfileRequest carries exactly one profile matching the account role.
type CompleteProfileRequest struct {
	Student   *StudentProfilePayload   `json:"student,omitempty"`
	Alumni    *AlumniProfilePayload    `json:"alumni,omitempty"`
	Faculty   *FacultyProfilePayload   `json:"faculty,omitempty"`
	Recruiter *RecruiterProfilePayload `json:"recruiter,omitempty"`
}

type StudentProfilePayload struct {
	RollNumber          string   `json:"roll_number"           validate:"required"`
	Branch              string   `json:"branch"                validate:"required"`
	CurrentAcademicYear int      `json:"current_academic_year" validate:"required,min=1,max=6"`
	CurrentCGPA         *float64 `json:"current_cgpa,omitempty"`
	PrimaryCareerGoal   string   `json:"primary_career_goal"   validate:"required"`
	CareerPathways      []string `json:"career_pathways"`
	Skills              []string `json:"skills"`
	PlacementStatus     *string  `json:"placement_status,omitempty"`
	CompanyName         *string  `json:"company_name,omitempty"`
}

type AlumniProfilePayload struct {
	GraduationYear    int      `json:"graduation_year"     validate:"required"`
	Degree            string   `json:"degree"              validate:"required"`
	Branch            string   `json:"branch"              validate:"required"`
	CurrentCompany    string   `json:"current_company"     validate:"required"`
	CurrentRole       string   `json:"current_role"        validate:"required"`
	YearsOfExperience int      `json:"years_of_experience" validate:"min=0"`
	CareerDomain      string   `json:"career_domain"       validate:"required"`
	Skills            []string `json:"skills"`
	CareerPathwayTags []string `json:"career_pathway_tags"`
}

type FacultyProfilePayload struct {
	Department        string   `json:"department"          validate:"required"`
	Designation       string   `json:"designation"         validate:"required"`
	YearsOfExperience int      `json:"years_of_experience" validate:"min=0"`
	SubjectsTaught    []string `json:"subjects_taught,omitempty"`
	GuidanceAreas     []string `json:"guidance_areas"`
}

type RecruiterProfilePayload struct {
	OfficialEmail    string   `json:"official_email"    validate:"required,email"`
	CompanyName      string   `json:"company_name"      validate:"required"`
	CompanyType      string   `json:"company_type"      validate:"required"`
	RolesHiringFor   []string `json:"roles_hiring_for"`
	EligibleBranches []string `json:"eligible_branches,omitempty"`
}

type AccountResponse struct {
	ID                 string     `json:"id"`
	PersonalEmail      string     `json:"personal_email"`
	DisplayName        string     `json:"display_name"`
	Role               string     `json:"role,omitempty"`
	VerificationStatus string     `json:"verification_status"`
	AccountStatus      string     `json:"account_status"`
	VerificationMethod string     `json:"verification_method"`
	ProfileCompleted   bool       `json:"profile_completed"`
	InstitutionalEmail *string    `json:"institutional_email,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type NextStepResponse struct {
	NextStep string `json:"next_step"`
}

// NewAccountResponse converts the account record to its API shape.
func NewAccountResponse(account *model.Account) AccountResponse {
	return AccountResponse{
		ID:                 account.ID.Hex(),
		PersonalEmail:      account.PersonalEmail,
		DisplayName:        account.DisplayName,
		Role:               string(account.Role),
		VerificationStatus: string(account.VerificationStatus),
		AccountStatus:      string(account.AccountStatus),
		VerificationMethod: string(account.VerificationMethod),
		ProfileCompleted:   account.ProfileCompleted,
		InstitutionalEmail: account.InstitutionalEmail,
		VerifiedAt:         account.VerifiedAt,
		CreatedAt:          account.CreatedAt,
	}
}

// ToModel converts a student profile payload to its storage shape.
func (p *StudentProfilePayload) ToModel() *model.StudentProfile {
	return &model.StudentProfile{
		RollNumber:          p.RollNumber,
		Branch:              p.Branch,
		CurrentAcademicYear: p.CurrentAcademicYear,
		CurrentCGPA:         p.CurrentCGPA,
		PrimaryCareerGoal:   p.PrimaryCareerGoal,
		CareerPathways:      p.CareerPathways,
		Skills:              p.Skills,
		PlacementStatus:     p.PlacementStatus,
		CompanyName:         p.CompanyName,
	}
}

// ToModel converts an alumni profile payload to its storage shape.
func (p *AlumniProfilePayload) ToModel() *model.AlumniProfile {
	return &model.AlumniProfile{
		GraduationYear:    p.GraduationYear,
		Degree:            p.Degree,
		Branch:            p.Branch,
		CurrentCompany:    p.CurrentCompany,
		CurrentRole:       p.CurrentRole,
		YearsOfExperience: p.YearsOfExperience,
		CareerDomain:      p.CareerDomain,
		Skills:            p.Skills,
		CareerPathwayTags: p.CareerPathwayTags,
	}
}

// ToModel converts a faculty profile payload to its storage shape.
func (p *FacultyProfilePayload) ToModel() *model.FacultyProfile {
	return &model.FacultyProfile{
		Department:        p.Department,
		Designation:       p.Designation,
		YearsOfExperience: p.YearsOfExperience,
		SubjectsTaught:    p.SubjectsTaught,
		GuidanceAreas:     p.GuidanceAreas,
	}
}

// ToModel converts a recruiter profile payload to its storage shape.
func (p *RecruiterProfilePayload) ToModel() *model.RecruiterProfile {
	return &model.RecruiterProfile{
		OfficialEmail:    p.OfficialEmail,
		CompanyName:      p.CompanyName,
		CompanyType:      p.CompanyType,
		RolesHiringFor:   p.RolesHiringFor,
		EligibleBranches: p.EligibleBranches,
	}
}
