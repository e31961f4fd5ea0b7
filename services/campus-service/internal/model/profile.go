package model

// StudentProfile is the role profile for verified students.
type StudentProfile struct {
	RollNumber          string   `bson:"roll_number"`
	Branch              string   `bson:"branch"`
	CurrentAcademicYear int      `bson:"current_academic_year"`
	CurrentCGPA         *float64 `bson:"current_cgpa,omitempty"`
	PrimaryCareerGoal   string   `bson:"primary_career_goal"`
	CareerPathways      []string `bson:"career_pathways"`
	Skills              []string `bson:"skills"`
	PlacementStatus     *string  `bson:"placement_status,omitempty"`
	CompanyName         *string  `bson:"company_name,omitempty"`
}

// AlumniProfile is the role profile for verified alumni/experts.
type AlumniProfile struct {
	GraduationYear    int      `bson:"graduation_year"`
	Degree            string   `bson:"degree"`
	Branch            string   `bson:"branch"`
	CurrentCompany    string   `bson:"current_company"`
	CurrentRole       string   `bson:"current_role"`
	YearsOfExperience int      `bson:"years_of_experience"`
	CareerDomain      string   `bson:"career_domain"`
	Skills            []string `bson:"skills"`
	CareerPathwayTags []string `bson:"career_pathway_tags"`
}

// FacultyProfile is the role profile for faculty members.
type FacultyProfile struct {
	Department        string   `bson:"department"`
	Designation       string   `bson:"designation"`
	YearsOfExperience int      `bson:"years_of_experience"`
	SubjectsTaught    []string `bson:"subjects_taught,omitempty"`
	GuidanceAreas     []string `bson:"guidance_areas"`
	ModeratorStatus   bool     `bson:"moderator_status"`
}

// RecruiterProfile is the role profile for recruiters.
type RecruiterProfile struct {
	OfficialEmail         string   `bson:"official_email"`
	CompanyName           string   `bson:"company_name"`
	CompanyType           string   `bson:"company_type"`
	RolesHiringFor        []string `bson:"roles_hiring_for"`
	EligibleBranches      []string `bson:"eligible_branches,omitempty"`
	CanViewAlumniProfiles bool     `bson:"can_view_alumni_profiles"`
	CanPostOpportunities  bool     `bson:"can_post_opportunities"`
}
