package userdata

// Document is the full profile of a portal user as returned by
// GET /student/user/{userId}. It is replaced wholesale on every fetch;
// the client never merges a partial update into a cached copy.
type Document struct {
	UserID   string   `json:"user_id" validate:"required"`
	RoleType string   `json:"role_type" validate:"required"`
	Personal Personal `json:"personal_details" validate:"required"`
	Contact  Contact  `json:"contact_details"`

	Parents    []Parent           `json:"parent_details" validate:"omitempty,dive"`
	Education  []EducationRecord  `json:"education_history" validate:"omitempty,dive"`
	Semesters  []SemesterRecord   `json:"semester_records" validate:"omitempty,dive"`
	Activities ActivityCollection `json:"activities"`
}

// Personal holds the identity section of the profile.
type Personal struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	BloodGroup  string `json:"blood_group"`
	Nationality string `json:"nationality"`
	Category    string `json:"category"`
	AadharNo    string `json:"aadhar_no"`
}

// Contact holds communication details.
type Contact struct {
	Email            string `json:"email" validate:"omitempty,email"`
	AlternateEmail   string `json:"alternate_email" validate:"omitempty,email"`
	Phone            string `json:"phone"`
	AlternatePhone   string `json:"alternate_phone"`
	PermanentAddress string `json:"permanent_address"`
	CurrentAddress   string `json:"current_address"`
	City             string `json:"city"`
	State            string `json:"state"`
	Pincode          string `json:"pincode"`
}

// Parent is one parent or guardian record.
type Parent struct {
	Relation   string `json:"relation" validate:"required"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name"`
	Occupation string `json:"occupation"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
}

// EducationRecord is one pre-university qualification.
type EducationRecord struct {
	Level          string  `json:"level" validate:"required"`
	Institution    string  `json:"institution" validate:"required"`
	Board          string  `json:"board"`
	YearOfPassing  int     `json:"year_of_passing"`
	PercentageCGPA float64 `json:"percentage_cgpa"`
}

// SemesterRecord is the academic outcome of one semester.
type SemesterRecord struct {
	Semester    int     `json:"semester" validate:"required,min=1"`
	SGPA        float64 `json:"sgpa"`
	CGPA        float64 `json:"cgpa"`
	Backlogs    int     `json:"backlogs"`
	Attendance  float64 `json:"attendance"`
	ResultState string  `json:"result_state"`
}

// ActivityCollection groups the repeatable activity sections of the
// profile. Every entry carries free-form skill tags.
type ActivityCollection struct {
	Projects         []Activity `json:"projects" validate:"omitempty,dive"`
	Internships      []Activity `json:"internships" validate:"omitempty,dive"`
	Trainings        []Activity `json:"trainings" validate:"omitempty,dive"`
	Certifications   []Activity `json:"certifications" validate:"omitempty,dive"`
	Publications     []Activity `json:"publications" validate:"omitempty,dive"`
	Extracurriculars []Activity `json:"extracurricular_activities" validate:"omitempty,dive"`
	OtherExperiences []Activity `json:"other_experiences" validate:"omitempty,dive"`
}

// Activity is a single entry in any of the activity sections.
type Activity struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Issuer      string   `json:"issuer"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	URL         string   `json:"url" validate:"omitempty,url"`
	Skills      []string `json:"skills"`
}
