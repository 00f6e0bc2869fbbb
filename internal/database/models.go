package database

// Institution is one row of the authoritative institutions table.
type Institution struct {
	Code string
	Name string
}

// TransferRule is one persisted rule row.
type TransferRule struct {
	ID                     int64
	SourceInstitution      string
	DestinationInstitution string
	SubjectArea            string
	GroupNumber            int
	Disciplines            string
	Subjects               string
	SourceCreditSources    string
	DestCreditSources      string
	TransferPriority       int
	EffectiveDate          string
	ReviewStatus           int
}

// SourceCourseRow is one persisted source-course member.
type SourceCourseRow struct {
	ID            int64
	RuleID        int64
	CourseID      int
	OfferNbr      int
	OfferCount    int
	Discipline    string
	CatalogNumber string
	SubjectTag    string
	MinCredits    float64
	MaxCredits    float64
	CreditSource  string
	MinGPA        float64
	MaxGPA        float64
	Aliases       string
}

// DestinationCourseRow is one persisted destination-course member.
type DestinationCourseRow struct {
	ID              int64
	RuleID          int64
	CourseID        int
	OfferNbr        int
	OfferCount      int
	Discipline      string
	CatalogNumber   string
	SubjectTag      string
	TransferCredits float64
	CreditSource    string
	IsMessage       bool
	IsBlanket       bool
}

// UpdateStamp records which query file last populated a table.
type UpdateStamp struct {
	TableName  string
	UpdateDate string
	FileName   string
	RunID      string
}
