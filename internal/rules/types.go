// Package rules reconciles the raw transfer-equivalency feed against the
// course catalog, producing a deduplicated set of transfer rules.
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Destination designations that award generic rather than course-specific
// credit. On the source side they disqualify a contribution.
const (
	DesignationMessage = "MSG"  // zero-credit message designation
	DesignationBlanket = "BKCR" // blanket credit
)

// RuleKey is the primary identity of a rule. Every raw record sharing the
// key belongs to the same rule. SubjectArea is an opaque upstream label,
// not a controlled vocabulary.
type RuleKey struct {
	SourceInstitution      string
	DestinationInstitution string
	SubjectArea            string
	GroupNumber            int
}

// String renders the key in the hyphen-separated form used throughout the
// conflict log.
func (k RuleKey) String() string {
	return fmt.Sprintf("%s-%s-%s-%d",
		k.SourceInstitution, k.DestinationInstitution, k.SubjectArea, k.GroupNumber)
}

// Less orders keys component by component for deterministic output.
func (k RuleKey) Less(o RuleKey) bool {
	if k.SourceInstitution != o.SourceInstitution {
		return k.SourceInstitution < o.SourceInstitution
	}
	if k.DestinationInstitution != o.DestinationInstitution {
		return k.DestinationInstitution < o.DestinationInstitution
	}
	if k.SubjectArea != o.SubjectArea {
		return k.SubjectArea < o.SubjectArea
	}
	return k.GroupNumber < o.GroupNumber
}

// SourceMember is one qualifying source course of a rule. Members are
// value types so set semantics fall out of map-key equality.
type SourceMember struct {
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

// DestinationMember is one destination course of a rule.
type DestinationMember struct {
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

// Rule is a finalized aggregate ready for persistence.
type Rule struct {
	Key                RuleKey
	SourceCourses      []SourceMember
	DestinationCourses []DestinationMember
	Disciplines        string // colon-joined, sorted
	Subjects           string // colon-joined, sorted
	SourceCreditTags   string
	DestCreditTags     string
	Priority           int
	EffectiveDate      string // ISO date, empty if no record carried one
	ReviewStatus       int
}

var catalogNumberRE = regexp.MustCompile(`[0-9]+(\.[0-9]+)?`)

// catalogNumberValue extracts the numeric portion of a catalog number
// ("101W" -> 101). ok is false when the catalog number carries no digits.
func catalogNumberValue(catalogNumber string) (float64, bool) {
	m := catalogNumberRE.FindString(catalogNumber)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// joinSet renders a string set as the colon-delimited, sorted summary
// form stored on the rule row.
func joinSet(set map[string]struct{}) string {
	if len(set) == 0 {
		return ""
	}
	items := make([]string, 0, len(set))
	for s := range set {
		items = append(items, s)
	}
	sort.Strings(items)
	return strings.Join(items, ":")
}
