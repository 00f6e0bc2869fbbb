package database

import (
	"testing"

	"github.com/acadex/transferrules/internal/rules"
)

func sampleRules() []rules.Rule {
	return []rules.Rule{
		{
			Key: rules.RuleKey{SourceInstitution: "QCC01", DestinationInstitution: "LEH01",
				SubjectArea: "MATH", GroupNumber: 5},
			SourceCourses: []rules.SourceMember{
				{CourseID: 1001, OfferNbr: 1, OfferCount: 2, Discipline: "MATH",
					CatalogNumber: "101", MinCredits: 3, MaxCredits: 4, CreditSource: "R",
					MinGPA: 2.0, MaxGPA: 4.0, Aliases: "1001.2"},
			},
			DestinationCourses: []rules.DestinationMember{
				{CourseID: 2002, OfferNbr: 1, OfferCount: 1, Discipline: "PHYS",
					CatalogNumber: "201", TransferCredits: 3, CreditSource: "E"},
			},
			Disciplines:      "CSCI:MATH:PHYS",
			Subjects:         "COM:MAT",
			SourceCreditTags: "R",
			DestCreditTags:   "E",
			Priority:         1,
			EffectiveDate:    "2020-06-01",
		},
	}
}

func TestReplaceRulesRoundTrip(t *testing.T) {
	db := openTestDB(t)

	counts, err := db.ReplaceRules(sampleRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts.Rules != 1 || counts.SourceCourses != 1 || counts.DestinationCourses != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}

	persisted, err := db.GetRules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(persisted))
	}
	r := persisted[0]
	if r.SubjectArea != "MATH" || r.GroupNumber != 5 {
		t.Errorf("unexpected rule row: %+v", r)
	}
	if r.Disciplines != "CSCI:MATH:PHYS" {
		t.Errorf("expected denormalized discipline summary, got %q", r.Disciplines)
	}
	if r.ReviewStatus != 0 {
		t.Errorf("expected review status initialized to 0, got %d", r.ReviewStatus)
	}

	srcs, err := db.GetSourceCourses(r.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(srcs) != 1 || srcs[0].CourseID != 1001 || srcs[0].Aliases != "1001.2" {
		t.Errorf("unexpected source members: %+v", srcs)
	}

	dests, err := db.GetDestinationCourses(r.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dests) != 1 || dests[0].CourseID != 2002 || dests[0].TransferCredits != 3 {
		t.Errorf("unexpected destination members: %+v", dests)
	}
}

func TestReplaceRulesClearsPreviousSet(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.ReplaceRules(sampleRules()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	replacement := sampleRules()
	replacement[0].Key.GroupNumber = 9
	if _, err := db.ReplaceRules(replacement); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	persisted, _ := db.GetRules()
	if len(persisted) != 1 {
		t.Fatalf("expected previous set cleared, got %d rules", len(persisted))
	}
	if persisted[0].GroupNumber != 9 {
		t.Errorf("expected replacement rule, got group %d", persisted[0].GroupNumber)
	}
}

func TestReplaceRulesIdempotent(t *testing.T) {
	db := openTestDB(t)

	first, err := db.ReplaceRules(sampleRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := db.ReplaceRules(sampleRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("expected identical counts across rebuilds: %+v vs %+v", first, second)
	}

	persisted, _ := db.GetRules()
	srcs, _ := db.GetSourceCourses(persisted[0].ID)
	if len(srcs) != 1 {
		t.Errorf("expected 1 source member after rebuild, got %d", len(srcs))
	}
}
