package rules

import (
	"strings"
	"testing"
	"time"
)

func newTestAggregator(t *testing.T) (*Aggregator, *capturedLog) {
	t.Helper()
	log := newCapturedLog()
	return NewAggregator(log.Log), log
}

func sampleContribution() Contribution {
	return Contribution{
		Source: SourceMember{
			CourseID: 1001, OfferNbr: 1, OfferCount: 1,
			Discipline: "MATH", CatalogNumber: "101",
			MinCredits: 3, MaxCredits: 4, CreditSource: "R",
			MinGPA: 2.0, MaxGPA: 4.0,
		},
		Destination: DestinationMember{
			CourseID: 2002, OfferNbr: 1, OfferCount: 1,
			Discipline: "PHYS", CatalogNumber: "201",
			TransferCredits: 3, CreditSource: "E",
		},
		Disciplines: []string{"MATH", "PHYS"},
		Subjects:    []string{"MAT"},
		Priority:    1,
	}
}

func TestAddDeduplicatesIdenticalContributions(t *testing.T) {
	agg, _ := newTestAggregator(t)
	key := RuleKey{"QCC01", "LEH01", "MATH", 5}

	agg.Add(key, sampleContribution())
	agg.Add(key, sampleContribution())

	rules := agg.Finalize()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if len(rules[0].SourceCourses) != 1 || len(rules[0].DestinationCourses) != 1 {
		t.Errorf("expected 1 member per side, got %d/%d",
			len(rules[0].SourceCourses), len(rules[0].DestinationCourses))
	}
}

func TestAddUnionsSetsAndRaisesDate(t *testing.T) {
	agg, _ := newTestAggregator(t)
	key := RuleKey{"QCC01", "LEH01", "MATH", 5}

	first := sampleContribution()
	first.EffectiveDate = time.Date(2019, 1, 15, 0, 0, 0, 0, time.UTC)
	agg.Add(key, first)

	second := sampleContribution()
	second.Source.CourseID = 1002
	second.Source.CatalogNumber = "102"
	second.Source.CreditSource = "C"
	second.Disciplines = []string{"CSCI"}
	second.EffectiveDate = time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	agg.Add(key, second)

	// Earlier date must not lower the stored one.
	third := sampleContribution()
	third.EffectiveDate = time.Date(2018, 3, 3, 0, 0, 0, 0, time.UTC)
	agg.Add(key, third)

	rules := agg.Finalize()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	r := rules[0]
	if r.Disciplines != "CSCI:MATH:PHYS" {
		t.Errorf("expected discipline union CSCI:MATH:PHYS, got %q", r.Disciplines)
	}
	if r.SourceCreditTags != "C:R" {
		t.Errorf("expected source credit tags C:R, got %q", r.SourceCreditTags)
	}
	if r.EffectiveDate != "2020-06-01" {
		t.Errorf("expected effective date 2020-06-01, got %q", r.EffectiveDate)
	}
	if len(r.SourceCourses) != 2 {
		t.Errorf("expected 2 source members, got %d", len(r.SourceCourses))
	}
}

func TestPriorityConflictKeepsFirstSeen(t *testing.T) {
	agg, log := newTestAggregator(t)
	key := RuleKey{"QCC01", "LEH01", "MATH", 5}

	first := sampleContribution()
	first.Priority = 2
	agg.Add(key, first)

	second := sampleContribution()
	second.Priority = 7
	agg.Add(key, second)

	rules := agg.Finalize()
	if rules[0].Priority != 2 {
		t.Errorf("expected first-seen priority 2, got %d", rules[0].Priority)
	}
	if !strings.Contains(log.String(), "Conflicting transfer priority") {
		t.Error("expected a priority conflict log line")
	}
}

func TestDiscardRemovesRuleAndBlocksLaterAdds(t *testing.T) {
	agg, _ := newTestAggregator(t)
	key := RuleKey{"QCC01", "LEH01", "MATH", 5}

	agg.Add(key, sampleContribution())
	agg.Discard(key)
	agg.Add(key, sampleContribution())

	if !agg.Discarded(key) {
		t.Error("expected key to be discarded")
	}
	if rules := agg.Finalize(); len(rules) != 0 {
		t.Errorf("expected 0 rules after discard, got %d", len(rules))
	}
}

func TestFinalizeOrdersRulesAndMembers(t *testing.T) {
	agg, _ := newTestAggregator(t)

	later := RuleKey{"QCC01", "LEH01", "PHYS", 1}
	earlier := RuleKey{"BCC01", "LEH01", "MATH", 2}
	agg.Add(later, sampleContribution())

	c := sampleContribution()
	c.Source.CourseID = 1003
	c.Source.CatalogNumber = "210W"
	agg.Add(earlier, c)
	c2 := sampleContribution()
	c2.Source.CourseID = 1004
	c2.Source.CatalogNumber = "110"
	agg.Add(earlier, c2)

	rules := agg.Finalize()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if !rules[0].Key.Less(rules[1].Key) {
		t.Errorf("rules out of order: %s before %s", rules[0].Key, rules[1].Key)
	}
	members := rules[0].SourceCourses
	if len(members) != 2 || members[0].CatalogNumber != "110" {
		t.Errorf("expected members sorted by numeric catalog portion, got %+v", members)
	}
}

func TestCatalogNumberValue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"101", 101, true},
		{"101W", 101, true},
		{"12.5", 12.5, true},
		{"LAB", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := catalogNumberValue(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("catalogNumberValue(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
