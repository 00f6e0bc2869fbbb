package catalog

import "testing"

func TestLookupGroupsOfferings(t *testing.T) {
	idx := Load([]Course{
		{CourseID: 1001, OfferNbr: 1, Discipline: "MATH"},
		{CourseID: 1001, OfferNbr: 2, Discipline: "CSCI"},
		{CourseID: 2002, OfferNbr: 1, Discipline: "PHYS"},
	})

	offerings := idx.Lookup(1001)
	if len(offerings) != 2 {
		t.Fatalf("expected 2 offerings for 1001, got %d", len(offerings))
	}
	if idx.Len() != 2 {
		t.Errorf("expected 2 distinct course ids, got %d", idx.Len())
	}
}

func TestLookupUnknownCourse(t *testing.T) {
	idx := Load(nil)
	if got := idx.Lookup(9999); got != nil {
		t.Errorf("expected nil for unknown course, got %v", got)
	}
}

func TestActive(t *testing.T) {
	if !(Course{CourseStatus: "A"}).Active() {
		t.Error("status A should be active")
	}
	if (Course{CourseStatus: "I"}).Active() {
		t.Error("status I should be inactive")
	}
}
