package database

import (
	"path/filepath"
	"testing"

	"github.com/acadex/transferrules/internal/catalog"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedInstitutions(t *testing.T, db *DB) {
	t.Helper()
	_, err := db.ReplaceInstitutions([]Institution{
		{Code: "QCC01", Name: "Queensborough"},
		{Code: "LEH01", Name: "Lehman"},
	})
	if err != nil {
		t.Fatalf("seeding institutions: %v", err)
	}
}

func TestReplaceInstitutions(t *testing.T) {
	db := openTestDB(t)
	seedInstitutions(t, db)

	codes, err := db.GetInstitutionCodes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(codes) != 2 || !codes["QCC01"] || !codes["LEH01"] {
		t.Errorf("unexpected institution set: %v", codes)
	}

	// Replace drops the old set entirely.
	if _, err := db.ReplaceInstitutions([]Institution{{Code: "BCC01", Name: "Bronx"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	codes, _ = db.GetInstitutionCodes()
	if len(codes) != 1 || !codes["BCC01"] {
		t.Errorf("expected only BCC01 after replace, got %v", codes)
	}
}

func TestInsertCourseDeduplicates(t *testing.T) {
	db := openTestDB(t)
	seedInstitutions(t, db)

	c := catalog.Course{CourseID: 1001, OfferNbr: 1, Institution: "QCC01",
		Discipline: "MATH", CatalogNumber: "101", MinCredits: 3, MaxCredits: 4,
		CourseStatus: "A"}

	inserted, err := db.InsertCourse(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inserted {
		t.Error("expected first insert to succeed")
	}

	inserted, err = db.InsertCourse(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted {
		t.Error("expected duplicate (course_id, offer_nbr) to be ignored")
	}

	n, _ := db.CountCourses()
	if n != 1 {
		t.Errorf("expected 1 course, got %d", n)
	}
}

func TestGetAllCoursesRoundTrip(t *testing.T) {
	db := openTestDB(t)
	seedInstitutions(t, db)

	want := catalog.Course{CourseID: 1001, OfferNbr: 2, Institution: "QCC01",
		Discipline: "CSCI", CatalogNumber: "107W", MinCredits: 3, MaxCredits: 4.5,
		CourseStatus: "I", Designation: "BKCR", SubjectTag: "COM"}
	if _, err := db.InsertCourse(want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	courses, err := db.GetAllCourses()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected 1 course, got %d", len(courses))
	}
	if courses[0] != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", courses[0], want)
	}
}

func TestStampUpdate(t *testing.T) {
	db := openTestDB(t)

	stamp := UpdateStamp{TableName: "transfer_rules", UpdateDate: "2025-08-30",
		FileName: "transfer_rules.csv", RunID: "run-1"}
	if err := db.StampUpdate(stamp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stamp.RunID = "run-2"
	if err := db.StampUpdate(stamp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stamps, err := db.GetUpdateStamps()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stamps) != 1 {
		t.Fatalf("expected 1 stamp, got %d", len(stamps))
	}
	if stamps[0].RunID != "run-2" {
		t.Errorf("expected latest run id, got %s", stamps[0].RunID)
	}
}

func TestGetStatsEmpty(t *testing.T) {
	db := openTestDB(t)
	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Institutions != 0 || stats.Rules != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}
}
