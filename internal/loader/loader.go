// Package loader fills the reference tables from the registrar's query
// exports. These are straight CSV-to-table copies; the only processing is
// header mapping, type conversion, and the institution ignore list.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/acadex/transferrules/internal/catalog"
	"github.com/acadex/transferrules/internal/database"
)

// columns maps normalized header names to positions.
type columns map[string]int

func readHeader(cr *csv.Reader, required []string) (columns, int, error) {
	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("reading header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	cols := make(columns, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.ReplaceAll(name, "/", "_")
		cols[name] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, 0, fmt.Errorf("header missing column %q", name)
		}
	}
	return cols, len(header), nil
}

func (c columns) get(row []string, name string) string {
	return strings.TrimSpace(row[c[name]])
}

// Institutions parses the institutions export.
func Institutions(r io.Reader) ([]database.Institution, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	cols, nfields, err := readHeader(cr, []string{"code", "name"})
	if err != nil {
		return nil, err
	}

	var insts []database.Institution
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) != nfields {
			log.Printf("institutions line %d: expected %d fields, got %d; row skipped", line, nfields, len(row))
			continue
		}
		insts = append(insts, database.Institution{
			Code: cols.get(row, "code"),
			Name: cols.get(row, "name"),
		})
	}
	return insts, nil
}

// CatalogResult reports what a catalog load did.
type CatalogResult struct {
	Courses int
	Skipped int
	Ignored int
}

// Catalog streams the course-catalog export into the courses table,
// skipping offerings at ignore-list institutions.
func Catalog(r io.Reader, db *database.DB, ignoreInstitutions []string) (CatalogResult, error) {
	var res CatalogResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	required := []string{
		"institution", "course_id", "offer_nbr", "subject", "catalog_number",
		"min_units", "max_units", "crse_catalog_status",
	}
	cols, nfields, err := readHeader(cr, required)
	if err != nil {
		return res, err
	}

	ignore := make(map[string]bool, len(ignoreInstitutions))
	for _, code := range ignoreInstitutions {
		ignore[code] = true
	}

	if err := db.ClearCourses(); err != nil {
		return res, fmt.Errorf("clearing courses: %w", err)
	}

	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, err
		}
		line++
		if len(row) != nfields {
			log.Printf("catalog line %d: expected %d fields, got %d; row skipped", line, nfields, len(row))
			res.Skipped++
			continue
		}

		inst := cols.get(row, "institution")
		if ignore[inst] || strings.HasPrefix(inst, "0000") {
			res.Ignored++
			continue
		}

		courseID, err1 := strconv.Atoi(cols.get(row, "course_id"))
		offerNbr, err2 := strconv.Atoi(cols.get(row, "offer_nbr"))
		if err1 != nil || err2 != nil {
			log.Printf("catalog line %d: unparsable course_id/offer_nbr; row skipped", line)
			res.Skipped++
			continue
		}

		c := catalog.Course{
			CourseID:      courseID,
			OfferNbr:      offerNbr,
			Institution:   inst,
			Discipline:    cols.get(row, "subject"),
			CatalogNumber: cols.get(row, "catalog_number"),
			MinCredits:    parseFloat(cols.get(row, "min_units")),
			MaxCredits:    parseFloat(cols.get(row, "max_units")),
			CourseStatus:  cols.get(row, "crse_catalog_status"),
			Designation:   optional(cols, row, "designation"),
			SubjectTag:    optional(cols, row, "subject_external_area"),
		}

		inserted, err := db.InsertCourse(c)
		if err != nil {
			return res, fmt.Errorf("inserting course %d.%d: %w", courseID, offerNbr, err)
		}
		if !inserted {
			log.Printf("catalog line %d: duplicate offering %d.%d; row skipped", line, courseID, offerNbr)
			res.Skipped++
			continue
		}
		res.Courses++
	}
	return res, nil
}

func optional(cols columns, row []string, name string) string {
	i, ok := cols[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
