// Package feed streams the raw transfer-equivalency query file and turns
// each row into a typed record. Column order in the query export is not
// stable across extracts, so the header line drives field mapping.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Record is one structurally valid, transfer-eligible row of the feed.
type Record struct {
	SourceInstitution      string
	DestinationInstitution string
	ComponentSubjectArea   string
	GroupNumber            int
	SourceCourseID         int
	SourceOfferNbr         int
	DestinationCourseID    int
	DestinationOfferNbr    int
	MinGradePts            float64
	MaxGradePts            float64
	SrcMinUnits            float64
	SrcMaxUnits            float64
	DestMinUnits           float64
	DestMaxUnits           float64
	UnitsTaken             float64
	SubjectCreditSource    string
	ComponentCreditSource  string
	TransferPriority       int
	SubjectEffDate         time.Time
	ComponentEffDate       time.Time
	Line                   int
}

// EffectiveDate returns the latest of the record's effective dates.
func (r *Record) EffectiveDate() time.Time {
	if r.ComponentEffDate.After(r.SubjectEffDate) {
		return r.ComponentEffDate
	}
	return r.SubjectEffDate
}

// RowError describes a structurally malformed row. The row is rejected
// but processing continues.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// requiredColumns are the feed columns every extract must carry.
var requiredColumns = []string{
	"source_institution",
	"destination_institution",
	"component_subject_area",
	"src_equivalency_component",
	"source_course_id",
	"source_offer_nbr",
	"destination_course_id",
	"destination_offer_nbr",
	"min_grade_pts",
	"max_grade_pts",
	"units_taken",
	"subject_credit_source",
	"component_credit_source",
	"transfer_course",
}

// Counts tallies rows dropped by routine filtering, as opposed to rows
// rejected for anomalies.
type Counts struct {
	Rows       int
	Ineligible int
	Ignored    int
	Malformed  int
}

// InfoLogger receives informational drop notices (ignore-list hits).
type InfoLogger interface {
	Info(format string, args ...any)
}

// Reader streams records from the feed, applying the eligibility and
// ignore-list filters before any record reaches the resolution stages.
type Reader struct {
	csv     *csv.Reader
	cols    map[string]int
	nfields int
	line    int
	ignore  map[string]bool
	log     InfoLogger
	Counts  Counts
}

// NewReader reads the header line and builds the column mapping. Column
// names are lower-cased with spaces and slashes replaced by underscores;
// a UTF-8 BOM on the first name is stripped.
func NewReader(r io.Reader, ignoreInstitutions []string, log InfoLogger) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // length checked per row so bad rows reject, not abort

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading feed header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[normalizeColumn(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("feed header missing column %q", name)
		}
	}

	ignore := make(map[string]bool, len(ignoreInstitutions))
	for _, code := range ignoreInstitutions {
		ignore[code] = true
	}

	return &Reader{csv: cr, cols: cols, nfields: len(header), ignore: ignore, log: log}, nil
}

// normalizeColumn canonicalizes a header field name.
func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	return name
}

// Next returns the next eligible record. Rows dropped by routine filters
// are skipped silently; malformed rows produce a *RowError the caller is
// expected to log before continuing. io.EOF signals the end of the feed.
func (r *Reader) Next() (*Record, error) {
	for {
		row, err := r.csv.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		r.line++
		r.Counts.Rows++

		if len(row) != r.nfields {
			r.Counts.Malformed++
			return nil, &RowError{
				Line:   r.line,
				Reason: fmt.Sprintf("expected %d fields, got %d", r.nfields, len(row)),
			}
		}

		// Routine eligibility filter: not an anomaly, not logged.
		if r.field(row, "transfer_course") != "Y" {
			r.Counts.Ineligible++
			continue
		}

		src := r.field(row, "source_institution")
		dst := r.field(row, "destination_institution")
		if r.ignored(src) || r.ignored(dst) {
			r.Counts.Ignored++
			if r.log != nil {
				r.log.Info("Ignored institution pair %s-%s at line %d.", src, dst, r.line)
			}
			continue
		}

		rec, err := r.parse(row)
		if err != nil {
			r.Counts.Malformed++
			return nil, &RowError{Line: r.line, Reason: err.Error()}
		}
		return rec, nil
	}
}

// ignored reports whether an institution code is on the fixed ignore
// list. Placeholder codes beginning "0000" appear in the feed and are
// never real institutions.
func (r *Reader) ignored(code string) bool {
	return r.ignore[code] || strings.HasPrefix(code, "0000")
}

func (r *Reader) field(row []string, name string) string {
	return strings.TrimSpace(row[r.cols[name]])
}

// parse converts a raw row into a typed Record. Numeric fields that fail
// to parse make the row a structural reject.
func (r *Reader) parse(row []string) (*Record, error) {
	rec := &Record{
		SourceInstitution:      r.field(row, "source_institution"),
		DestinationInstitution: r.field(row, "destination_institution"),
		ComponentSubjectArea:   r.field(row, "component_subject_area"),
		SubjectCreditSource:    r.field(row, "subject_credit_source"),
		ComponentCreditSource:  r.field(row, "component_credit_source"),
		Line:                   r.line,
	}

	var err error
	if rec.GroupNumber, err = r.intField(row, "src_equivalency_component"); err != nil {
		return nil, err
	}
	if rec.SourceCourseID, err = r.intField(row, "source_course_id"); err != nil {
		return nil, err
	}
	if rec.SourceOfferNbr, err = r.intField(row, "source_offer_nbr"); err != nil {
		return nil, err
	}
	if rec.DestinationCourseID, err = r.intField(row, "destination_course_id"); err != nil {
		return nil, err
	}
	if rec.DestinationOfferNbr, err = r.intField(row, "destination_offer_nbr"); err != nil {
		return nil, err
	}
	if rec.MinGradePts, err = r.floatField(row, "min_grade_pts"); err != nil {
		return nil, err
	}
	if rec.MaxGradePts, err = r.floatField(row, "max_grade_pts"); err != nil {
		return nil, err
	}
	if rec.UnitsTaken, err = r.floatField(row, "units_taken"); err != nil {
		return nil, err
	}

	// Unit ranges and priority are optional columns in older extracts.
	rec.SrcMinUnits = r.optionalFloat(row, "src_min_units")
	rec.SrcMaxUnits = r.optionalFloat(row, "src_max_units")
	rec.DestMinUnits = r.optionalFloat(row, "dest_min_units")
	rec.DestMaxUnits = r.optionalFloat(row, "dest_max_units")
	rec.TransferPriority = r.optionalInt(row, "transfer_priority")
	rec.SubjectEffDate = r.optionalDate(row, "subject_eff_date")
	rec.ComponentEffDate = r.optionalDate(row, "component_eff_date")

	return rec, nil
}

func (r *Reader) intField(row []string, name string) (int, error) {
	v := r.field(row, name)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("column %s: unparsable integer %q", name, v)
	}
	return n, nil
}

func (r *Reader) floatField(row []string, name string) (float64, error) {
	v := r.field(row, name)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: unparsable number %q", name, v)
	}
	return f, nil
}

func (r *Reader) optionalFloat(row []string, name string) float64 {
	i, ok := r.cols[name]
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil {
		return 0
	}
	return f
}

func (r *Reader) optionalInt(row []string, name string) int {
	i, ok := r.cols[name]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(row[i]))
	if err != nil {
		return 0
	}
	return n
}

// optionalDate parses the query export's month/day/year date form.
func (r *Reader) optionalDate(row []string, name string) time.Time {
	i, ok := r.cols[name]
	if !ok {
		return time.Time{}
	}
	v := strings.TrimSpace(row[i])
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{"01/02/2006", "1/2/2006", "01/02/06"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
