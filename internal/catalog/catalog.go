// Package catalog holds the in-memory index of the course catalog used to
// validate and resolve the course references in the transfer-rule feed.
package catalog

// Course is one physical offering from the course catalog. Cross-listed
// courses share a CourseID across several OfferNbr values.
type Course struct {
	CourseID      int
	OfferNbr      int
	Institution   string
	Discipline    string
	CatalogNumber string
	MinCredits    float64
	MaxCredits    float64
	CourseStatus  string
	Designation   string
	SubjectTag    string
}

// Active reports whether the offering is active in the catalog.
func (c Course) Active() bool {
	return c.CourseStatus == "A"
}

// Index maps each course_id to all of its offerings. It is built once per
// run and never mutated afterwards.
type Index struct {
	byID map[int][]Course
}

// Load builds an index from catalog rows, grouping offerings that share a
// course_id.
func Load(courses []Course) *Index {
	idx := &Index{byID: make(map[int][]Course, len(courses))}
	for _, c := range courses {
		idx.byID[c.CourseID] = append(idx.byID[c.CourseID], c)
	}
	return idx
}

// Lookup returns every offering of a course_id, or nil if the id is not
// in the catalog.
func (idx *Index) Lookup(courseID int) []Course {
	return idx.byID[courseID]
}

// Len returns the number of distinct course_ids in the index.
func (idx *Index) Len() int {
	return len(idx.byID)
}
