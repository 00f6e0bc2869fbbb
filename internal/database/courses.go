package database

import "github.com/acadex/transferrules/internal/catalog"

// InsertCourse inserts one catalog offering. Returns false if the
// (course_id, offer_nbr) pair already exists.
func (db *DB) InsertCourse(c catalog.Course) (bool, error) {
	result, err := db.conn.Exec(
		`INSERT OR IGNORE INTO courses
		(course_id, offer_nbr, institution, discipline, catalog_number,
		 min_credits, max_credits, course_status, designation, subject_tag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CourseID, c.OfferNbr, c.Institution, c.Discipline, c.CatalogNumber,
		c.MinCredits, c.MaxCredits, c.CourseStatus, c.Designation, c.SubjectTag,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClearCourses empties the courses table before a catalog reload.
func (db *DB) ClearCourses() error {
	_, err := db.conn.Exec("DELETE FROM courses")
	return err
}

// GetAllCourses returns every catalog offering, ordered for a stable
// cache build.
func (db *DB) GetAllCourses() ([]catalog.Course, error) {
	rows, err := db.conn.Query(
		`SELECT course_id, offer_nbr, institution, discipline, catalog_number,
		 min_credits, max_credits, course_status, designation, subject_tag
		 FROM courses ORDER BY course_id, offer_nbr`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []catalog.Course
	for rows.Next() {
		var c catalog.Course
		if err := rows.Scan(&c.CourseID, &c.OfferNbr, &c.Institution, &c.Discipline,
			&c.CatalogNumber, &c.MinCredits, &c.MaxCredits, &c.CourseStatus,
			&c.Designation, &c.SubjectTag); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// CountCourses returns the number of catalog offerings.
func (db *DB) CountCourses() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM courses").Scan(&n)
	return n, err
}
