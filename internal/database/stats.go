package database

// Stats summarizes table sizes for the status command.
type Stats struct {
	Institutions       int
	Courses            int
	Rules              int
	SourceCourses      int
	DestinationCourses int
}

// GetStats returns row counts for the main tables.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}
	counts := []struct {
		table string
		dest  *int
	}{
		{"institutions", &stats.Institutions},
		{"courses", &stats.Courses},
		{"transfer_rules", &stats.Rules},
		{"source_courses", &stats.SourceCourses},
		{"destination_courses", &stats.DestinationCourses},
	}
	for _, c := range counts {
		if err := db.conn.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	return stats, nil
}
