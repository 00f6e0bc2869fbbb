package database

import (
	"fmt"

	"github.com/acadex/transferrules/internal/rules"
)

// WriteCounts reports how many rows a rebuild inserted.
type WriteCounts struct {
	Rules              int
	SourceCourses      int
	DestinationCourses int
}

// ReplaceRules clears and repopulates the three rule tables from a
// finalized rule set. The whole rebuild runs in one transaction so an
// interrupted run leaves the previous rule set intact.
func (db *DB) ReplaceRules(ruleSet []rules.Rule) (WriteCounts, error) {
	var counts WriteCounts

	tx, err := db.conn.Begin()
	if err != nil {
		return counts, fmt.Errorf("beginning rule rebuild: %w", err)
	}
	defer tx.Rollback()

	// Children first so the foreign keys stay satisfied.
	for _, table := range []string{"destination_courses", "source_courses", "transfer_rules"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return counts, fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	ruleStmt, err := tx.Prepare(
		`INSERT INTO transfer_rules
		(source_institution, destination_institution, subject_area, group_number,
		 disciplines, subjects, source_credit_sources, destination_credit_sources,
		 transfer_priority, effective_date, review_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return counts, err
	}
	defer ruleStmt.Close()

	srcStmt, err := tx.Prepare(
		`INSERT INTO source_courses
		(rule_id, course_id, offer_nbr, offer_count, discipline, catalog_number,
		 subject_tag, min_credits, max_credits, credit_source, min_gpa, max_gpa, aliases)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return counts, err
	}
	defer srcStmt.Close()

	destStmt, err := tx.Prepare(
		`INSERT INTO destination_courses
		(rule_id, course_id, offer_nbr, offer_count, discipline, catalog_number,
		 subject_tag, transfer_credits, credit_source, is_message, is_blanket)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return counts, err
	}
	defer destStmt.Close()

	for _, r := range ruleSet {
		result, err := ruleStmt.Exec(
			r.Key.SourceInstitution, r.Key.DestinationInstitution,
			r.Key.SubjectArea, r.Key.GroupNumber,
			r.Disciplines, r.Subjects, r.SourceCreditTags, r.DestCreditTags,
			r.Priority, r.EffectiveDate, r.ReviewStatus,
		)
		if err != nil {
			return counts, fmt.Errorf("inserting rule %s: %w", r.Key, err)
		}
		ruleID, err := result.LastInsertId()
		if err != nil {
			return counts, err
		}
		counts.Rules++

		for _, m := range r.SourceCourses {
			if _, err := srcStmt.Exec(ruleID, m.CourseID, m.OfferNbr, m.OfferCount,
				m.Discipline, m.CatalogNumber, m.SubjectTag, m.MinCredits, m.MaxCredits,
				m.CreditSource, m.MinGPA, m.MaxGPA, m.Aliases); err != nil {
				return counts, fmt.Errorf("inserting source course %d for rule %s: %w",
					m.CourseID, r.Key, err)
			}
			counts.SourceCourses++
		}

		for _, m := range r.DestinationCourses {
			if _, err := destStmt.Exec(ruleID, m.CourseID, m.OfferNbr, m.OfferCount,
				m.Discipline, m.CatalogNumber, m.SubjectTag, m.TransferCredits,
				m.CreditSource, m.IsMessage, m.IsBlanket); err != nil {
				return counts, fmt.Errorf("inserting destination course %d for rule %s: %w",
					m.CourseID, r.Key, err)
			}
			counts.DestinationCourses++
		}
	}

	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("committing rule rebuild: %w", err)
	}
	return counts, nil
}

// GetRules returns every persisted rule in key order.
func (db *DB) GetRules() ([]TransferRule, error) {
	rows, err := db.conn.Query(
		`SELECT id, source_institution, destination_institution, subject_area,
		 group_number, disciplines, subjects, source_credit_sources,
		 destination_credit_sources, transfer_priority, effective_date, review_status
		 FROM transfer_rules
		 ORDER BY source_institution, destination_institution, subject_area, group_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransferRule
	for rows.Next() {
		var r TransferRule
		if err := rows.Scan(&r.ID, &r.SourceInstitution, &r.DestinationInstitution,
			&r.SubjectArea, &r.GroupNumber, &r.Disciplines, &r.Subjects,
			&r.SourceCreditSources, &r.DestCreditSources, &r.TransferPriority,
			&r.EffectiveDate, &r.ReviewStatus); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetSourceCourses returns the source members of one rule in insert order.
func (db *DB) GetSourceCourses(ruleID int64) ([]SourceCourseRow, error) {
	rows, err := db.conn.Query(
		`SELECT id, rule_id, course_id, offer_nbr, offer_count, discipline,
		 catalog_number, subject_tag, min_credits, max_credits, credit_source,
		 min_gpa, max_gpa, aliases
		 FROM source_courses WHERE rule_id = ? ORDER BY id`, ruleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceCourseRow
	for rows.Next() {
		var m SourceCourseRow
		if err := rows.Scan(&m.ID, &m.RuleID, &m.CourseID, &m.OfferNbr, &m.OfferCount,
			&m.Discipline, &m.CatalogNumber, &m.SubjectTag, &m.MinCredits, &m.MaxCredits,
			&m.CreditSource, &m.MinGPA, &m.MaxGPA, &m.Aliases); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetDestinationCourses returns the destination members of one rule in
// insert order.
func (db *DB) GetDestinationCourses(ruleID int64) ([]DestinationCourseRow, error) {
	rows, err := db.conn.Query(
		`SELECT id, rule_id, course_id, offer_nbr, offer_count, discipline,
		 catalog_number, subject_tag, transfer_credits, credit_source,
		 is_message, is_blanket
		 FROM destination_courses WHERE rule_id = ? ORDER BY id`, ruleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DestinationCourseRow
	for rows.Next() {
		var m DestinationCourseRow
		if err := rows.Scan(&m.ID, &m.RuleID, &m.CourseID, &m.OfferNbr, &m.OfferCount,
			&m.Discipline, &m.CatalogNumber, &m.SubjectTag, &m.TransferCredits,
			&m.CreditSource, &m.IsMessage, &m.IsBlanket); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
