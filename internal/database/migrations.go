package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS institutions (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS courses (
    course_id INTEGER NOT NULL,
    offer_nbr INTEGER NOT NULL,
    institution TEXT NOT NULL REFERENCES institutions(code),
    discipline TEXT NOT NULL,
    catalog_number TEXT NOT NULL,
    min_credits REAL DEFAULT 0,
    max_credits REAL DEFAULT 0,
    course_status TEXT DEFAULT 'A',
    designation TEXT DEFAULT '',
    subject_tag TEXT DEFAULT '',
    PRIMARY KEY (course_id, offer_nbr)
);

CREATE TABLE IF NOT EXISTS transfer_rules (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_institution TEXT NOT NULL,
    destination_institution TEXT NOT NULL,
    subject_area TEXT NOT NULL,
    group_number INTEGER NOT NULL,
    disciplines TEXT DEFAULT '',
    subjects TEXT DEFAULT '',
    source_credit_sources TEXT DEFAULT '',
    destination_credit_sources TEXT DEFAULT '',
    transfer_priority INTEGER DEFAULT 0,
    effective_date TEXT DEFAULT '',
    review_status INTEGER DEFAULT 0,
    UNIQUE (source_institution, destination_institution, subject_area, group_number)
);

CREATE TABLE IF NOT EXISTS source_courses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    rule_id INTEGER NOT NULL REFERENCES transfer_rules(id),
    course_id INTEGER NOT NULL,
    offer_nbr INTEGER NOT NULL,
    offer_count INTEGER DEFAULT 1,
    discipline TEXT NOT NULL,
    catalog_number TEXT NOT NULL,
    subject_tag TEXT DEFAULT '',
    min_credits REAL DEFAULT 0,
    max_credits REAL DEFAULT 0,
    credit_source TEXT DEFAULT '',
    min_gpa REAL DEFAULT 0,
    max_gpa REAL DEFAULT 0,
    aliases TEXT DEFAULT ''
);

CREATE TABLE IF NOT EXISTS destination_courses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    rule_id INTEGER NOT NULL REFERENCES transfer_rules(id),
    course_id INTEGER NOT NULL,
    offer_nbr INTEGER NOT NULL,
    offer_count INTEGER DEFAULT 1,
    discipline TEXT NOT NULL,
    catalog_number TEXT NOT NULL,
    subject_tag TEXT DEFAULT '',
    transfer_credits REAL DEFAULT 0,
    credit_source TEXT DEFAULT '',
    is_message INTEGER DEFAULT 0,
    is_blanket INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS updates (
    table_name TEXT PRIMARY KEY,
    update_date TEXT,
    file_name TEXT,
    run_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_courses_institution ON courses(institution);
CREATE INDEX IF NOT EXISTS idx_source_courses_rule ON source_courses(rule_id);
CREATE INDEX IF NOT EXISTS idx_destination_courses_rule ON destination_courses(rule_id);
`)
			return err
		},
	},
}
