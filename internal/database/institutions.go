package database

// ReplaceInstitutions clears and repopulates the institutions table in a
// single transaction.
func (db *DB) ReplaceInstitutions(insts []Institution) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM institutions"); err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare("INSERT INTO institutions (code, name) VALUES (?, ?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, inst := range insts {
		if _, err := stmt.Exec(inst.Code, inst.Name); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(insts), nil
}

// GetInstitutionCodes returns the set of valid institution codes.
// The feed contains invalid codes, so this table is definitive.
func (db *DB) GetInstitutionCodes() (map[string]bool, error) {
	rows, err := db.conn.Query("SELECT code FROM institutions ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make(map[string]bool)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes[code] = true
	}
	return codes, rows.Err()
}
