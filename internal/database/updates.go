package database

// StampUpdate records which query file populated a table, replacing any
// previous stamp for the same table.
func (db *DB) StampUpdate(stamp UpdateStamp) error {
	_, err := db.conn.Exec(
		`INSERT INTO updates (table_name, update_date, file_name, run_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(table_name) DO UPDATE SET
		update_date = excluded.update_date,
		file_name = excluded.file_name,
		run_id = excluded.run_id`,
		stamp.TableName, stamp.UpdateDate, stamp.FileName, stamp.RunID,
	)
	return err
}

// GetUpdateStamps returns every table's latest stamp, ordered by name.
func (db *DB) GetUpdateStamps() ([]UpdateStamp, error) {
	rows, err := db.conn.Query(
		"SELECT table_name, update_date, file_name, run_id FROM updates ORDER BY table_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UpdateStamp
	for rows.Next() {
		var s UpdateStamp
		if err := rows.Scan(&s.TableName, &s.UpdateDate, &s.FileName, &s.RunID); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
