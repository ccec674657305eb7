package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Record(e Entry) error {
	_, err := j.db.Exec(`
		INSERT INTO commands
		(id, time, identity, command, text, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time, e.Identity, e.Command, e.Text, e.Outcome, e.Detail,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
