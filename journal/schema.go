package journal

const Schema = `
CREATE TABLE IF NOT EXISTS commands (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	identity TEXT NOT NULL,
	command TEXT NOT NULL,
	text TEXT NOT NULL,
	outcome TEXT NOT NULL,
	detail TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_commands_time ON commands(time);
`
