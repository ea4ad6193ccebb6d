package catalog

const schema = `
CREATE TABLE IF NOT EXISTS files (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	path          TEXT NOT NULL UNIQUE,
	leaf          TEXT NOT NULL,
	ext           TEXT NOT NULL,
	size_bytes    INTEGER NOT NULL,
	created_at    TEXT NOT NULL,
	modified_at   TEXT NOT NULL,
	accessed_at   TEXT NOT NULL,
	owner         TEXT NOT NULL DEFAULT '',
	read_only     INTEGER NOT NULL DEFAULT 0,
	is_dir        INTEGER NOT NULL DEFAULT 0,
	parent_path   TEXT NOT NULL DEFAULT '',
	scan_batch    TEXT NOT NULL DEFAULT '',
	is_redirected INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS classifications (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id       INTEGER NOT NULL UNIQUE REFERENCES files(id),
	action        TEXT NOT NULL,
	confidence    REAL NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '',
	overridden    INTEGER NOT NULL DEFAULT 0,
	override_why  TEXT NOT NULL DEFAULT '',
	classified_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_decisions (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id      INTEGER NOT NULL UNIQUE REFERENCES files(id),
	decision     TEXT NOT NULL,
	replacement  TEXT NOT NULL DEFAULT '',
	has_replace  INTEGER NOT NULL DEFAULT 0,
	decided_at   TEXT NOT NULL,
	executed     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS action_log (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id          INTEGER NOT NULL DEFAULT 0,
	has_file_id      INTEGER NOT NULL DEFAULT 0,
	kind             TEXT NOT NULL,
	source_path      TEXT NOT NULL,
	dest_path        TEXT NOT NULL DEFAULT '',
	checksum_before  TEXT NOT NULL DEFAULT '',
	checksum_after   TEXT NOT NULL DEFAULT '',
	batch_id         TEXT NOT NULL,
	executed_at      TEXT NOT NULL,
	undone           INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS installed_applications (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL,
	registry_key TEXT NOT NULL UNIQUE,
	install_path TEXT NOT NULL DEFAULT '',
	publisher    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS directory_aggregates (
	path        TEXT PRIMARY KEY,
	total_bytes INTEGER NOT NULL,
	file_count  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_action_log_batch ON action_log(batch_id);
CREATE INDEX IF NOT EXISTS idx_files_scan_batch ON files(scan_batch);
`

func (c *Catalog) migrate() error {
	_, err := c.db.Exec(schema)
	return err
}
