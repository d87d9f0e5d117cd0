package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- URLs table: one row per URL ever fetched
CREATE TABLE IF NOT EXISTS urls (
    url_id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL UNIQUE,
    domain TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_urls_domain ON urls(domain);

-- Pages table: most recent raw HTML per URL
CREATE TABLE IF NOT EXISTS pages (
    url_id INTEGER PRIMARY KEY,
    html BLOB NOT NULL,
    content_hash TEXT NOT NULL,
    fetched_at INTEGER NOT NULL, -- unix seconds
    FOREIGN KEY (url_id) REFERENCES urls(url_id) ON DELETE CASCADE
);

-- Accesses table: every fetch attempt tracked
CREATE TABLE IF NOT EXISTS accesses (
    access_id INTEGER PRIMARY KEY AUTOINCREMENT,
    url_id INTEGER NOT NULL,
    status_code INTEGER,
    error_type TEXT,
    success BOOLEAN NOT NULL,
    accessed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (url_id) REFERENCES urls(url_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_accesses_url ON accesses(url_id);
`
