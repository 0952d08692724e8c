package storage

// HistorySchema is the SQL schema for the query history database.
const HistorySchema = `
CREATE TABLE IF NOT EXISTS query_history (
    id          TEXT PRIMARY KEY,
    query       TEXT NOT NULL,
    kind        TEXT NOT NULL DEFAULT 'standard'
                CHECK(kind IN ('standard', 'advanced')),
    result      TEXT NOT NULL CHECK(json_valid(result)),
    created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_query_history_created ON query_history(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_query_history_kind ON query_history(kind, created_at DESC);
`

// dsnPragmas configures SQLite for a single-writer, many-reader workload.
const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=cache_size(-16000)"
