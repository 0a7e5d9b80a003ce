package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the template table.
const Schema = `
CREATE TABLE IF NOT EXISTS intent_templates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    domain TEXT NOT NULL,
    intent TEXT NOT NULL,
    service TEXT NOT NULL,
    language TEXT NOT NULL,

    -- JSON array of strings
    patterns TEXT NOT NULL,
    source TEXT NOT NULL,
    -- JSON object, "{}" when the intent has no context filter
    default_parameters TEXT NOT NULL DEFAULT '{}',

    -- RFC 3339 UTC
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,

    UNIQUE (domain, intent, language)
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_intent_templates_domain ON intent_templates(domain);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

// upsertTemplate inserts a template or updates the row with the same
// (domain, intent, language). created_at is only set on insert, so the
// returned value tells the two apart.
const upsertTemplate = `
INSERT INTO intent_templates
    (domain, intent, service, language, patterns, source, default_parameters, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (domain, intent, language) DO UPDATE SET
    service = excluded.service,
    patterns = excluded.patterns,
    source = excluded.source,
    default_parameters = excluded.default_parameters,
    updated_at = excluded.updated_at
RETURNING id, created_at;
`

const selectTemplates = `
SELECT domain, intent, service, language, patterns, source, default_parameters, created_at, updated_at
FROM intent_templates
`
