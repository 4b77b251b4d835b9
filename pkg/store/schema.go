package store

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Chef directory: the content owners recipes are attributed to.
CREATE TABLE IF NOT EXISTS chefs (
    chef_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    website_domain TEXT,
    is_active INTEGER NOT NULL DEFAULT 1,
    recipe_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Ingested recipes. The unique source_url constraint is what makes the
-- persistence step idempotent under retry.
CREATE TABLE IF NOT EXISTS recipes (
    recipe_id TEXT PRIMARY KEY,
    source_url TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    chef_id TEXT REFERENCES chefs(chef_id),
    description TEXT,
    ingredients TEXT,           -- JSON array of free-text lines
    instructions TEXT,          -- JSON array of ordered steps
    prep_minutes INTEGER,
    cook_minutes INTEGER,
    servings INTEGER,
    cuisine TEXT,
    tags TEXT,                  -- JSON array
    image_url TEXT,
    extraction_method TEXT,
    confidence REAL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_recipes_chef ON recipes(chef_id);
CREATE INDEX IF NOT EXISTS idx_recipes_source_url ON recipes(source_url);
`
