package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS simulations (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    question             TEXT NOT NULL UNIQUE,
    category             TEXT NOT NULL,
    difficulty           TEXT NOT NULL,
    monthly_income       TEXT NOT NULL,
    source_path          TEXT,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    simulation_id        INTEGER NOT NULL REFERENCES simulations(id) ON DELETE CASCADE,
    position             INTEGER NOT NULL,
    name                 TEXT NOT NULL,
    amount               TEXT NOT NULL,
    essential            INTEGER NOT NULL DEFAULT 0,
    feedback             TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS progress (
    player_id            TEXT NOT NULL,
    simulation_id        INTEGER NOT NULL REFERENCES simulations(id) ON DELETE CASCADE,
    category             TEXT NOT NULL,
    difficulty           TEXT NOT NULL,
    xp                   INTEGER NOT NULL,
    completed_at         TEXT NOT NULL,
    PRIMARY KEY (player_id, simulation_id)
);

CREATE TABLE IF NOT EXISTS attempts (
    id                   TEXT PRIMARY KEY,
    player_id            TEXT NOT NULL,
    simulation_id        INTEGER NOT NULL,
    category             TEXT NOT NULL,
    difficulty           TEXT NOT NULL,
    successful           INTEGER NOT NULL,
    total_selected       TEXT NOT NULL,
    submitted_at         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_expenses_simulation ON expenses(simulation_id, position);
CREATE INDEX IF NOT EXISTS idx_simulations_category ON simulations(category, difficulty);
CREATE INDEX IF NOT EXISTS idx_attempts_player ON attempts(player_id, submitted_at);
`
