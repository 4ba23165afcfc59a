package journal

const Schema = `
CREATE TABLE IF NOT EXISTS resolutions (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	cycle INTEGER NOT NULL,
	time DATETIME NOT NULL,
	actor TEXT NOT NULL,
	kind TEXT NOT NULL,
	handler TEXT NOT NULL,
	outcome TEXT NOT NULL,
	equity_before REAL NOT NULL,
	equity_after REAL NOT NULL,
	detail TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	cycle INTEGER NOT NULL,
	time DATETIME NOT NULL,
	actor TEXT NOT NULL,
	kind TEXT NOT NULL,
	assets REAL NOT NULL,
	liabilities REAL NOT NULL,
	equity REAL NOT NULL,
	car REAL,
	bankrupt INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	scenario TEXT NOT NULL,
	cycles INTEGER NOT NULL,
	actors INTEGER NOT NULL,
	resolutions INTEGER NOT NULL,
	liquidations INTEGER NOT NULL,
	value_start REAL NOT NULL,
	value_end REAL NOT NULL,
	fatal TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_resolutions_run ON resolutions(run_id, cycle);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, cycle);
`
