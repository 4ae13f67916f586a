package journal

const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	record_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	size REAL NOT NULL,
	limit_price REAL NOT NULL,
	created_at DATETIME NOT NULL,
	status TEXT NOT NULL,
	order_id TEXT NOT NULL,
	fill_price REAL NOT NULL,
	reject_reason TEXT NOT NULL,
	latency_ms REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	regime TEXT NOT NULL,
	stress REAL NOT NULL,
	accept INTEGER NOT NULL,
	confidence REAL NOT NULL,
	styles TEXT NOT NULL,
	explanation TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at);
CREATE INDEX IF NOT EXISTS idx_decisions_time ON decisions(time);
`
