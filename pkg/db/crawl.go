package db

import (
	"context"
	"database/sql"
	"fmt"
)

// StartSession records the beginning of a crawl run.
func (d *DB) StartSession(ctx context.Context, id, mode string) error {
	_, err := d.ExecContext(ctx,
		"INSERT INTO crawl_sessions (id, mode) VALUES (?, ?)", id, mode)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	return nil
}

// FinishSession closes a crawl run with its final counters.
func (d *DB) FinishSession(ctx context.Context, id string, cities, routes int) error {
	_, err := d.ExecContext(ctx,
		"UPDATE crawl_sessions SET finished_at = CURRENT_TIMESTAMP, cities = ?, routes = ? WHERE id = ?",
		cities, routes, id)
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}
	return nil
}

// MarkRouteCrawled records a successfully collected route.
func (d *DB) MarkRouteCrawled(ctx context.Context, routeID, cityCode, mode, nameCN, sessionID string) error {
	_, err := d.ExecContext(ctx,
		`INSERT OR REPLACE INTO crawled_routes (route_id, city_code, mode, name_cn, session_id)
		 VALUES (?, ?, ?, ?, ?)`,
		routeID, cityCode, mode, nameCN, sessionID)
	if err != nil {
		return fmt.Errorf("failed to mark route crawled: %w", err)
	}
	return nil
}

// CrawledRouteIDs returns the set of route ids already collected for a city.
// Incremental runs use it to skip requests for known routes.
func (d *DB) CrawledRouteIDs(ctx context.Context, cityCode, mode string) (map[string]bool, error) {
	rows, err := d.QueryContext(ctx,
		"SELECT route_id FROM crawled_routes WHERE city_code = ? AND mode = ?", cityCode, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawled routes: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan route id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// GetTranslation returns a cached translation, if present.
func (d *DB) GetTranslation(ctx context.Context, source string) (string, bool) {
	var target string
	err := d.QueryRowContext(ctx,
		"SELECT target FROM translations WHERE source = ?", source).Scan(&target)
	if err != nil {
		return "", false
	}
	return target, true
}

// PutTranslation stores a translation with its origin ("azure" or "pinyin").
func (d *DB) PutTranslation(ctx context.Context, source, target, origin string) error {
	_, err := d.ExecContext(ctx,
		"INSERT OR REPLACE INTO translations (source, target, origin) VALUES (?, ?, ?)",
		source, target, origin)
	if err != nil {
		return fmt.Errorf("failed to store translation: %w", err)
	}
	return nil
}

// GetState reads a value from the persistent state table.
func (d *DB) GetState(ctx context.Context, key string) (string, error) {
	var value string
	err := d.QueryRowContext(ctx,
		"SELECT value FROM persistent_state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetState writes a value to the persistent state table.
func (d *DB) SetState(ctx context.Context, key, value string) error {
	_, err := d.ExecContext(ctx,
		"INSERT OR REPLACE INTO persistent_state (key, value) VALUES (?, ?)", key, value)
	return err
}
