package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"copyTradeBot/internal/domain"
	"copyTradeBot/internal/ports"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// Repository implements the ports.EventRepository and ports.MappingRepository
// interfaces using SQLite. The UNIQUE index on idempotency_key is the actual
// at-most-once authority: a racing second insert surfaces as
// ports.ErrDuplicateEntry, never as a silent duplicate.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/copy_trade_bot.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// NOTE: This is a basic approach. A proper migration tool is recommended for production.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS processed_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		idempotency_key TEXT NOT NULL UNIQUE,
		source_trade_id TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT DEFAULT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trade_mappings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_trade_id TEXT NOT NULL,
		venue TEXT NOT NULL,
		venue_order_id TEXT NOT NULL DEFAULT '',
		venue_position_id TEXT NOT NULL DEFAULT '',
		last_intent_type TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (source_trade_id, venue)
	);
	-- Add indexes for common lookups
	CREATE INDEX IF NOT EXISTS idx_processed_events_source_trade_id ON processed_events (source_trade_id);
	CREATE INDEX IF NOT EXISTS idx_processed_events_status ON processed_events (status);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- EventRepository Implementation ---

// HasProcessedEvent reports whether any record exists for the key,
// regardless of its stored status.
func (r *Repository) HasProcessedEvent(ctx context.Context, key string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM processed_events WHERE idempotency_key = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check processed event for key %s: %w", key, err)
	}
	return exists, nil
}

// RecordProcessedEvent persists a terminal outcome. Returns
// ports.ErrDuplicateEntry if the idempotency key was already recorded.
func (r *Repository) RecordProcessedEvent(ctx context.Context, rec *domain.ProcessedEventRecord) error {
	const query = `
	INSERT INTO processed_events (idempotency_key, source_trade_id, status, error, created_at)
	VALUES (?, ?, ?, ?, ?)`

	var errDetail sql.NullString
	if rec.Error != "" {
		errDetail = sql.NullString{String: rec.Error, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		rec.IdempotencyKey, rec.SourceTradeID, rec.Status, errDetail, rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("processed event for key %s: %w", rec.IdempotencyKey, ports.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert processed event for key %s: %w", rec.IdempotencyKey, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID for processed event %s: %w", rec.IdempotencyKey, err)
	}
	rec.ID = id
	r.logger.Debug(ctx, "Processed event recorded", map[string]interface{}{"key": rec.IdempotencyKey, "status": rec.Status})
	return nil
}

// CountByStatus returns processed-event counts keyed by status.
func (r *Repository) CountByStatus(ctx context.Context) (map[domain.ExecutionStatus]int, error) {
	const query = `SELECT status, COUNT(*) FROM processed_events GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count processed events by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ExecutionStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[domain.ExecutionStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status count rows: %w", err)
	}
	return counts, nil
}

// FindRecent retrieves the most recent processed events, up to a limit.
func (r *Repository) FindRecent(ctx context.Context, limit int) ([]*domain.ProcessedEventRecord, error) {
	const query = `
	SELECT id, idempotency_key, source_trade_id, status, error, created_at
	FROM processed_events
	ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent processed events: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.ProcessedEventRecord, 0)
	for rows.Next() {
		rec, err := scanProcessedEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan processed event during FindRecent: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating processed event rows: %w", err)
	}
	return records, nil
}

// --- MappingRepository Implementation ---

// UpsertTradeMapping overwrites any prior mapping for the same
// (source trade id, venue) pair rather than appending.
func (r *Repository) UpsertTradeMapping(ctx context.Context, m *domain.TradeMapping) error {
	const query = `
	INSERT INTO trade_mappings (source_trade_id, venue, venue_order_id, venue_position_id, last_intent_type, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (source_trade_id, venue) DO UPDATE SET
		venue_order_id = excluded.venue_order_id,
		venue_position_id = excluded.venue_position_id,
		last_intent_type = excluded.last_intent_type,
		updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		m.SourceTradeID, m.Venue, m.VenueOrderID, m.VenuePositionID, m.LastIntentType, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert trade mapping for (%s, %s): %w: %w", m.SourceTradeID, m.Venue, ports.ErrUpdateFailed, err)
	}
	r.logger.Debug(ctx, "Trade mapping upserted", map[string]interface{}{
		"sourceTradeId": m.SourceTradeID,
		"venue":         m.Venue,
		"lastIntent":    m.LastIntentType,
	})
	return nil
}

// FindMapping retrieves the mapping for a (source trade id, venue) pair.
func (r *Repository) FindMapping(ctx context.Context, sourceTradeID string, venue domain.Venue) (*domain.TradeMapping, error) {
	const query = `
	SELECT id, source_trade_id, venue, venue_order_id, venue_position_id, last_intent_type, updated_at
	FROM trade_mappings
	WHERE source_trade_id = ? AND venue = ?`

	row := r.db.QueryRowContext(ctx, query, sourceTradeID, venue)
	m, err := scanTradeMapping(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query trade mapping for (%s, %s): %w", sourceTradeID, venue, err)
	}
	return m, nil
}

// FindAllMappings retrieves all mappings, ordered by update time descending.
func (r *Repository) FindAllMappings(ctx context.Context) ([]*domain.TradeMapping, error) {
	const query = `
	SELECT id, source_trade_id, venue, venue_order_id, venue_position_id, last_intent_type, updated_at
	FROM trade_mappings
	ORDER BY updated_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all trade mappings: %w", err)
	}
	defer rows.Close()

	mappings := make([]*domain.TradeMapping, 0)
	for rows.Next() {
		m, err := scanTradeMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade mapping during FindAllMappings: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade mapping rows: %w", err)
	}
	return mappings, nil
}

// --- Helpers ---

// isUniqueViolation reports whether err is a SQLite unique-constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanProcessedEvent scans a row into a domain.ProcessedEventRecord struct.
func scanProcessedEvent(s scanner) (*domain.ProcessedEventRecord, error) {
	rec := &domain.ProcessedEventRecord{}
	var errDetail sql.NullString
	var status string
	err := s.Scan(&rec.ID, &rec.IdempotencyKey, &rec.SourceTradeID, &status, &errDetail, &rec.CreatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	rec.Status = domain.ExecutionStatus(status)
	if errDetail.Valid {
		rec.Error = errDetail.String
	}
	return rec, nil
}

// scanTradeMapping scans a row into a domain.TradeMapping struct.
func scanTradeMapping(s scanner) (*domain.TradeMapping, error) {
	m := &domain.TradeMapping{}
	var venue, intentType string
	err := s.Scan(&m.ID, &m.SourceTradeID, &venue, &m.VenueOrderID, &m.VenuePositionID, &intentType, &m.UpdatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	m.Venue = domain.Venue(venue)
	m.LastIntentType = domain.IntentType(intentType)
	return m, nil
}
