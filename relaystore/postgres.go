package relaystore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/hybrid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const schema = `
CREATE TABLE IF NOT EXISTS relay_entries (
    id         BIGSERIAL PRIMARY KEY,
    tag_bytes  BYTEA NOT NULL,
    ciphertext JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS relay_entries_tag_bytes_idx ON relay_entries (tag_bytes, id);
`

// Config holds PostgreSQL connection configuration for PostgresStore.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// PostgresStore is a Store backed by a pgxpool.Pool, persisting the
// relay's ordered log in the relay_entries table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewStore opens a connection pool to cfg, pings it, and ensures the
// relay_entries table exists.
func NewStore(ctx context.Context, cfg *Config) (*PostgresStore, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, newError("NewStore", fmt.Errorf("%w: %v", ErrDatabase, err))
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, newError("NewStore", fmt.Errorf("%w: %v", ErrDatabase, err))
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, newError("NewStore", fmt.Errorf("%w: %v", ErrDatabase, err))
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewStore",
		"package":  "relaystore",
		"database": cfg.Database,
	}).Info("connected to relay store")

	return &PostgresStore{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Post appends a new entry and returns its assigned id.
func (s *PostgresStore) Post(ctx context.Context, tag fmd.Tag, ct hybrid.TaggedCiphertext) (int64, error) {
	ciphertextJSON, err := json.Marshal(ct)
	if err != nil {
		return 0, newError("Post", err)
	}

	var id int64
	row := s.pool.QueryRow(ctx,
		`INSERT INTO relay_entries (tag_bytes, ciphertext) VALUES ($1, $2) RETURNING id`,
		tag.Compress(), ciphertextJSON,
	)
	if err := row.Scan(&id); err != nil {
		return 0, newError("Post", fmt.Errorf("%w: %v", ErrDatabase, err))
	}
	return id, nil
}

// Fetch resolves referenceTag to a cut-point id via MAX(id) among rows
// sharing its tag bytes, then returns every later row whose decoded tag
// passes dk.Test.
func (s *PostgresStore) Fetch(ctx context.Context, referenceTag *fmd.Tag, dk fmd.DetectionKey) ([]Entry, error) {
	cutoff, err := s.cutPoint(ctx, referenceTag)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, tag_bytes, ciphertext FROM relay_entries WHERE id > $1 ORDER BY id ASC`,
		cutoff,
	)
	if err != nil {
		return nil, newError("Fetch", fmt.Errorf("%w: %v", ErrDatabase, err))
	}
	defer rows.Close()

	var matched []Entry
	for rows.Next() {
		var id int64
		var tagBytes []byte
		var ciphertextJSON []byte
		if err := rows.Scan(&id, &tagBytes, &ciphertextJSON); err != nil {
			return nil, newError("Fetch", fmt.Errorf("%w: %v", ErrDatabase, err))
		}

		tag, err := fmd.DecompressTag(tagBytes)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Fetch",
				"package":  "relaystore",
				"id":       id,
			}).WithError(err).Warn("skipping row with malformed tag bytes")
			continue
		}

		if !dk.Test(tag) {
			continue
		}

		var ct hybrid.TaggedCiphertext
		if err := json.Unmarshal(ciphertextJSON, &ct); err != nil {
			return nil, newError("Fetch", err)
		}

		matched = append(matched, Entry{ID: id, Tag: *tag, Ciphertext: ct})
	}
	if err := rows.Err(); err != nil {
		return nil, newError("Fetch", fmt.Errorf("%w: %v", ErrDatabase, err))
	}

	return matched, nil
}

func (s *PostgresStore) cutPoint(ctx context.Context, referenceTag *fmd.Tag) (int64, error) {
	if referenceTag == nil {
		return 0, nil
	}

	var cutoff *int64
	row := s.pool.QueryRow(ctx,
		`SELECT max(id) FROM relay_entries WHERE tag_bytes = $1`,
		referenceTag.Compress(),
	)
	if err := row.Scan(&cutoff); err != nil {
		return 0, newError("Fetch", fmt.Errorf("%w: %v", ErrDatabase, err))
	}
	if cutoff == nil {
		return 0, nil
	}
	return *cutoff, nil
}
