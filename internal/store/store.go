package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/affect"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id    TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	config_json   TEXT,
	started_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS frame_snapshots (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id     TEXT NOT NULL,
	tick           INTEGER NOT NULL,
	state_vector   BLOB NOT NULL,
	intensity      REAL NOT NULL,
	dominant       TEXT NOT NULL,
	quality_level  REAL NOT NULL,
	particle_count INTEGER NOT NULL,
	fps            REAL NOT NULL,
	frame_fps      BLOB,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_session_tick ON frame_snapshots(session_id, tick);

CREATE TABLE IF NOT EXISTS events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	tick          INTEGER NOT NULL,
	kind          TEXT NOT NULL,
	detail        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`
// #endregion schema

// timeFormat is fixed-width so text ordering matches time ordering.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// #region store-struct
// Store records sessions, sampled frames and events in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	s, err := NewStoreWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithDB migrates an already-open database. The caller keeps
// ownership of the pool until Close.
func NewStoreWithDB(db *sql.DB) (*Store, error) {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region start-session
// StartSession inserts a new session row. config is stored as JSON and may
// be nil.
func (s *Store) StartSession(kind string, config any) (SessionRecord, error) {
	rec := SessionRecord{
		ID:        uuid.New().String(),
		Kind:      kind,
		StartedAt: time.Now().UTC(),
	}
	if config != nil {
		b, err := json.Marshal(config)
		if err != nil {
			return SessionRecord{}, fmt.Errorf("marshal config: %w", err)
		}
		rec.ConfigJSON = string(b)
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, kind, config_json, started_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Kind, nullIfEmpty(rec.ConfigJSON), rec.StartedAt.Format(timeFormat),
	)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("insert session: %w", err)
	}
	return rec, nil
}
// #endregion start-session

// #region get-session
// GetSession retrieves a session by ID.
func (s *Store) GetSession(id string) (SessionRecord, error) {
	var rec SessionRecord
	var cfg sql.NullString
	var startedStr string
	err := s.db.QueryRow(
		`SELECT session_id, kind, config_json, started_at FROM sessions WHERE session_id = ?`, id,
	).Scan(&rec.ID, &rec.Kind, &cfg, &startedStr)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("get session %s: %w", id, err)
	}
	if cfg.Valid {
		rec.ConfigJSON = cfg.String
	}
	rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
	return rec, nil
}
// #endregion get-session

// #region list-sessions
// ListSessions returns the most recent sessions first.
func (s *Store) ListSessions(limit int) ([]SessionRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, kind, config_json, started_at
		 FROM sessions ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var cfg sql.NullString
		var startedStr string
		if err := rows.Scan(&rec.ID, &rec.Kind, &cfg, &startedStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if cfg.Valid {
			rec.ConfigJSON = cfg.String
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion list-sessions

// #region record-snapshot
// RecordSnapshot appends a sampled frame to its session.
func (s *Store) RecordSnapshot(rec SnapshotRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO frame_snapshots (session_id, tick, state_vector, intensity, dominant, quality_level, particle_count, fps, frame_fps, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, int64(rec.Tick), encodeState(rec.State), rec.Intensity, rec.Dominant,
		rec.QualityLevel, rec.ParticleCount, rec.FPS, encodeFloats(rec.FrameFPS), rec.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}
// #endregion record-snapshot

// #region list-snapshots
// ListSnapshots returns up to limit snapshots of a session in tick order.
func (s *Store) ListSnapshots(sessionID string, limit int) ([]SnapshotRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, tick, state_vector, intensity, dominant, quality_level, particle_count, fps, frame_fps, created_at
		 FROM frame_snapshots WHERE session_id = ? ORDER BY tick ASC LIMIT ?`, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var records []SnapshotRecord
	for rows.Next() {
		var rec SnapshotRecord
		var tick int64
		var vecBlob, fpsBlob []byte
		var createdStr string
		if err := rows.Scan(&rec.SessionID, &tick, &vecBlob, &rec.Intensity, &rec.Dominant,
			&rec.QualityLevel, &rec.ParticleCount, &rec.FPS, &fpsBlob, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Tick = uint64(tick)
		rec.State = decodeState(vecBlob)
		rec.FrameFPS = decodeFloats(fpsBlob)
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion list-snapshots

// #region log-event
// LogEvent writes an event row.
func (s *Store) LogEvent(entry EventRecord) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO events (session_id, tick, kind, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.SessionID, int64(entry.Tick), entry.Kind, nullIfEmpty(entry.Detail),
		entry.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// ListEvents returns up to limit events of a session in insertion order.
func (s *Store) ListEvents(sessionID string, limit int) ([]EventRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, tick, kind, detail, created_at
		 FROM events WHERE session_id = ? ORDER BY id ASC LIMIT ?`, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var rec EventRecord
		var tick int64
		var detail sql.NullString
		var createdStr string
		if err := rows.Scan(&rec.SessionID, &tick, &rec.Kind, &detail, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Tick = uint64(tick)
		if detail.Valid {
			rec.Detail = detail.String
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion log-event

// #region vector-encoding
func encodeState(st affect.State) []byte {
	v := st.Channels()
	buf := make([]byte, affect.NumChannels*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeState(b []byte) affect.State {
	var v [affect.NumChannels]float64
	for i := range v {
		if i*8+8 <= len(b) {
			v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
		}
	}
	return affect.New(v)
}

// encodeFloats stores v as little-endian float64s; empty is NULL.
func encodeFloats(v []float64) any {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeFloats(b []byte) []float64 {
	if len(b) < 8 {
		return nil
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}
// #endregion vector-encoding

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
