package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/xiaot623/aazan/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Options tune the connection pool.
type Options struct {
	MaxOpenConns int
}

// NewSQLiteStore opens the database at dsn and applies migrations.
func NewSQLiteStore(dsn string, opts ...Options) (*SQLiteStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite store: empty dsn")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else if len(opts) > 0 && opts[0].MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts[0].MaxOpenConns)
	}

	// Only affects the current connection; DSNs should also carry _foreign_keys=on.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable foreign keys")
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to migrate database")
	}
	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			material_text TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'created',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			user_id TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, timestamp)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	// Add new columns for existing DBs (SQLite has limited ALTER TABLE support).
	if err := s.ensureColumn("messages", "idempotency_key", "ALTER TABLE messages ADD COLUMN idempotency_key TEXT"); err != nil {
		return err
	}
	if _, err := s.db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_idempotency ON messages(session_id, idempotency_key) WHERE idempotency_key IS NOT NULL`); err != nil {
		return err
	}

	return nil
}

func (s *SQLiteStore) ensureColumn(tableName, columnName, ddl string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dfltValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == columnName {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = s.db.Exec(ddl)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, topic, material_text, status, created_at, updated_at, user_id) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID.String(), session.Topic, session.MaterialText, string(session.Status),
		toUnixNano(session.CreatedAt), toUnixNano(session.UpdatedAt), session.UserID)
	return err
}

const sessionColumns = `id, topic, material_text, status, created_at, updated_at, user_id`

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID domain.ID) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, sessionID.String())
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions returns all sessions, newest first.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session and its messages. It reports whether the
// session existed.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID domain.ID) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// Explicit delete so the cascade holds even on connections opened without foreign keys.
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID.String()); err != nil {
		return false, err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID.String())
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CreateMessage inserts a message. The stored timestamp is clamped so that it
// is strictly greater than every earlier timestamp of the same session; the
// clamped value is written back to message.Timestamp.
func (s *SQLiteStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	if !message.Role.Valid() {
		return errors.Errorf("invalid message role %q", message.Role)
	}

	var stored int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO messages (id, session_id, role, content, timestamp, idempotency_key)
		SELECT ?, ?, ?, ?, MAX(?, COALESCE((SELECT MAX(timestamp) + 1 FROM messages WHERE session_id = ?), 0)), ?
		RETURNING timestamp`,
		message.ID.String(), message.SessionID.String(), string(message.Role), message.Content,
		toUnixNano(message.Timestamp), message.SessionID.String(), nullString(message.IdempotencyKey),
	).Scan(&stored)
	if err != nil {
		return err
	}
	message.Timestamp = fromUnixNano(stored)
	return nil
}

const messageColumns = `id, session_id, role, content, timestamp, idempotency_key`

// GetMessages retrieves all messages for a session in ascending timestamp order.
func (s *SQLiteStore) GetMessages(ctx context.Context, sessionID domain.ID) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE session_id = ? ORDER BY timestamp ASC, rowid ASC`,
		sessionID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	return messages, rows.Err()
}

// GetMessageByIdempotencyKey finds the message stored under key in a session.
func (s *SQLiteStore) GetMessageByIdempotencyKey(ctx context.Context, sessionID domain.ID, key string) (*domain.Message, error) {
	if key == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE session_id = ? AND idempotency_key = ?`,
		sessionID.String(), key)
	msg, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*domain.Session, error) {
	var (
		session              domain.Session
		id, status           string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&id, &session.Topic, &session.MaterialText, &status, &createdAt, &updatedAt, &session.UserID); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseID(id)
	if err != nil {
		return nil, errors.Wrapf(err, "decode session id %q", id)
	}
	session.ID = parsed
	session.Status = domain.SessionStatus(status)
	session.CreatedAt = fromUnixNano(createdAt)
	session.UpdatedAt = fromUnixNano(updatedAt)
	return &session, nil
}

func scanMessage(row scanner) (*domain.Message, error) {
	var (
		msg                 domain.Message
		id, sessionID, role string
		ts                  int64
		key                 sql.NullString
	)
	if err := row.Scan(&id, &sessionID, &role, &msg.Content, &ts, &key); err != nil {
		return nil, err
	}
	var err error
	if msg.ID, err = domain.ParseID(id); err != nil {
		return nil, errors.Wrapf(err, "decode message id %q", id)
	}
	if msg.SessionID, err = domain.ParseID(sessionID); err != nil {
		return nil, errors.Wrapf(err, "decode session id %q", sessionID)
	}
	if msg.Role, err = domain.ParseRole(role); err != nil {
		return nil, errors.Wrapf(err, "decode message %s", id)
	}
	msg.Timestamp = fromUnixNano(ts)
	msg.IdempotencyKey = key.String
	return &msg, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixNano()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
