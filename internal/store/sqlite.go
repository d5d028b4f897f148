package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"agentgate/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dsn and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			position INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, position)`,
		`CREATE TABLE IF NOT EXISTS tools (
			tool_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			spec_location TEXT NOT NULL,
			base_url TEXT,
			state TEXT NOT NULL DEFAULT 'registered',
			operations TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetMessages returns the session's history in insertion order.
func (s *SQLiteStore) GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, session_id, role, content, created_at
		 FROM messages WHERE session_id = ? ORDER BY position ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.MessageID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ReplaceMessages atomically replaces the session's full history.
func (s *SQLiteStore) ReplaceMessages(ctx context.Context, sessionID string, messages []domain.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id) VALUES (?)
		 ON CONFLICT(session_id) DO UPDATE SET updated_at = CURRENT_TIMESTAMP`,
		sessionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	for i, m := range messages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (message_id, session_id, role, content, position, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			m.MessageID, sessionID, m.Role, m.Content, i, m.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteSession removes the session and its messages. Idempotent.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return err
	}

	return tx.Commit()
}

// CreateTool inserts a new tool.
func (s *SQLiteStore) CreateTool(ctx context.Context, tool *domain.Tool) error {
	operations, err := json.Marshal(tool.Operations)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tools (tool_id, name, description, spec_location, base_url, state, operations, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tool.ToolID, tool.Name, tool.Description, tool.SpecLocation, tool.BaseURL,
		tool.State, string(operations), tool.CreatedAt)
	return err
}

// GetTool retrieves a tool by id, or nil when absent.
func (s *SQLiteStore) GetTool(ctx context.Context, toolID string) (*domain.Tool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT tool_id, name, description, spec_location, base_url, state, operations, created_at
		 FROM tools WHERE tool_id = ?`,
		toolID)
	tool, err := scanTool(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return tool, err
}

// ListTools returns all tools in registration order.
func (s *SQLiteStore) ListTools(ctx context.Context) ([]domain.Tool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tool_id, name, description, spec_location, base_url, state, operations, created_at
		 FROM tools ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tools := []domain.Tool{}
	for rows.Next() {
		tool, err := scanTool(rows.Scan)
		if err != nil {
			return nil, err
		}
		tools = append(tools, *tool)
	}
	return tools, rows.Err()
}

// UpdateToolState transitions a tool's activation state.
func (s *SQLiteStore) UpdateToolState(ctx context.Context, toolID string, state domain.ToolState) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tools SET state = ? WHERE tool_id = ?`, state, toolID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrToolNotFound
	}
	return nil
}

// DeleteTool removes a tool regardless of state. Idempotent.
func (s *SQLiteStore) DeleteTool(ctx context.Context, toolID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tools WHERE tool_id = ?`, toolID)
	return err
}

func scanTool(scan func(dest ...any) error) (*domain.Tool, error) {
	var tool domain.Tool
	var description, baseURL, operations sql.NullString
	if err := scan(&tool.ToolID, &tool.Name, &description, &tool.SpecLocation,
		&baseURL, &tool.State, &operations, &tool.CreatedAt); err != nil {
		return nil, err
	}
	tool.Description = description.String
	tool.BaseURL = baseURL.String
	if operations.Valid && operations.String != "" {
		if err := json.Unmarshal([]byte(operations.String), &tool.Operations); err != nil {
			return nil, err
		}
	}
	return &tool, nil
}
