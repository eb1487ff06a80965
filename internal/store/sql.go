package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/ledcontent/internal/domain"
	"github.com/xiaot623/ledcontent/internal/selector"
)

// SQLStore implements Store on database/sql. SQLite is the default backend;
// Postgres is supported through lib/pq.
type SQLStore struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

var _ Store = (*SQLStore)(nil)

// NewSQLiteStore opens a SQLite-backed store.
func NewSQLiteStore(dsn string) (*SQLStore, error) {
	return NewSQLStore(DriverSQLite, dsn)
}

// NewSQLStore opens the database, applies migrations and returns the store.
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	if err := checkDriver(driver); err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// For in-memory SQLite, multiple connections create separate databases.
		// Keep a single connection so schema and data are shared.
		if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
			db.SetMaxOpenConns(1)
			db.SetMaxIdleConns(1)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	s := &SQLStore{db: db, driver: driver, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// migrate runs database migrations. The DDL is shared by SQLite and Postgres.
func (s *SQLStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			document_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			created_by TEXT NOT NULL DEFAULT '',
			start_time TEXT,
			end_time TEXT,
			checksum TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			is_test BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_active ON documents(is_active, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_test ON documents(is_test)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			session_order INTEGER NOT NULL,
			delay INTEGER NOT NULL DEFAULT 100,
			start_date TEXT,
			start_time TEXT,
			end_date TEXT,
			end_time TEXT,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (document_id, session_order),
			FOREIGN KEY (document_id) REFERENCES documents(document_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS session_texts (
			session_id TEXT PRIMARY KEY,
			start_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '#00ff00',
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS session_lines (
			session_id TEXT NOT NULL,
			start_index INTEGER NOT NULL,
			color TEXT NOT NULL DEFAULT '#ffff00',
			PRIMARY KEY (session_id, start_index),
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS session_animations (
			session_id TEXT PRIMARY KEY,
			loop_count INTEGER NOT NULL DEFAULT 1,
			time_between_images INTEGER NOT NULL DEFAULT 100,
			images TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS images (
			name TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
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
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) q(query string) string {
	return rebind(s.driver, query)
}

// GetActiveDocument returns the live document, or nil when none is active.
func (s *SQLStore) GetActiveDocument(ctx context.Context) (*domain.Document, error) {
	return s.selectDocument(ctx, domain.ChannelLive, DocumentFilter{ActiveOnly: true})
}

// GetTestDocument returns the test document, or nil when none is flagged.
func (s *SQLStore) GetTestDocument(ctx context.Context) (*domain.Document, error) {
	return s.selectDocument(ctx, domain.ChannelTest, DocumentFilter{TestOnly: true})
}

func (s *SQLStore) selectDocument(ctx context.Context, ch domain.Channel, filter DocumentFilter) (*domain.Document, error) {
	candidates, err := s.ListDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}
	pick, ok := selector.Select(ch, candidates)
	if !ok {
		return nil, nil
	}
	return s.GetDocument(ctx, pick.DocumentID)
}

// ListDocuments returns document summaries, newest first.
func (s *SQLStore) ListDocuments(ctx context.Context, filter DocumentFilter) ([]domain.DocumentSummary, error) {
	query := `SELECT d.document_id, d.title, d.created_at, d.created_by, d.checksum, d.is_active, d.is_test,
		(SELECT COUNT(*) FROM sessions s WHERE s.document_id = d.document_id)
		FROM documents d`
	var (
		conds []string
		args  []interface{}
	)
	if filter.ActiveOnly {
		conds = append(conds, "d.is_active = ?")
		args = append(args, true)
	}
	if filter.TestOnly {
		conds = append(conds, "d.is_test = ?")
		args = append(args, true)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY d.created_at DESC, d.document_id ASC"

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.DocumentSummary
	for rows.Next() {
		var d domain.DocumentSummary
		if err := rows.Scan(&d.DocumentID, &d.Title, &d.CreatedAt, &d.CreatedBy, &d.Checksum,
			&d.IsActive, &d.IsTest, &d.SessionCount); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetDocument loads a document with its full session tree. Returns nil if absent.
func (s *SQLStore) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	var (
		d                  domain.Document
		startTime, endTime sql.NullString
	)
	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT document_id, title, created_at, created_by, start_time, end_time, checksum, is_active, is_test
		FROM documents WHERE document_id = ?`), documentID).Scan(
		&d.DocumentID, &d.Title, &d.CreatedAt, &d.CreatedBy, &startTime, &endTime,
		&d.Checksum, &d.IsActive, &d.IsTest)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if d.StartTime, err = parseNullClock(startTime); err != nil {
		return nil, err
	}
	if d.EndTime, err = parseNullClock(endTime); err != nil {
		return nil, err
	}

	if err := s.loadSessions(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *SQLStore) loadSessions(ctx context.Context, d *domain.Document) error {
	sessions, err := s.querySessions(ctx, d.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	d.Sessions = sessions
	if len(sessions) == 0 {
		return nil
	}

	index := make(map[string]*domain.Session, len(d.Sessions))
	for i := range d.Sessions {
		index[d.Sessions[i].SessionID] = &d.Sessions[i]
	}

	if err := s.loadTexts(ctx, d.DocumentID, index); err != nil {
		return fmt.Errorf("failed to load session texts: %w", err)
	}
	if err := s.loadLines(ctx, d.DocumentID, index); err != nil {
		return fmt.Errorf("failed to load session lines: %w", err)
	}
	if err := s.loadAnimations(ctx, d.DocumentID, index); err != nil {
		return fmt.Errorf("failed to load session animations: %w", err)
	}
	return nil
}

func (s *SQLStore) querySessions(ctx context.Context, documentID string) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT session_id, session_order, delay, start_date, start_time, end_date, end_time
		FROM sessions WHERE document_id = ? ORDER BY session_order ASC`), documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		var (
			sess                                   domain.Session
			startDate, startTime, endDate, endTime sql.NullString
		)
		if err := rows.Scan(&sess.SessionID, &sess.Order, &sess.Delay,
			&startDate, &startTime, &endDate, &endTime); err != nil {
			return nil, err
		}
		if sess.StartDate, err = parseNullDate(startDate); err != nil {
			return nil, err
		}
		if sess.StartTime, err = parseNullClock(startTime); err != nil {
			return nil, err
		}
		if sess.EndDate, err = parseNullDate(endDate); err != nil {
			return nil, err
		}
		if sess.EndTime, err = parseNullClock(endTime); err != nil {
			return nil, err
		}
		sess.Lines = []domain.SessionLine{}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *SQLStore) loadTexts(ctx context.Context, documentID string, index map[string]*domain.Session) error {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT t.session_id, t.start_index, t.content, t.color
		FROM session_texts t JOIN sessions s ON s.session_id = t.session_id
		WHERE s.document_id = ?`), documentID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sessionID string
			text      domain.SessionText
		)
		if err := rows.Scan(&sessionID, &text.StartIndex, &text.Content, &text.Color); err != nil {
			return err
		}
		if sess := index[sessionID]; sess != nil {
			sess.Text = &text
		}
	}
	return rows.Err()
}

func (s *SQLStore) loadLines(ctx context.Context, documentID string, index map[string]*domain.Session) error {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT l.session_id, l.start_index, l.color
		FROM session_lines l JOIN sessions s ON s.session_id = l.session_id
		WHERE s.document_id = ? ORDER BY l.start_index ASC`), documentID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sessionID string
			line      domain.SessionLine
		)
		if err := rows.Scan(&sessionID, &line.StartIndex, &line.Color); err != nil {
			return err
		}
		if sess := index[sessionID]; sess != nil {
			sess.Lines = append(sess.Lines, line)
		}
	}
	return rows.Err()
}

func (s *SQLStore) loadAnimations(ctx context.Context, documentID string, index map[string]*domain.Session) error {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT a.session_id, a.loop_count, a.time_between_images, a.images
		FROM session_animations a JOIN sessions s ON s.session_id = a.session_id
		WHERE s.document_id = ?`), documentID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sessionID string
			images    string
			anim      domain.SessionAnimation
		)
		if err := rows.Scan(&sessionID, &anim.LoopCount, &anim.TimeBetweenImages, &images); err != nil {
			return err
		}
		anim.Images = domain.SplitImages(images)
		if sess := index[sessionID]; sess != nil {
			sess.Animation = &anim
		}
	}
	return rows.Err()
}

// SaveDocument inserts or replaces a document and its whole session tree.
// When the document is flagged active or test, the same flag is cleared on
// every other document inside the same transaction.
func (s *SQLStore) SaveDocument(ctx context.Context, d *domain.Document) error {
	if d.DocumentID == "" {
		d.DocumentID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if d.IsActive {
		if err := s.clearFlag(ctx, tx, "is_active", d.DocumentID); err != nil {
			return fmt.Errorf("failed to clear active flag: %w", err)
		}
	}
	if d.IsTest {
		if err := s.clearFlag(ctx, tx, "is_test", d.DocumentID); err != nil {
			return fmt.Errorf("failed to clear test flag: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, s.q(
		`INSERT INTO documents (document_id, title, created_at, created_by, start_time, end_time, checksum, is_active, is_test)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (document_id) DO UPDATE SET
			title = excluded.title,
			created_by = excluded.created_by,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			checksum = excluded.checksum,
			is_active = excluded.is_active,
			is_test = excluded.is_test`),
		d.DocumentID, d.Title, d.CreatedAt, d.CreatedBy, formatNullClock(d.StartTime), formatNullClock(d.EndTime),
		d.Checksum, d.IsActive, d.IsTest)
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	if err := s.deleteSessions(ctx, tx, d.DocumentID); err != nil {
		return err
	}
	for i := range d.Sessions {
		if err := s.insertSession(ctx, tx, d.DocumentID, &d.Sessions[i]); err != nil {
			return fmt.Errorf("failed to write session %d: %w", d.Sessions[i].Order, err)
		}
	}

	return tx.Commit()
}

func (s *SQLStore) insertSession(ctx context.Context, tx *sql.Tx, documentID string, sess *domain.Session) error {
	if sess.SessionID == "" {
		sess.SessionID = uuid.NewString()
	}
	_, err := tx.ExecContext(ctx, s.q(
		`INSERT INTO sessions (session_id, document_id, session_order, delay, start_date, start_time, end_date, end_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		sess.SessionID, documentID, sess.Order, sess.Delay,
		formatNullDate(sess.StartDate), formatNullClock(sess.StartTime),
		formatNullDate(sess.EndDate), formatNullClock(sess.EndTime),
		s.now().UTC())
	if err != nil {
		return err
	}

	if t := sess.Text; t != nil {
		if _, err := tx.ExecContext(ctx, s.q(
			`INSERT INTO session_texts (session_id, start_index, content, color) VALUES (?, ?, ?, ?)`),
			sess.SessionID, t.StartIndex, t.Content, t.Color); err != nil {
			return err
		}
	}
	for _, l := range sess.Lines {
		if _, err := tx.ExecContext(ctx, s.q(
			`INSERT INTO session_lines (session_id, start_index, color) VALUES (?, ?, ?)`),
			sess.SessionID, l.StartIndex, l.Color); err != nil {
			return err
		}
	}
	if a := sess.Animation; a != nil {
		if _, err := tx.ExecContext(ctx, s.q(
			`INSERT INTO session_animations (session_id, loop_count, time_between_images, images) VALUES (?, ?, ?, ?)`),
			sess.SessionID, a.LoopCount, a.TimeBetweenImages, a.JoinedImages()); err != nil {
			return err
		}
	}
	return nil
}

// deleteSessions removes children explicitly so replacement does not depend
// on the connection having foreign keys enabled.
func (s *SQLStore) deleteSessions(ctx context.Context, tx *sql.Tx, documentID string) error {
	for _, table := range []string{"session_texts", "session_lines", "session_animations"} {
		query := fmt.Sprintf(
			`DELETE FROM %s WHERE session_id IN (SELECT session_id FROM sessions WHERE document_id = ?)`, table)
		if _, err := tx.ExecContext(ctx, s.q(query), documentID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE document_id = ?`), documentID); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}

func (s *SQLStore) clearFlag(ctx context.Context, tx *sql.Tx, column, exceptID string) error {
	query := fmt.Sprintf(`UPDATE documents SET %s = ? WHERE %s = ? AND document_id <> ?`, column, column)
	_, err := tx.ExecContext(ctx, s.q(query), false, true, exceptID)
	return err
}

// DeleteDocument removes a document and its sessions.
func (s *SQLStore) DeleteDocument(ctx context.Context, documentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.deleteSessions(ctx, tx, documentID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM documents WHERE document_id = ?`), documentID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return tx.Commit()
}

// SetActive makes documentID the only active document.
func (s *SQLStore) SetActive(ctx context.Context, documentID string) error {
	return s.setFlag(ctx, "is_active", documentID)
}

// SetTest makes documentID the only test document.
func (s *SQLStore) SetTest(ctx context.Context, documentID string) error {
	return s.setFlag(ctx, "is_test", documentID)
}

func (s *SQLStore) setFlag(ctx context.Context, column, documentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, s.q(`SELECT 1 FROM documents WHERE document_id = ?`), documentID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrDocumentNotFound
	}
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE documents SET %s = (document_id = ?) WHERE %s = ? OR document_id = ?`, column, column)
	if _, err := tx.ExecContext(ctx, s.q(query), documentID, true, documentID); err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertImage registers an image or updates its description.
func (s *SQLStore) UpsertImage(ctx context.Context, image *domain.Image) error {
	if image.CreatedAt.IsZero() {
		image.CreatedAt = s.now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO images (name, description, created_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET description = excluded.description`),
		image.Name, image.Description, image.CreatedAt)
	return err
}

// GetImage returns a registry entry or nil.
func (s *SQLStore) GetImage(ctx context.Context, name string) (*domain.Image, error) {
	var img domain.Image
	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT name, description, created_at FROM images WHERE name = ?`), name).Scan(
		&img.Name, &img.Description, &img.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// ListImages returns every registered image ordered by name.
func (s *SQLStore) ListImages(ctx context.Context) ([]domain.Image, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, description, created_at FROM images ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []domain.Image
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(&img.Name, &img.Description, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes an image that no animation references.
func (s *SQLStore) DeleteImage(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	inUse, err := imageReferenced(ctx, tx, name)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrImageInUse
	}

	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM images WHERE name = ?`), name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrImageNotFound
	}
	return tx.Commit()
}

func imageReferenced(ctx context.Context, tx *sql.Tx, name string) (bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT images FROM session_animations`)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var joined string
		if err := rows.Scan(&joined); err != nil {
			return false, err
		}
		for _, n := range domain.SplitImages(joined) {
			if n == name {
				return true, nil
			}
		}
	}
	return false, rows.Err()
}

func parseNullClock(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := domain.ParseClock(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseNullDate(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatNullClock(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(domain.ClockLayoutSecs), Valid: true}
}

func formatNullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(domain.DateLayout), Valid: true}
}
