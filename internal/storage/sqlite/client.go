package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/student-insight/backend/internal/storage/models"
	"github.com/student-insight/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping() error {
	return c.db.Ping()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		full_name TEXT,
		email TEXT,
		created_at INTEGER NOT NULL,
		last_login INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);

	CREATE TABLE IF NOT EXISTS semester_records (
		user_id TEXT NOT NULL,
		semester_index INTEGER NOT NULL,
		sgpa REAL NOT NULL,
		uploaded_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, semester_index),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS subject_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		semester_index INTEGER NOT NULL,
		position INTEGER NOT NULL,
		subject_name TEXT NOT NULL,
		ca_marks REAL NOT NULL DEFAULT 0,
		ese_marks REAL NOT NULL DEFAULT 0,
		lab_marks REAL NOT NULL DEFAULT 0,
		total_marks REAL NOT NULL DEFAULT 0,
		FOREIGN KEY (user_id, semester_index) REFERENCES semester_records(user_id, semester_index) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_subjects_semester ON subject_records(user_id, semester_index);

	CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		cached INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_runs_user ON analysis_runs(user_id);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON analysis_runs(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) CreateUser(user *models.User) error {
	query := `INSERT INTO users (id, username, password_hash, full_name, email, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := c.db.Exec(
		query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.FullName,
		user.Email,
		user.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User created", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return nil
}

// GetUserByUsername returns (nil, nil) when no such user exists.
func (c *Client) GetUserByUsername(username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, full_name, email, created_at, last_login FROM users WHERE username = ?`

	var user models.User
	var createdAt int64
	var lastLogin sql.NullInt64

	err := c.db.QueryRow(query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&user.Email,
		&createdAt,
		&lastLogin,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0)
	if lastLogin.Valid {
		t := time.Unix(lastLogin.Int64, 0)
		user.LastLogin = &t
	}

	return &user, nil
}

// GetUserByID returns (nil, nil) when no such user exists.
func (c *Client) GetUserByID(id string) (*models.User, error) {
	query := `SELECT id, username, password_hash, full_name, email, created_at, last_login FROM users WHERE id = ?`

	var user models.User
	var createdAt int64
	var lastLogin sql.NullInt64

	err := c.db.QueryRow(query, id).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&user.Email,
		&createdAt,
		&lastLogin,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0)
	if lastLogin.Valid {
		t := time.Unix(lastLogin.Int64, 0)
		user.LastLogin = &t
	}

	return &user, nil
}

func (c *Client) UpdateLastLogin(userID string, at time.Time) error {
	query := `UPDATE users SET last_login = ? WHERE id = ?`

	_, err := c.db.Exec(query, at.Unix(), userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}

func (c *Client) SaveSession(session *models.Session) error {
	query := `INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`

	_, err := c.db.Exec(
		query,
		session.Token,
		session.UserID,
		session.ExpiresAt.Unix(),
		session.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetSession returns (nil, nil) when the token is unknown.
func (c *Client) GetSession(token string) (*models.Session, error) {
	query := `SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`

	var session models.Session
	var expiresAt, createdAt int64

	err := c.db.QueryRow(query, token).Scan(
		&session.Token,
		&session.UserID,
		&expiresAt,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.ExpiresAt = time.Unix(expiresAt, 0)
	session.CreatedAt = time.Unix(createdAt, 0)

	return &session, nil
}

func (c *Client) DeleteSession(token string) error {
	_, err := c.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// UpsertSemester replaces the semester row and all of its subject rows in one
// transaction.
func (c *Client) UpsertSemester(userID string, record models.SemesterRecord) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	semesterQuery := `
		INSERT INTO semester_records (user_id, semester_index, sgpa, uploaded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, semester_index) DO UPDATE SET
			sgpa = excluded.sgpa,
			uploaded_at = excluded.uploaded_at
	`

	_, err = tx.Exec(semesterQuery, userID, record.SemesterIndex, record.SGPA, record.UploadedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert semester: %w", err)
	}

	_, err = tx.Exec(`DELETE FROM subject_records WHERE user_id = ? AND semester_index = ?`, userID, record.SemesterIndex)
	if err != nil {
		return fmt.Errorf("failed to clear subjects: %w", err)
	}

	subjectQuery := `
		INSERT INTO subject_records (user_id, semester_index, position, subject_name, ca_marks, ese_marks, lab_marks, total_marks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i, subject := range record.Subjects {
		_, err = tx.Exec(
			subjectQuery,
			userID,
			record.SemesterIndex,
			i,
			subject.SubjectName,
			subject.ContinuousAssessmentMarks,
			subject.EndSemesterMarks,
			subject.LabMarks,
			subject.TotalMarks,
		)
		if err != nil {
			return fmt.Errorf("failed to insert subject: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit semester: %w", err)
	}

	logger.Debug("Semester upserted",
		zap.String("user_id", userID),
		zap.Int("semester", record.SemesterIndex),
		zap.Int("subjects", len(record.Subjects)),
	)

	return nil
}

// GetStudentHistory assembles the full history, semesters ordered by index and
// subjects by their stored position.
func (c *Client) GetStudentHistory(userID string) (models.StudentHistory, error) {
	history := models.StudentHistory{StudentID: userID}

	semesterQuery := `
		SELECT semester_index, sgpa, uploaded_at
		FROM semester_records
		WHERE user_id = ?
		ORDER BY semester_index
	`

	rows, err := c.db.Query(semesterQuery, userID)
	if err != nil {
		return history, fmt.Errorf("failed to get semesters: %w", err)
	}
	defer rows.Close()

	index := make(map[int]int)
	for rows.Next() {
		var sem models.SemesterRecord
		var uploadedAt int64

		err := rows.Scan(&sem.SemesterIndex, &sem.SGPA, &uploadedAt)
		if err != nil {
			return history, fmt.Errorf("failed to scan semester: %w", err)
		}

		sem.UploadedAt = time.Unix(uploadedAt, 0)
		index[sem.SemesterIndex] = len(history.Semesters)
		history.Semesters = append(history.Semesters, sem)
	}

	subjectQuery := `
		SELECT semester_index, subject_name, ca_marks, ese_marks, lab_marks, total_marks
		FROM subject_records
		WHERE user_id = ?
		ORDER BY semester_index, position
	`

	subjectRows, err := c.db.Query(subjectQuery, userID)
	if err != nil {
		return history, fmt.Errorf("failed to get subjects: %w", err)
	}
	defer subjectRows.Close()

	for subjectRows.Next() {
		var semesterIndex int
		var sub models.SubjectRecord

		err := subjectRows.Scan(
			&semesterIndex,
			&sub.SubjectName,
			&sub.ContinuousAssessmentMarks,
			&sub.EndSemesterMarks,
			&sub.LabMarks,
			&sub.TotalMarks,
		)
		if err != nil {
			return history, fmt.Errorf("failed to scan subject: %w", err)
		}

		if i, ok := index[semesterIndex]; ok {
			history.Semesters[i].Subjects = append(history.Semesters[i].Subjects, sub)
		}
	}

	return history, nil
}

// DeleteSemester reports whether a row was actually removed.
func (c *Client) DeleteSemester(userID string, semesterIndex int) (bool, error) {
	res, err := c.db.Exec(`DELETE FROM semester_records WHERE user_id = ? AND semester_index = ?`, userID, semesterIndex)
	if err != nil {
		return false, fmt.Errorf("failed to delete semester: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check deleted rows: %w", err)
	}

	return affected > 0, nil
}

func (c *Client) ClearHistory(userID string) error {
	_, err := c.db.Exec(`DELETE FROM semester_records WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	logger.Info("History cleared", zap.String("user_id", userID))
	return nil
}

func (c *Client) SaveAnalysisRun(run *models.AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs (id, user_id, content_hash, cached, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	cached := 0
	if run.Cached {
		cached = 1
	}

	_, err := c.db.Exec(
		query,
		run.ID,
		run.UserID,
		run.ContentHash,
		cached,
		run.LatencyMS,
		run.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}

	logger.Info("Analysis run recorded",
		zap.String("run_id", run.ID),
		zap.Bool("cached", run.Cached),
		zap.Int64("latency_ms", run.LatencyMS),
	)

	return nil
}
