package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/student-insight/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(filepath.Join(t.TempDir(), "insight.db"))
	require.NoError(t, err)
	require.NoError(t, c.InitSchema())
	t.Cleanup(func() { c.Close() })

	return c
}

func seedUser(t *testing.T, c *Client, username string) string {
	t.Helper()

	user := &models.User{
		ID:           "user-" + username,
		Username:     username,
		PasswordHash: "hash",
		FullName:     "Test User",
		Email:        username + "@example.com",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, c.CreateUser(user))

	return user.ID
}

func semesterFixture(index int, sgpa float64, subjects ...models.SubjectRecord) models.SemesterRecord {
	return models.SemesterRecord{
		SemesterIndex: index,
		SGPA:          sgpa,
		Subjects:      subjects,
		UploadedAt:    time.Now(),
	}
}

func TestUserRoundTrip(t *testing.T) {
	c := newTestClient(t)
	seedUser(t, c, "alice")

	user, err := c.GetUserByUsername("alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user-alice", user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.Nil(t, user.LastLogin)
}

func TestGetUserByUsername_Unknown(t *testing.T) {
	c := newTestClient(t)

	user, err := c.GetUserByUsername("nobody")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	c := newTestClient(t)
	seedUser(t, c, "alice")

	err := c.CreateUser(&models.User{
		ID:           "user-other",
		Username:     "alice",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	})
	assert.Error(t, err)
}

func TestUpdateLastLogin(t *testing.T) {
	c := newTestClient(t)
	id := seedUser(t, c, "alice")

	at := time.Now()
	require.NoError(t, c.UpdateLastLogin(id, at))

	user, err := c.GetUserByUsername("alice")
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)
	assert.Equal(t, at.Unix(), user.LastLogin.Unix())
}

func TestSessionRoundTrip(t *testing.T) {
	c := newTestClient(t)
	id := seedUser(t, c, "alice")

	session := &models.Session{
		Token:     "token-1",
		UserID:    id,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, c.SaveSession(session))

	got, err := c.GetSession("token-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.UserID)
	assert.Equal(t, session.ExpiresAt.Unix(), got.ExpiresAt.Unix())

	require.NoError(t, c.DeleteSession("token-1"))

	got, err = c.GetSession("token-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetSession_Unknown(t *testing.T) {
	c := newTestClient(t)

	got, err := c.GetSession("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertSemester_ReplacesSubjects(t *testing.T) {
	c := newTestClient(t)
	id := seedUser(t, c, "alice")

	first := semesterFixture(1, 7.0,
		models.SubjectRecord{SubjectName: "Algorithms", TotalMarks: 80},
		models.SubjectRecord{SubjectName: "Databases", TotalMarks: 70},
	)
	require.NoError(t, c.UpsertSemester(id, first))

	second := semesterFixture(1, 7.5,
		models.SubjectRecord{SubjectName: "Networks", TotalMarks: 75},
	)
	require.NoError(t, c.UpsertSemester(id, second))

	history, err := c.GetStudentHistory(id)
	require.NoError(t, err)
	require.Len(t, history.Semesters, 1)
	assert.InDelta(t, 7.5, history.Semesters[0].SGPA, 1e-9)
	require.Len(t, history.Semesters[0].Subjects, 1)
	assert.Equal(t, "Networks", history.Semesters[0].Subjects[0].SubjectName)
}

func TestGetStudentHistory_OrdersSemestersAndSubjects(t *testing.T) {
	c := newTestClient(t)
	id := seedUser(t, c, "alice")

	require.NoError(t, c.UpsertSemester(id, semesterFixture(3, 7.5,
		models.SubjectRecord{SubjectName: "C", TotalMarks: 70},
	)))
	require.NoError(t, c.UpsertSemester(id, semesterFixture(1, 7.0,
		models.SubjectRecord{SubjectName: "A", TotalMarks: 80},
		models.SubjectRecord{SubjectName: "B", TotalMarks: 75},
	)))
	require.NoError(t, c.UpsertSemester(id, semesterFixture(2, 8.0,
		models.SubjectRecord{SubjectName: "A", TotalMarks: 85},
	)))

	history, err := c.GetStudentHistory(id)
	require.NoError(t, err)
	require.Len(t, history.Semesters, 3)
	assert.Equal(t, id, history.StudentID)

	assert.Equal(t, 1, history.Semesters[0].SemesterIndex)
	assert.Equal(t, 2, history.Semesters[1].SemesterIndex)
	assert.Equal(t, 3, history.Semesters[2].SemesterIndex)

	require.Len(t, history.Semesters[0].Subjects, 2)
	assert.Equal(t, "A", history.Semesters[0].Subjects[0].SubjectName)
	assert.Equal(t, "B", history.Semesters[0].Subjects[1].SubjectName)
}

func TestGetStudentHistory_Empty(t *testing.T) {
	c := newTestClient(t)
	id := seedUser(t, c, "alice")

	history, err := c.GetStudentHistory(id)
	require.NoError(t, err)
	assert.Equal(t, id, history.StudentID)
	assert.Empty(t, history.Semesters)
}

func TestDeleteSemester(t *testing.T) {
	c := newTestClient(t)
	id := seedUser(t, c, "alice")

	require.NoError(t, c.UpsertSemester(id, semesterFixture(1, 7.0,
		models.SubjectRecord{SubjectName: "A", TotalMarks: 80},
	)))

	deleted, err := c.DeleteSemester(id, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.DeleteSemester(id, 1)
	require.NoError(t, err)
	assert.False(t, deleted)

	history, err := c.GetStudentHistory(id)
	require.NoError(t, err)
	assert.Empty(t, history.Semesters)
}

func TestClearHistory(t *testing.T) {
	c := newTestClient(t)
	id := seedUser(t, c, "alice")

	require.NoError(t, c.UpsertSemester(id, semesterFixture(1, 7.0,
		models.SubjectRecord{SubjectName: "A", TotalMarks: 80},
	)))
	require.NoError(t, c.UpsertSemester(id, semesterFixture(2, 8.0,
		models.SubjectRecord{SubjectName: "A", TotalMarks: 85},
	)))

	require.NoError(t, c.ClearHistory(id))

	history, err := c.GetStudentHistory(id)
	require.NoError(t, err)
	assert.Empty(t, history.Semesters)
}

func TestSaveAnalysisRun(t *testing.T) {
	c := newTestClient(t)
	id := seedUser(t, c, "alice")

	run := &models.AnalysisRun{
		ID:          "run-1",
		UserID:      id,
		ContentHash: "abc123",
		Cached:      false,
		LatencyMS:   12,
		CreatedAt:   time.Now(),
	}
	assert.NoError(t, c.SaveAnalysisRun(run))
}
