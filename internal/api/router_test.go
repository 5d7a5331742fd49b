package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vocalearn/backend/internal/config"
	"github.com/vocalearn/backend/internal/dal"
	sqlrepo "github.com/vocalearn/backend/internal/dal/sql"
	"github.com/vocalearn/backend/internal/learning"
)

func testAPIConfig() *config.API {
	return &config.API{
		HTTP: config.HTTP{
			ProcessTimeout: 10 * time.Second,
			RateLimit:      1000,
			CORS:           config.CORS{AllowOrigins: []string{"http://localhost:3000"}},
			Cookie:         config.Cookie{Path: "/", Domain: "localhost", AccessExpiresIn: time.Hour},
			JWT:            testJWTConfig(),
		},
		Learning: config.Learning{MinReviewCount: 3, MinPassRate: 0.6},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *sqlrepo.Repository, *JWTProcessor) {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := slog.New(slog.DiscardHandler)
	repo, err := sqlrepo.NewRepository(context.Background(), db, log)
	require.NoError(t, err)

	conf := testAPIConfig()
	service := learning.NewService(repo, learning.Config{
		MinReviewCount: conf.Learning.MinReviewCount,
		MinPassRate:    conf.Learning.MinPassRate,
	}, log)

	router := NewRouter(context.Background(), conf, Dependencies{
		Repo:    repo,
		Service: service,
		Logger:  log,
	})

	return router, repo, NewJWTProcessor(conf.HTTP.JWT, conf.HTTP.Cookie.AccessExpiresIn)
}

func doJSON(h http.Handler, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func accessCookie(t *testing.T, jwtProc *JWTProcessor, username, permission string) *http.Cookie {
	t.Helper()

	token, err := jwtProc.ToAccessToken(username, permission)
	require.NoError(t, err)
	return &http.Cookie{Name: accessCookieName, Value: token}
}

func seedTestLesson(t *testing.T, repo *sqlrepo.Repository, lessonID int64, words ...string) {
	t.Helper()

	lesson := dal.Lesson{
		LessonID:  lessonID,
		Course:    "JLPT N5",
		Name:      "Greetings",
		Lang:      "jp",
		Avail:     true,
		VocabSize: len(words),
	}
	for i, w := range words {
		lesson.Vocab = append(lesson.Vocab, dal.VocabEntry{ID: i + 1, Word: w, Meaning: "meaning of " + w})
	}
	require.NoError(t, repo.CreateLesson(context.Background(), lesson))
}

type reviewResponse struct {
	Lesson  lessonView       `json:"_lesson"`
	Stat    []wordResultView `json:"_stat"`
	Overall []vocabStatView  `json:"_overall"`
}

func TestSubmitReview_Anonymous(t *testing.T) {
	router, repo, _ := newTestRouter(t)
	seedTestLesson(t, repo, 1, "a", "b", "c")

	rec := doJSON(router, http.MethodPost, "/lessons/1/review", `{"lid":1,"id":[1],"qid":[1,2],"vsize":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res reviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	assert.Equal(t, int64(1), res.Lesson.LessonID)
	assert.Equal(t, []wordResultView{{ID: 1, IsCorrect: true}, {ID: 2, IsCorrect: false}}, res.Stat)
	assert.Equal(t, []vocabStatView{
		{ID: 1, ReviewCorrect: 1, ReviewTotal: 1},
		{ID: 2, ReviewCorrect: 0, ReviewTotal: 1},
		{ID: 3, ReviewCorrect: 0, ReviewTotal: 0},
	}, res.Overall)

	// nothing is persisted without an access token
	_, err := repo.GetLessonStat(context.Background(), "", 1)
	assert.ErrorIs(t, err, dal.ErrNotFound)
}

func TestSubmitReview_AuthenticatedMergesAcrossSessions(t *testing.T) {
	router, repo, jwtProc := newTestRouter(t)
	seedTestLesson(t, repo, 1, "a", "b", "c", "d", "e")
	cookie := accessCookie(t, jwtProc, "alice", dal.PermissionUser)

	rec := doJSON(router, http.MethodPost, "/lessons/1/review", `{"lid":1,"id":[1,2],"qid":[1,2,3],"vsize":5}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodPost, "/lessons/1/review", `{"lid":1,"id":[4],"qid":[3,4],"vsize":5}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var res reviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []vocabStatView{
		{ID: 1, ReviewCorrect: 1, ReviewTotal: 1},
		{ID: 2, ReviewCorrect: 1, ReviewTotal: 1},
		{ID: 3, ReviewCorrect: 0, ReviewTotal: 2},
		{ID: 4, ReviewCorrect: 1, ReviewTotal: 1},
		{ID: 5, ReviewCorrect: 0, ReviewTotal: 0},
	}, res.Overall)

	activity, err := repo.FindDailyActivity(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, 2, activity[0].ReviewCount)
}

func TestSubmitReview_UnknownLesson(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/lessons/42/review", `{"lid":42,"qid":[1],"vsize":3}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitReview_InvalidPayload(t *testing.T) {
	router, repo, _ := newTestRouter(t)
	seedTestLesson(t, repo, 1, "a")

	// vsize is required
	rec := doJSON(router, http.MethodPost, "/lessons/1/review", `{"lid":1,"qid":[1]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// quizzed id out of the vocab range
	rec = doJSON(router, http.MethodPost, "/lessons/1/review", `{"lid":1,"qid":[7],"vsize":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitReview_PathBodyLessonMismatch(t *testing.T) {
	router, repo, _ := newTestRouter(t)
	seedTestLesson(t, repo, 1, "a", "b")
	seedTestLesson(t, repo, 2, "c", "d")

	rec := doJSON(router, http.MethodPost, "/lessons/1/review", `{"lid":2,"id":[1],"qid":[1],"vsize":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLessons_OnlyAvailable(t *testing.T) {
	router, repo, _ := newTestRouter(t)
	seedTestLesson(t, repo, 1, "a")
	require.NoError(t, repo.CreateLesson(context.Background(), dal.Lesson{
		LessonID: 2, Course: "JLPT N5", Name: "Hidden", Lang: "jp", Avail: false, VocabSize: 0,
	}))

	rec := doJSON(router, http.MethodGet, "/lessons", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Lessons []lessonView `json:"_lesson"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Lessons, 1)
	assert.Equal(t, int64(1), res.Lessons[0].LessonID)
}

func TestGetLesson_NotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/lessons/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboard_RequiresAuth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboard_Authenticated(t *testing.T) {
	router, repo, jwtProc := newTestRouter(t)
	seedTestLesson(t, repo, 1, "a", "b")
	cookie := accessCookie(t, jwtProc, "alice", dal.PermissionUser)

	// four passing reviews push word 1 over the learnt thresholds
	for range 4 {
		rec := doJSON(router, http.MethodPost, "/lessons/1/review", `{"lid":1,"id":[1],"qid":[1],"vsize":2}`, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(router, http.MethodGet, "/dashboard", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		LessonList []struct {
			Fullname    string `json:"fullname"`
			LessonID    int64  `json:"lesson_id"`
			LearntCount int    `json:"learnt_count"`
			WordCount   int    `json:"word_count"`
		} `json:"lesson_list"`
		LearntWordCount int      `json:"learnt_word_count"`
		LearnStat       [][2]any `json:"learn_stat"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	assert.Equal(t, 1, res.LearntWordCount)
	require.Len(t, res.LessonList, 1)
	assert.Equal(t, "JLPT N5 Greetings", res.LessonList[0].Fullname)
	assert.Equal(t, 1, res.LessonList[0].LearntCount)
	assert.Equal(t, 2, res.LessonList[0].WordCount)
	require.Len(t, res.LearnStat, 1)
	assert.EqualValues(t, 4, res.LearnStat[0][1])
}

func TestAdmin_RequiresAdminPermission(t *testing.T) {
	router, _, jwtProc := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/admin/lessons", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	userCookie := accessCookie(t, jwtProc, "alice", dal.PermissionUser)
	rec = doJSON(router, http.MethodGet, "/admin/lessons", "", userCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminCookie := accessCookie(t, jwtProc, "root", dal.PermissionAdmin)
	rec = doJSON(router, http.MethodGet, "/admin/lessons", "", adminCookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmin_CreateAndDeleteLesson(t *testing.T) {
	router, repo, jwtProc := newTestRouter(t)
	adminCookie := accessCookie(t, jwtProc, "root", dal.PermissionAdmin)

	body := `{"lesson_id":1,"course":"JLPT N5","name":"Greetings","lang":"jp","words":[{"word":"a","meaning":"first"},{"word":"b","meaning":"second"}]}`
	rec := doJSON(router, http.MethodPost, "/admin/lessons", body, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	lesson, err := repo.FindLesson(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, lesson.VocabSize)
	assert.True(t, lesson.Avail)

	rec = doJSON(router, http.MethodPost, "/admin/lessons", body, adminCookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(router, http.MethodDelete, "/admin/lessons/1", "", adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = repo.FindLesson(context.Background(), 1)
	assert.ErrorIs(t, err, dal.ErrNotFound)

	rec = doJSON(router, http.MethodDelete, "/admin/lessons/1", "", adminCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_UpdateAvailability(t *testing.T) {
	router, repo, jwtProc := newTestRouter(t)
	seedTestLesson(t, repo, 1, "a")
	seedTestLesson(t, repo, 2, "b")
	adminCookie := accessCookie(t, jwtProc, "root", dal.PermissionAdmin)

	rec := doJSON(router, http.MethodPut, "/admin/lessons/availability", `{"avail":[2]}`, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	lessons, err := repo.FindLessons(context.Background(), dal.LessonsFilter{AvailOnly: true})
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, int64(2), lessons[0].LessonID)
}

func TestAdmin_ExportLessonCSV(t *testing.T) {
	router, repo, jwtProc := newTestRouter(t)
	seedTestLesson(t, repo, 1, "ありがとう", "おはよう")
	adminCookie := accessCookie(t, jwtProc, "root", dal.PermissionAdmin)

	rec := doJSON(router, http.MethodGet, "/admin/lessons/1/csv", "", adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "JLPT N5 Greetings.csv")
	assert.Equal(t, "ありがとう,meaning of ありがとう\nおはよう,meaning of おはよう\n", rec.Body.String())
}

func TestAuthFlow(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/auth/register", `{"username":"alice","password":"password123","firstname":"Alice","lastname":"Smith"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var access *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == accessCookieName {
			access = cookie
		}
	}
	require.NotNil(t, access, "register must set the access cookie")

	rec = doJSON(router, http.MethodPost, "/auth/register", `{"username":"alice","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(router, http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(router, http.MethodPost, "/auth/login", `{"username":"alice","password":"password123"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodGet, "/auth/status", "", access)
	require.Equal(t, http.StatusOK, rec.Code)

	var status statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Authenticated)
	assert.Equal(t, "alice", status.Username)
	assert.Equal(t, dal.PermissionUser, status.Permission)

	rec = doJSON(router, http.MethodGet, "/auth/info", "", access)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodGet, "/auth/info", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_ValidationRejectsShortPassword(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/auth/register", `{"username":"alice","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
