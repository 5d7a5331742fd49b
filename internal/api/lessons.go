package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vocalearn/backend/internal/dal"
	"github.com/vocalearn/backend/pkg/cache"
)

const lessonListCacheTTL = time.Minute

type (
	vocabEntryView struct {
		ID      int    `json:"id"`
		Word    string `json:"word"`
		Meaning string `json:"meaning"`
	}

	lessonView struct {
		LessonID  int64            `json:"lesson_id"`
		Course    string           `json:"course"`
		Name      string           `json:"name"`
		Lang      string           `json:"lang"`
		Avail     bool             `json:"avail"`
		VocabSize int              `json:"vocab_size"`
		Vocab     []vocabEntryView `json:"vocab,omitempty"`
	}

	LessonsQueryParams struct {
		Lang string `query:"lang" validate:"omitempty,min=2,max=8"`
	}

	LessonsHandler struct {
		repo  dal.LessonsRepository
		cache *cache.InMemory
		log   *slog.Logger
	}
)

func NewLessonsHandler(repo dal.LessonsRepository, listCache *cache.InMemory, log *slog.Logger) *LessonsHandler {
	return &LessonsHandler{
		repo:  repo,
		cache: listCache,
		log:   log,
	}
}

// ListLessons returns the available lessons, optionally filtered by language.
// The listing is read-mostly, so responses are served from a short-lived
// cache that admin mutations clear.
func (h *LessonsHandler) ListLessons(c echo.Context) error {
	var qp LessonsQueryParams
	if err := c.Bind(&qp); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}

	if err := c.Validate(&qp); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	cacheKey := "lessons:" + qp.Lang
	if cached, ok := h.cache.Get(cacheKey); ok {
		return c.JSONBlob(http.StatusOK, []byte(cached))
	}

	lessons, err := h.repo.FindLessons(c.Request().Context(), dal.LessonsFilter{
		Lang:      qp.Lang,
		AvailOnly: true,
	})
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to find lessons", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	views := make([]lessonView, len(lessons))
	for i, lesson := range lessons {
		views[i] = toLessonView(lesson)
	}

	body, err := json.Marshal(echo.Map{"_lesson": views})
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to marshal lessons", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}
	h.cache.Set(cacheKey, string(body), lessonListCacheTTL)

	return c.JSONBlob(http.StatusOK, body)
}

// GetLesson returns one lesson with its full vocab list.
func (h *LessonsHandler) GetLesson(c echo.Context) error {
	lessonID, err := lessonIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}

	lesson, err := h.repo.FindLesson(c.Request().Context(), lessonID)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NotFoundError)
		}
		h.log.ErrorContext(c.Request().Context(), "failed to find lesson", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	return c.JSON(http.StatusOK, echo.Map{"_lesson": toLessonView(*lesson)})
}

// GetQuizSet returns the payload the client builds a quiz session from.
func (h *LessonsHandler) GetQuizSet(c echo.Context) error {
	return h.GetLesson(c)
}

func toLessonView(lesson dal.Lesson) lessonView {
	view := lessonView{
		LessonID:  lesson.LessonID,
		Course:    lesson.Course,
		Name:      lesson.Name,
		Lang:      lesson.Lang,
		Avail:     lesson.Avail,
		VocabSize: lesson.VocabSize,
	}
	for _, v := range lesson.Vocab {
		view.Vocab = append(view.Vocab, vocabEntryView{ID: v.ID, Word: v.Word, Meaning: v.Meaning})
	}
	return view
}

func lessonIDParam(c echo.Context) (int64, error) {
	var lessonID int64
	if err := echo.PathParamsBinder(c).Int64("lesson_id", &lessonID).BindError(); err != nil {
		return 0, err
	}
	return lessonID, nil
}
