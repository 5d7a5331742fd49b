package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vocalearn/backend/internal/dal"
	"github.com/vocalearn/backend/pkg/cache"
)

type (
	newLessonWord struct {
		Word    string `json:"word" validate:"required,min=1"`
		Meaning string `json:"meaning" validate:"required,min=1"`
	}

	newLessonRequest struct {
		LessonID int64           `json:"lesson_id" validate:"required,min=1"`
		Course   string          `json:"course" validate:"required,min=1"`
		Name     string          `json:"name" validate:"required,min=1"`
		Lang     string          `json:"lang" validate:"required,min=2,max=8"`
		Words    []newLessonWord `json:"words" validate:"required,min=1,dive"`
	}

	availabilityRequest struct {
		Avail []int64 `json:"avail"`
	}

	AdminHandler struct {
		repo  dal.Repository
		cache *cache.InMemory
		log   *slog.Logger
	}
)

func NewAdminHandler(repo dal.Repository, listCache *cache.InMemory, log *slog.Logger) *AdminHandler {
	return &AdminHandler{
		repo:  repo,
		cache: listCache,
		log:   log,
	}
}

// ListLessons returns every lesson, available or not.
func (h *AdminHandler) ListLessons(c echo.Context) error {
	lessons, err := h.repo.FindLessons(c.Request().Context(), dal.LessonsFilter{})
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to find lessons", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	views := make([]lessonView, len(lessons))
	for i, lesson := range lessons {
		views[i] = toLessonView(lesson)
	}

	return c.JSON(http.StatusOK, echo.Map{"_lesson": views})
}

// UpdateAvailability makes exactly the listed lessons available to learners.
func (h *AdminHandler) UpdateAvailability(c echo.Context) error {
	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}

	// reset-all plus set-listed is two statements; keep them atomic so a
	// failure can never leave every lesson hidden
	err := h.repo.Transact(c.Request().Context(), func(r dal.Repository) error {
		return r.SetLessonsAvailability(c.Request().Context(), req.Avail)
	})
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to update availability", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}
	h.cache.Clear()

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "message": "availability updated"})
}

// CreateLesson stores a new lesson. Vocab ids are assigned by position,
// 1..N. A duplicate lesson id is rejected before anything is written.
func (h *AdminHandler) CreateLesson(c echo.Context) error {
	var req newLessonRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}

	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	lesson := dal.Lesson{
		LessonID:  req.LessonID,
		Course:    req.Course,
		Name:      req.Name,
		Lang:      req.Lang,
		Avail:     true,
		VocabSize: len(req.Words),
	}
	for i, w := range req.Words {
		lesson.Vocab = append(lesson.Vocab, dal.VocabEntry{ID: i + 1, Word: w.Word, Meaning: w.Meaning})
	}

	err := h.repo.Transact(c.Request().Context(), func(r dal.Repository) error {
		if _, err := r.FindLesson(c.Request().Context(), req.LessonID); err == nil {
			return dal.ErrDuplicate
		} else if !errors.Is(err, dal.ErrNotFound) {
			return err
		}
		return r.CreateLesson(c.Request().Context(), lesson)
	})
	if err != nil {
		if errors.Is(err, dal.ErrDuplicate) {
			return c.JSON(http.StatusConflict, ErrorResponse{Message: fmt.Sprintf("lesson %d already exists", req.LessonID)})
		}
		h.log.ErrorContext(c.Request().Context(), "failed to create lesson", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}
	h.cache.Clear()

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "message": "lesson created"})
}

// DeleteLesson removes a lesson together with every user's stats for it.
func (h *AdminHandler) DeleteLesson(c echo.Context) error {
	lessonID, err := lessonIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}

	err = h.repo.Transact(c.Request().Context(), func(r dal.Repository) error {
		if _, err := r.FindLesson(c.Request().Context(), lessonID); err != nil {
			return err
		}
		return r.DeleteLesson(c.Request().Context(), lessonID)
	})
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NotFoundError)
		}
		h.log.ErrorContext(c.Request().Context(), "failed to delete lesson", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}
	h.cache.Clear()

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "message": "lesson deleted"})
}

// ExportLessonCSV streams a lesson's vocab as "word,meaning" rows.
func (h *AdminHandler) ExportLessonCSV(c echo.Context) error {
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

	filename := fmt.Sprintf("%s %s.csv", lesson.Course, lesson.Name)
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	for _, v := range lesson.Vocab {
		if err := w.Write([]string{v.Word, v.Meaning}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()

	return w.Error()
}
