package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	appctx "github.com/vocalearn/backend/internal/context"
	"github.com/vocalearn/backend/internal/dal"
	"github.com/vocalearn/backend/internal/learning"
)

type (
	// reviewRequest mirrors the client contract: id/qid/vsize field names are
	// stable and shared with the rendering layer.
	reviewRequest struct {
		LessonID   int64 `json:"lid" validate:"required"`
		CorrectIDs []int `json:"id"`
		QuizzedIDs []int `json:"qid"`
		VocabSize  int   `json:"vsize" validate:"required,min=1"`
	}

	wordResultView struct {
		ID        int  `json:"id"`
		IsCorrect bool `json:"is_correct"`
	}

	vocabStatView struct {
		ID            int `json:"id"`
		ReviewCorrect int `json:"review_correct"`
		ReviewTotal   int `json:"review_total"`
	}

	ReviewHandler struct {
		service *learning.Service
		log     *slog.Logger
	}
)

func NewReviewHandler(service *learning.Service, log *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log,
	}
}

// SubmitReview scores a quiz session. Authenticated submissions are merged
// into the caller's cumulative stats; anonymous ones are scored and returned
// without persisting anything.
func (h *ReviewHandler) SubmitReview(c echo.Context) error {
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}

	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	lessonID, err := lessonIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if req.LessonID != lessonID {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "lesson id in path and body do not match"})
	}

	username := ""
	if user, ok := appctx.UserFromContext(c.Request().Context()); ok {
		username = user.Username
	}

	result, err := h.service.RecordReview(c.Request().Context(), username, learning.Submission{
		LessonID:   lessonID,
		CorrectIDs: req.CorrectIDs,
		QuizzedIDs: req.QuizzedIDs,
		VocabSize:  req.VocabSize,
	})
	if err != nil {
		var validationErr *learning.ValidationError
		switch {
		case errors.Is(err, dal.ErrNotFound):
			return c.JSON(http.StatusNotFound, NotFoundError)
		case errors.As(err, &validationErr):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: validationErr.Error()})
		default:
			h.log.ErrorContext(c.Request().Context(), "failed to record review", "error", err)
			return c.JSON(http.StatusInternalServerError, InternalServerError)
		}
	}

	words := make([]wordResultView, len(result.Words))
	for i, w := range result.Words {
		words[i] = wordResultView{ID: w.ID, IsCorrect: w.IsCorrect}
	}
	overall := make([]vocabStatView, len(result.Overall))
	for i, vs := range result.Overall {
		overall[i] = vocabStatView{ID: vs.ID, ReviewCorrect: vs.ReviewCorrect, ReviewTotal: vs.ReviewTotal}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"_lesson":  toLessonView(*result.Lesson),
		"_stat":    words,
		"_overall": overall,
	})
}
