package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	appctx "github.com/vocalearn/backend/internal/context"
	"github.com/vocalearn/backend/internal/learning"
)

type (
	lessonSummaryView struct {
		Fullname    string `json:"fullname"`
		LessonID    int64  `json:"lesson_id"`
		Lang        string `json:"lang"`
		LearntCount int    `json:"learnt_count"`
		WordCount   int    `json:"word_count"`
	}

	profileView struct {
		Username  string `json:"username"`
		FirstName string `json:"firstname"`
		LastName  string `json:"lastname"`
		Score     int    `json:"score"`
	}

	DashboardHandler struct {
		service *learning.Service
		log     *slog.Logger
	}
)

func NewDashboardHandler(service *learning.Service, log *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		log:     log,
	}
}

func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	user := appctx.MustUserFromContext(c.Request().Context())

	dashboard, err := h.service.BuildDashboard(c.Request().Context(), user.Username)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to build dashboard", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	lessonList := make([]lessonSummaryView, len(dashboard.Lessons))
	for i, summary := range dashboard.Lessons {
		lessonList[i] = lessonSummaryView{
			Fullname:    summary.Title,
			LessonID:    summary.LessonID,
			Lang:        summary.Lang,
			LearntCount: summary.LearntCount,
			WordCount:   summary.WordCount,
		}
	}

	// activity history as [date, count] pairs, the shape the chart renders
	learnStat := make([][2]any, len(dashboard.Activity))
	for i, entry := range dashboard.Activity {
		date := fmt.Sprintf("%d/%d/%d", entry.Date.Day(), int(entry.Date.Month()), entry.Date.Year())
		learnStat[i] = [2]any{date, entry.ReviewCount}
	}

	var profile *profileView
	if dashboard.Profile != nil {
		profile = &profileView{
			Username:  dashboard.Profile.Username,
			FirstName: dashboard.Profile.FirstName,
			LastName:  dashboard.Profile.LastName,
			Score:     dashboard.Profile.Score,
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"lesson_list":       lessonList,
		"learnt_word_count": dashboard.LearntWordCount,
		"learn_stat":        learnStat,
		"profile":           profile,
	})
}
