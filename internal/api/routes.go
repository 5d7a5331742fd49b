package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/vocalearn/backend/internal/config"
	"github.com/vocalearn/backend/internal/dal"
	"github.com/vocalearn/backend/internal/learning"
	"github.com/vocalearn/backend/pkg/cache"
)

type (
	Dependencies struct {
		Repo    dal.Repository
		Service *learning.Service
		Logger  *slog.Logger
	}
)

func NewRouter(ctx context.Context, conf *config.API, deps Dependencies) http.Handler {
	e := echo.New()

	e.Use(middleware.RequestID())
	e.Use(loggingMiddleware(ctx, deps.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(conf.HTTP.RateLimit))))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.HTTP.CORS.AllowOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: conf.HTTP.ProcessTimeout,
	}))
	e.Use(middleware.Secure())

	e.Validator = NewValidator()
	e.HTTPErrorHandler = HTTPErrorHandler(deps.Logger)

	jwtProcessor := NewJWTProcessor(conf.HTTP.JWT, conf.HTTP.Cookie.AccessExpiresIn)
	cookiesProcessor := NewCookiesProcessor(conf.HTTP.Cookie)

	authMiddleware := AuthMiddleware(cookiesProcessor, jwtProcessor, deps.Logger)
	optionalAuthMiddleware := OptionalAuthMiddleware(cookiesProcessor, jwtProcessor, deps.Logger)

	auth := NewAuthHandler(AuthDependencies{
		Repo:             deps.Repo,
		JWTProcessor:     jwtProcessor,
		CookiesProcessor: cookiesProcessor,
		Logger:           deps.Logger,
	})

	e.POST("/auth/register", auth.Register)
	e.POST("/auth/login", auth.Login)
	e.GET("/auth/status", auth.Status)
	e.POST("/auth/logout", auth.LogOut)

	listCache := cache.NewInMemory()
	lessons := NewLessonsHandler(deps.Repo, listCache, deps.Logger)
	e.GET("/lessons", lessons.ListLessons)
	e.GET("/lessons/:lesson_id", lessons.GetLesson)
	e.GET("/lessons/:lesson_id/quizset", lessons.GetQuizSet)

	review := NewReviewHandler(deps.Service, deps.Logger)
	e.POST("/lessons/:lesson_id/review", review.SubmitReview, optionalAuthMiddleware)

	securedGroup := e.Group("", authMiddleware)
	securedGroup.GET("/auth/info", auth.Info)

	dashboard := NewDashboardHandler(deps.Service, deps.Logger)
	securedGroup.GET("/dashboard", dashboard.GetDashboard)

	admin := NewAdminHandler(deps.Repo, listCache, deps.Logger)
	adminGroup := securedGroup.Group("/admin", AdminMiddleware())
	adminGroup.GET("/lessons", admin.ListLessons)
	adminGroup.PUT("/lessons/availability", admin.UpdateAvailability)
	adminGroup.POST("/lessons", admin.CreateLesson)
	adminGroup.DELETE("/lessons/:lesson_id", admin.DeleteLesson)
	adminGroup.GET("/lessons/:lesson_id/csv", admin.ExportLessonCSV)

	return e
}

func loggingMiddleware(ctx context.Context, log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		HandleError: true, // forwards error to the global error handler, so it can decide appropriate status code
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				log.LogAttrs(ctx, slog.LevelInfo, "REQUEST",
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
				)
			} else {
				log.LogAttrs(ctx, slog.LevelError, "REQUEST_ERROR",
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.String("err", v.Error.Error()),
				)
			}
			return nil
		},
	})
}
