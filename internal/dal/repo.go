package dal

import (
	"context"
	"errors"
	"time"
)

const (
	PermissionUser  = "user"
	PermissionAdmin = "admin"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type (
	LessonsFilter struct {
		Lang      string
		AvailOnly bool
	}

	LessonsRepository interface {
		FindLesson(ctx context.Context, lessonID int64) (*Lesson, error)
		FindLessons(ctx context.Context, filter LessonsFilter) ([]Lesson, error)
		CreateLesson(ctx context.Context, lesson Lesson) error
		SetLessonsAvailability(ctx context.Context, availIDs []int64) error
		DeleteLesson(ctx context.Context, lessonID int64) error
	}

	StatsRepository interface {
		GetLessonStat(ctx context.Context, username string, lessonID int64) (*LessonStat, error)
		FindLessonStats(ctx context.Context, username string) ([]LessonStat, error)
		// ApplyStatDelta adds the given counter increments to the stored
		// counters of (username, lessonID) in a single statement. Rows for ids
		// that were never stored before are created, so the first submission
		// seeds the full 1..vocab_size range.
		ApplyStatDelta(ctx context.Context, username string, lessonID int64, delta []VocabStat) error
	}

	DailyActivityRepository interface {
		// IncrementReviewCount bumps the review counter of the calendar day of
		// `when` (server-local time) via a store-level upsert.
		IncrementReviewCount(ctx context.Context, username string, when time.Time) error
		FindDailyActivity(ctx context.Context, username string) ([]DailyActivity, error)
	}

	AccountsRepository interface {
		CreateAccount(ctx context.Context, account Account) error
		FindAccount(ctx context.Context, username string) (*Account, error)
		GetProfile(ctx context.Context, username string) (*Profile, error)
		SaveProfile(ctx context.Context, profile Profile) error
	}

	Repository interface {
		Transact(ctx context.Context, txFunc func(r Repository) error) error
		LessonsRepository
		StatsRepository
		DailyActivityRepository
		AccountsRepository
	}
)
