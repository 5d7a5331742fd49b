package learning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vocalearn/backend/internal/dal"
)

type (
	// Config holds the "learnt word" thresholds. A word counts as learnt once
	// it has been reviewed more than MinReviewCount times with a success rate
	// of at least MinPassRate.
	Config struct {
		MinReviewCount int
		MinPassRate    float64
	}

	// ReviewResult is what a review submission renders from: the lesson, the
	// per-word verdicts of this session, and the cumulative counters. For
	// anonymous callers Overall reflects this session only and nothing is
	// persisted.
	ReviewResult struct {
		Lesson  *dal.Lesson
		Words   []WordResult
		Overall []dal.VocabStat
	}

	Service struct {
		repo dal.Repository
		conf Config
		log  *slog.Logger

		now func() time.Time
	}
)

func NewService(repo dal.Repository, conf Config, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		conf: conf,
		log:  log,

		now: time.Now,
	}
}

// RecordReview scores a submission and, for authenticated users, merges the
// resulting counter delta into the stored lesson stat and bumps the day's
// activity counter. An empty username means anonymous: the result is computed
// and returned but never persisted. An empty quiz set persists no lesson stat.
func (s *Service) RecordReview(ctx context.Context, username string, sub Submission) (*ReviewResult, error) {
	lesson, err := s.repo.FindLesson(ctx, sub.LessonID)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return nil, dal.ErrNotFound
		}
		return nil, fmt.Errorf("find lesson %d: %w", sub.LessonID, err)
	}

	words, delta, err := score(sub)
	if err != nil {
		return nil, err
	}

	if username == "" {
		return &ReviewResult{
			Lesson:  lesson,
			Words:   words,
			Overall: sessionOverall(sub, words),
		}, nil
	}

	var overall []dal.VocabStat
	err = s.repo.Transact(ctx, func(r dal.Repository) error {
		if len(delta) > 0 {
			if err := r.ApplyStatDelta(ctx, username, sub.LessonID, delta); err != nil {
				return err
			}
		}
		if err := r.IncrementReviewCount(ctx, username, s.now()); err != nil {
			return err
		}

		stat, err := r.GetLessonStat(ctx, username, sub.LessonID)
		if err != nil {
			if errors.Is(err, dal.ErrNotFound) {
				// nothing quizzed yet for this lesson; render zero counters
				overall = zeroStats(sub.VocabSize)
				return nil
			}
			return err
		}
		overall = stat.VocabStat
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record review for %q lesson %d: %w", username, sub.LessonID, err)
	}

	return &ReviewResult{
		Lesson:  lesson,
		Words:   words,
		Overall: overall,
	}, nil
}

// sessionOverall projects a single session onto the full vocab range the way
// a first persisted submission would look.
func sessionOverall(sub Submission, words []WordResult) []dal.VocabStat {
	overall := zeroStats(sub.VocabSize)
	for _, w := range words {
		overall[w.ID-1].ReviewTotal = 1
		if w.IsCorrect {
			overall[w.ID-1].ReviewCorrect = 1
		}
	}
	return overall
}

func zeroStats(size int) []dal.VocabStat {
	stats := make([]dal.VocabStat, size)
	for i := range stats {
		stats[i].ID = i + 1
	}
	return stats
}
