package learning

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vocalearn/backend/internal/dal"
)

type (
	// LessonSummary is one dashboard row per lesson the user has reviewed.
	LessonSummary struct {
		Title       string
		LessonID    int64
		Lang        string
		LearntCount int
		WordCount   int
	}

	Dashboard struct {
		LearntWordCount int
		Lessons         []LessonSummary
		Activity        []dal.DailyActivity
		Profile         *dal.Profile
	}
)

// BuildDashboard aggregates the user's learning state from persisted data
// only, so calling it twice without an intervening review yields the same
// output.
func (s *Service) BuildDashboard(ctx context.Context, username string) (*Dashboard, error) {
	var (
		lessons  []dal.Lesson
		stats    []dal.LessonStat
		activity []dal.DailyActivity
		profile  *dal.Profile
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		lessons, err = s.repo.FindLessons(egCtx, dal.LessonsFilter{})
		return err
	})
	eg.Go(func() (err error) {
		stats, err = s.repo.FindLessonStats(egCtx, username)
		return err
	})
	eg.Go(func() (err error) {
		activity, err = s.repo.FindDailyActivity(egCtx, username)
		return err
	})
	eg.Go(func() (err error) {
		profile, err = s.repo.GetProfile(egCtx, username)
		if errors.Is(err, dal.ErrNotFound) {
			profile = nil
			return nil
		}
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("build dashboard for %q: %w", username, err)
	}

	lessonByID := make(map[int64]dal.Lesson, len(lessons))
	for _, lesson := range lessons {
		lessonByID[lesson.LessonID] = lesson
	}

	res := Dashboard{
		Activity: activity,
		Profile:  profile,
	}
	for _, stat := range stats {
		lesson, ok := lessonByID[stat.LessonID]
		if !ok {
			// stat outlived its lesson; nothing to title the row with
			s.log.WarnContext(ctx, "skipping stat of missing lesson", "lesson_id", stat.LessonID, "username", username)
			continue
		}

		learnt := 0
		for _, vs := range stat.VocabStat {
			if s.isLearnt(vs) {
				learnt++
			}
		}
		res.LearntWordCount += learnt
		res.Lessons = append(res.Lessons, LessonSummary{
			Title:       lesson.Course + " " + lesson.Name,
			LessonID:    lesson.LessonID,
			Lang:        lesson.Lang,
			LearntCount: learnt,
			WordCount:   lesson.VocabSize,
		})
	}

	return &res, nil
}

// isLearnt applies the configured thresholds. The review count check runs
// first, so the rate is never computed against a zero total. A rate exactly
// equal to MinPassRate counts as learnt.
func (s *Service) isLearnt(vs dal.VocabStat) bool {
	return vs.ReviewTotal > s.conf.MinReviewCount &&
		float64(vs.ReviewCorrect)/float64(vs.ReviewTotal) >= s.conf.MinPassRate
}
