package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/vocalearn/backend/internal/dal"
)

func (r *Repository) FindLesson(ctx context.Context, lessonID int64) (*dal.Lesson, error) {
	query, args, err := dal.FindLessonQuery(lessonID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lesson dal.Lesson
	row := r.client.QueryRowContext(ctx, query, args...)
	err = row.Scan(
		&lesson.LessonID,
		&lesson.Course,
		&lesson.Name,
		&lesson.Lang,
		&lesson.Avail,
		&lesson.VocabSize,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dal.ErrNotFound
		}
		return nil, fmt.Errorf("find lesson: %w", err)
	}

	lesson.Vocab, err = r.findLessonVocab(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	return &lesson, nil
}

func (r *Repository) findLessonVocab(ctx context.Context, lessonID int64) ([]dal.VocabEntry, error) {
	query, args, err := dal.FindLessonVocabQuery(lessonID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.client.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find lesson vocab: %w", err)
	}
	defer rows.Close()

	var vocab []dal.VocabEntry
	for rows.Next() {
		var entry dal.VocabEntry
		if err := rows.Scan(&entry.ID, &entry.Word, &entry.Meaning); err != nil {
			return nil, fmt.Errorf("scan vocab entry: %w", err)
		}
		vocab = append(vocab, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lesson vocab: %w", err)
	}

	return vocab, nil
}

func (r *Repository) FindLessons(ctx context.Context, filter dal.LessonsFilter) ([]dal.Lesson, error) {
	query, args, err := dal.FindLessonsQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.client.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find lessons: %w", err)
	}
	defer rows.Close()

	var lessons []dal.Lesson
	for rows.Next() {
		var lesson dal.Lesson
		err := rows.Scan(
			&lesson.LessonID,
			&lesson.Course,
			&lesson.Name,
			&lesson.Lang,
			&lesson.Avail,
			&lesson.VocabSize,
			&lesson.CreatedAt,
			&lesson.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}

	return lessons, nil
}

func (r *Repository) CreateLesson(ctx context.Context, lesson dal.Lesson) error {
	query, args, err := dal.InsertLessonQuery(lesson).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err = r.client.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return dal.ErrDuplicate
		}
		return fmt.Errorf("insert lesson: %w", err)
	}

	if len(lesson.Vocab) == 0 {
		return nil
	}

	query, args, err = dal.InsertLessonVocabQuery(lesson.LessonID, lesson.Vocab).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err = r.client.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert lesson vocab: %w", err)
	}

	return nil
}

func (r *Repository) SetLessonsAvailability(ctx context.Context, availIDs []int64) error {
	query, args, err := dal.SetAllLessonsAvailabilityQuery(false).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err = r.client.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reset lessons availability: %w", err)
	}

	if len(availIDs) == 0 {
		return nil
	}

	query, args, err = dal.SetLessonsAvailableQuery(availIDs).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err = r.client.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set lessons available: %w", err)
	}

	return nil
}

func (r *Repository) DeleteLesson(ctx context.Context, lessonID int64) error {
	for _, q := range []struct {
		name  string
		query squirrel.Sqlizer
	}{
		{"delete lesson", dal.DeleteLessonQuery(lessonID)},
		{"delete lesson vocab", dal.DeleteLessonVocabQuery(lessonID)},
		{"delete lesson stats", dal.DeleteLessonStatsQuery(lessonID)},
	} {
		query, args, err := q.query.ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		if _, err = r.client.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%s: %w", q.name, err)
		}
	}

	return nil
}
