package sql

import (
	"context"
	"fmt"

	"github.com/vocalearn/backend/internal/dal"
)

func (r *Repository) GetLessonStat(ctx context.Context, username string, lessonID int64) (*dal.LessonStat, error) {
	query, args, err := dal.GetLessonStatQuery(username, lessonID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.client.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get lesson stat: %w", err)
	}
	defer rows.Close()

	stat := dal.LessonStat{Username: username, LessonID: lessonID}
	for rows.Next() {
		var vs dal.VocabStat
		if err := rows.Scan(&vs.ID, &vs.ReviewCorrect, &vs.ReviewTotal); err != nil {
			return nil, fmt.Errorf("scan vocab stat: %w", err)
		}
		stat.VocabStat = append(stat.VocabStat, vs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vocab stats: %w", err)
	}

	if len(stat.VocabStat) == 0 {
		return nil, dal.ErrNotFound
	}

	return &stat, nil
}

func (r *Repository) FindLessonStats(ctx context.Context, username string) ([]dal.LessonStat, error) {
	query, args, err := dal.FindLessonStatsQuery(username).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.client.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find lesson stats: %w", err)
	}
	defer rows.Close()

	var stats []dal.LessonStat
	for rows.Next() {
		var lessonID int64
		var vs dal.VocabStat
		if err := rows.Scan(&lessonID, &vs.ID, &vs.ReviewCorrect, &vs.ReviewTotal); err != nil {
			return nil, fmt.Errorf("scan vocab stat: %w", err)
		}

		// rows arrive ordered by (lesson_id, vocab_id)
		if len(stats) == 0 || stats[len(stats)-1].LessonID != lessonID {
			stats = append(stats, dal.LessonStat{Username: username, LessonID: lessonID})
		}
		last := &stats[len(stats)-1]
		last.VocabStat = append(last.VocabStat, vs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lesson stats: %w", err)
	}

	return stats, nil
}

// statDeltaBatchSize limits rows per upsert statement; each row binds 5
// variables and SQLite caps bound variables at 32766, so large lessons are
// written in batches. Batches are additive upserts, so splitting does not
// change the merged result.
const statDeltaBatchSize = 500

func (r *Repository) ApplyStatDelta(ctx context.Context, username string, lessonID int64, delta []dal.VocabStat) error {
	for start := 0; start < len(delta); start += statDeltaBatchSize {
		batch := delta[start:min(start+statDeltaBatchSize, len(delta))]

		query, args, err := dal.ApplyStatDeltaQuery(username, lessonID, batch).ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}

		if _, err = r.client.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("apply stat delta: %w", err)
		}
	}

	return nil
}
