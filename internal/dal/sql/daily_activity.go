package sql

import (
	"context"
	"fmt"
	"time"

	"github.com/vocalearn/backend/internal/dal"
)

const dateLayout = "2006-01-02"

func (r *Repository) IncrementReviewCount(ctx context.Context, username string, when time.Time) error {
	query, args, err := dal.IncrementReviewCountQuery(username, when.Local().Format(dateLayout)).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err = r.client.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("increment review count: %w", err)
	}

	return nil
}

func (r *Repository) FindDailyActivity(ctx context.Context, username string) ([]dal.DailyActivity, error) {
	query, args, err := dal.FindDailyActivityQuery(username).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.client.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find daily activity: %w", err)
	}
	defer rows.Close()

	var activity []dal.DailyActivity
	for rows.Next() {
		var entry dal.DailyActivity
		var dateStr string
		if err := rows.Scan(&entry.Username, &dateStr, &entry.ReviewCount); err != nil {
			return nil, fmt.Errorf("scan daily activity: %w", err)
		}
		entry.Date, err = time.ParseInLocation(dateLayout, dateStr, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse date: %w", err)
		}
		activity = append(activity, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily activity: %w", err)
	}

	return activity, nil
}
