package dal

import (
	"github.com/Masterminds/squirrel"
)

// FindLessonQuery builds a query to load a single lesson header.
func FindLessonQuery(lessonID int64) squirrel.Sqlizer {
	return squirrel.Select("lesson_id", "course", "name", "lang", "avail", "vocab_size", "created_at", "updated_at").
		From("lessons").
		Where(squirrel.Eq{"lesson_id": lessonID}).
		PlaceholderFormat(squirrel.Dollar)
}

// FindLessonVocabQuery builds a query to load the ordered vocab of a lesson.
func FindLessonVocabQuery(lessonID int64) squirrel.Sqlizer {
	return squirrel.Select("vocab_id", "word", "meaning").
		From("lesson_vocab").
		Where(squirrel.Eq{"lesson_id": lessonID}).
		OrderBy("vocab_id").
		PlaceholderFormat(squirrel.Dollar)
}

// FindLessonsQuery builds a query to list lesson headers with filters.
func FindLessonsQuery(filter LessonsFilter) squirrel.Sqlizer {
	q := squirrel.Select("lesson_id", "course", "name", "lang", "avail", "vocab_size", "created_at", "updated_at").
		From("lessons").
		OrderBy("lesson_id").
		PlaceholderFormat(squirrel.Dollar)

	if filter.AvailOnly {
		q = q.Where(squirrel.Eq{"avail": true})
	}
	if filter.Lang != "" {
		q = q.Where(squirrel.Eq{"lang": filter.Lang})
	}

	return q
}

// InsertLessonQuery builds a query to create a lesson header.
func InsertLessonQuery(lesson Lesson) squirrel.Sqlizer {
	return squirrel.Insert("lessons").
		Columns("lesson_id", "course", "name", "lang", "avail", "vocab_size").
		Values(lesson.LessonID, lesson.Course, lesson.Name, lesson.Lang, lesson.Avail, lesson.VocabSize).
		PlaceholderFormat(squirrel.Dollar)
}

// InsertLessonVocabQuery builds a multi-row insert of a lesson's vocab.
func InsertLessonVocabQuery(lessonID int64, vocab []VocabEntry) squirrel.Sqlizer {
	q := squirrel.Insert("lesson_vocab").
		Columns("lesson_id", "vocab_id", "word", "meaning").
		PlaceholderFormat(squirrel.Dollar)
	for _, v := range vocab {
		q = q.Values(lessonID, v.ID, v.Word, v.Meaning)
	}
	return q
}

// SetAllLessonsAvailabilityQuery builds a query to set avail on every lesson.
func SetAllLessonsAvailabilityQuery(avail bool) squirrel.Sqlizer {
	return squirrel.Update("lessons").
		Set("avail", avail).
		PlaceholderFormat(squirrel.Dollar)
}

// SetLessonsAvailableQuery builds a query to mark the given lessons available.
func SetLessonsAvailableQuery(lessonIDs []int64) squirrel.Sqlizer {
	return squirrel.Update("lessons").
		Set("avail", true).
		Where(squirrel.Eq{"lesson_id": lessonIDs}).
		PlaceholderFormat(squirrel.Dollar)
}

// DeleteLessonQuery builds a query to delete a lesson header.
func DeleteLessonQuery(lessonID int64) squirrel.Sqlizer {
	return squirrel.Delete("lessons").
		Where(squirrel.Eq{"lesson_id": lessonID}).
		PlaceholderFormat(squirrel.Dollar)
}

// DeleteLessonVocabQuery builds a query to delete a lesson's vocab rows.
func DeleteLessonVocabQuery(lessonID int64) squirrel.Sqlizer {
	return squirrel.Delete("lesson_vocab").
		Where(squirrel.Eq{"lesson_id": lessonID}).
		PlaceholderFormat(squirrel.Dollar)
}

// DeleteLessonStatsQuery builds a query to delete all users' stats of a lesson.
func DeleteLessonStatsQuery(lessonID int64) squirrel.Sqlizer {
	return squirrel.Delete("vocab_stats").
		Where(squirrel.Eq{"lesson_id": lessonID}).
		PlaceholderFormat(squirrel.Dollar)
}

// GetLessonStatQuery builds a query to load the per-id counters of one
// (username, lesson) pair ordered by vocab id.
func GetLessonStatQuery(username string, lessonID int64) squirrel.Sqlizer {
	return squirrel.Select("vocab_id", "review_correct", "review_total").
		From("vocab_stats").
		Where(squirrel.Eq{"username": username, "lesson_id": lessonID}).
		OrderBy("vocab_id").
		PlaceholderFormat(squirrel.Dollar)
}

// FindLessonStatsQuery builds a query to load all counters of a user across
// lessons, grouped by lesson via ordering.
func FindLessonStatsQuery(username string) squirrel.Sqlizer {
	return squirrel.Select("lesson_id", "vocab_id", "review_correct", "review_total").
		From("vocab_stats").
		Where(squirrel.Eq{"username": username}).
		OrderBy("lesson_id", "vocab_id").
		PlaceholderFormat(squirrel.Dollar)
}

// ApplyStatDeltaQuery builds the atomic counter merge: one multi-row upsert
// that creates missing (username, lesson, vocab_id) rows and adds the delta to
// existing ones. This is the single write path for review counters, so two
// concurrent submissions can never lose an update.
func ApplyStatDeltaQuery(username string, lessonID int64, delta []VocabStat) squirrel.Sqlizer {
	q := squirrel.Insert("vocab_stats").
		Columns("username", "lesson_id", "vocab_id", "review_correct", "review_total").
		Suffix(`ON CONFLICT (username, lesson_id, vocab_id) DO UPDATE
			SET review_correct = review_correct + excluded.review_correct,
				review_total = review_total + excluded.review_total`).
		PlaceholderFormat(squirrel.Dollar)
	for _, d := range delta {
		q = q.Values(username, lessonID, d.ID, d.ReviewCorrect, d.ReviewTotal)
	}
	return q
}

// IncrementReviewCountQuery builds the daily activity upsert for the given
// day bucket (date is formatted as 2006-01-02 in server-local time).
func IncrementReviewCountQuery(username, date string) squirrel.Sqlizer {
	return squirrel.Insert("daily_activity").
		Columns("username", "date", "review_count").
		Values(username, date, 1).
		Suffix(`ON CONFLICT (username, date) DO UPDATE
			SET review_count = review_count + 1`).
		PlaceholderFormat(squirrel.Dollar)
}

// FindDailyActivityQuery builds a query to load a user's activity history.
func FindDailyActivityQuery(username string) squirrel.Sqlizer {
	return squirrel.Select("username", "date", "review_count").
		From("daily_activity").
		Where(squirrel.Eq{"username": username}).
		OrderBy("date").
		PlaceholderFormat(squirrel.Dollar)
}

// InsertAccountQuery builds a query to create an account.
func InsertAccountQuery(account Account) squirrel.Sqlizer {
	return squirrel.Insert("accounts").
		Columns("username", "password_hash", "permission").
		Values(account.Username, account.PasswordHash, account.Permission).
		PlaceholderFormat(squirrel.Dollar)
}

// FindAccountQuery builds a query to load an account by username.
func FindAccountQuery(username string) squirrel.Sqlizer {
	return squirrel.Select("username", "password_hash", "permission", "created_at").
		From("accounts").
		Where(squirrel.Eq{"username": username}).
		PlaceholderFormat(squirrel.Dollar)
}

// GetProfileQuery builds a query to load a user's profile.
func GetProfileQuery(username string) squirrel.Sqlizer {
	return squirrel.Select("username", "COALESCE(first_name, '')", "COALESCE(last_name, '')", "score").
		From("profiles").
		Where(squirrel.Eq{"username": username}).
		PlaceholderFormat(squirrel.Dollar)
}

// SaveProfileQuery builds an upsert of a user's profile.
func SaveProfileQuery(profile Profile) squirrel.Sqlizer {
	return squirrel.Insert("profiles").
		Columns("username", "first_name", "last_name", "score").
		Values(profile.Username, profile.FirstName, profile.LastName, profile.Score).
		Suffix(`ON CONFLICT (username) DO UPDATE
			SET first_name = excluded.first_name,
				last_name = excluded.last_name,
				score = excluded.score`).
		PlaceholderFormat(squirrel.Dollar)
}
