package dal

import "time"

type (
	// Lesson is a named, ordered vocabulary set belonging to a course.
	Lesson struct {
		LessonID  int64
		Course    string
		Name      string
		Lang      string
		Avail     bool
		VocabSize int
		Vocab     []VocabEntry
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// VocabEntry is a single word of a lesson. ID is the 1-based position of
	// the word within the lesson and is stable for the lesson's lifetime.
	VocabEntry struct {
		ID      int
		Word    string
		Meaning string
	}

	// VocabStat holds the cumulative review counters of one vocab id for one
	// (username, lesson) pair. Counters only ever grow.
	VocabStat struct {
		ID            int
		ReviewCorrect int
		ReviewTotal   int
	}

	// LessonStat is the full counter set of one (username, lesson) pair,
	// ordered by vocab id.
	LessonStat struct {
		Username  string
		LessonID  int64
		VocabStat []VocabStat
	}

	// DailyActivity counts review submissions of one user on one calendar day.
	DailyActivity struct {
		Username    string
		Date        time.Time
		ReviewCount int
	}

	Account struct {
		Username     string
		PasswordHash string
		Permission   string
		CreatedAt    time.Time
	}

	Profile struct {
		Username  string
		FirstName string
		LastName  string
		Score     int
	}
)
