package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vocalearn/backend/internal/dal"
	sqlrepo "github.com/vocalearn/backend/internal/dal/sql"
	"github.com/vocalearn/backend/internal/data"
)

var (
	source   string
	dbURL    string
	lessonID int64
	course   string
	name     string
	lang     string
	avail    bool
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	if err := validate(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", dbURL)
	if err != nil {
		fmt.Printf("failed to open database: %v\n", err)
		os.Exit(2)
	}
	defer db.Close()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	repo, err := sqlrepo.NewRepository(ctx, db, log)
	if err != nil {
		fmt.Printf("failed to init repository: %v\n", err)
		os.Exit(2)
	}

	words, err := parseSource(source)
	if err != nil {
		fmt.Printf("failed to parse source: %v\n", err)
		os.Exit(3)
	}
	if len(words) == 0 {
		fmt.Println("source contains no words")
		os.Exit(3)
	}

	lesson := dal.Lesson{
		LessonID:  lessonID,
		Course:    course,
		Name:      name,
		Lang:      lang,
		Avail:     avail,
		VocabSize: len(words),
	}
	for i, w := range words {
		lesson.Vocab = append(lesson.Vocab, dal.VocabEntry{ID: i + 1, Word: w.Word, Meaning: w.Meaning})
	}

	err = repo.Transact(ctx, func(r dal.Repository) error {
		if _, err := r.FindLesson(ctx, lessonID); err == nil {
			return fmt.Errorf("lesson %d already exists", lessonID)
		} else if !errors.Is(err, dal.ErrNotFound) {
			return err
		}
		return r.CreateLesson(ctx, lesson)
	})
	if err != nil {
		fmt.Printf("failed to import lesson: %v\n", err)
		os.Exit(4)
	}

	fmt.Printf("imported lesson %d with %d words\n", lessonID, len(words))
}

func parseSource(path string) ([]data.Word, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return data.ParseCSV(f)
	case ".xlsx":
		return data.ParseXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported source format %q", ext)
	}
}

func validate() error {
	if source == "" {
		return errors.New("source file is required")
	}
	if dbURL == "" {
		return errors.New("database URL is required")
	}
	if lessonID <= 0 {
		return errors.New("lesson ID is required")
	}
	if course == "" || name == "" {
		return errors.New("course and lesson name are required")
	}
	if lang == "" {
		return errors.New("language is required")
	}

	return nil
}

func init() {
	flag.StringVar(&source, "source", "", "source file (.csv or .xlsx)")
	flag.StringVar(&dbURL, "db-url", "", "database URL")
	flag.Int64Var(&lessonID, "lesson-id", 0, "lesson ID")
	flag.StringVar(&course, "course", "", "course name")
	flag.StringVar(&name, "name", "", "lesson name")
	flag.StringVar(&lang, "lang", "", "lesson language")
	flag.BoolVar(&avail, "avail", true, "make lesson available")
	flag.Parse()
}
