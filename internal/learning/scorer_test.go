package learning

import (
	"errors"
	"testing"

	"github.com/vocalearn/backend/internal/dal"
)

func TestScore_FirstSubmission(t *testing.T) {
	words, delta, err := score(Submission{
		LessonID:   1,
		QuizzedIDs: []int{1, 2, 3},
		CorrectIDs: []int{1, 2},
		VocabSize:  5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantWords := []WordResult{{1, true}, {2, true}, {3, false}}
	if len(words) != len(wantWords) {
		t.Fatalf("expected %d word results, got %d", len(wantWords), len(words))
	}
	for i, w := range wantWords {
		if words[i] != w {
			t.Errorf("word %d: expected %+v, got %+v", i, w, words[i])
		}
	}

	wantDelta := []dal.VocabStat{
		{ID: 1, ReviewCorrect: 1, ReviewTotal: 1},
		{ID: 2, ReviewCorrect: 1, ReviewTotal: 1},
		{ID: 3, ReviewCorrect: 0, ReviewTotal: 1},
		{ID: 4, ReviewCorrect: 0, ReviewTotal: 0},
		{ID: 5, ReviewCorrect: 0, ReviewTotal: 0},
	}
	if len(delta) != len(wantDelta) {
		t.Fatalf("expected delta of %d entries, got %d", len(wantDelta), len(delta))
	}
	for i, d := range wantDelta {
		if delta[i] != d {
			t.Errorf("delta %d: expected %+v, got %+v", i, d, delta[i])
		}
	}
}

func TestScore_CorrectButNotQuizzedIsIgnored(t *testing.T) {
	_, delta, err := score(Submission{
		QuizzedIDs: []int{3},
		CorrectIDs: []int{1, 3},
		VocabSize:  3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if delta[0].ReviewTotal != 0 || delta[0].ReviewCorrect != 0 {
		t.Errorf("id 1 was not quizzed, expected {0,0}, got %+v", delta[0])
	}
	if delta[2].ReviewTotal != 1 || delta[2].ReviewCorrect != 1 {
		t.Errorf("id 3 was quizzed and correct, expected {1,1}, got %+v", delta[2])
	}
}

func TestScore_DuplicateQuizzedIDsCountOnce(t *testing.T) {
	words, delta, err := score(Submission{
		QuizzedIDs: []int{2, 2, 2},
		CorrectIDs: []int{2},
		VocabSize:  3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(words) != 1 {
		t.Fatalf("expected 1 word result, got %d", len(words))
	}
	if delta[1].ReviewTotal != 1 || delta[1].ReviewCorrect != 1 {
		t.Errorf("expected id 2 counted once, got %+v", delta[1])
	}
}

func TestScore_EmptyQuizYieldsNoDelta(t *testing.T) {
	words, delta, err := score(Submission{
		QuizzedIDs: nil,
		CorrectIDs: []int{1},
		VocabSize:  5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("expected no word results, got %d", len(words))
	}
	if delta != nil {
		t.Errorf("expected nil delta, got %v", delta)
	}
}

func TestScore_Validation(t *testing.T) {
	tests := []struct {
		name string
		sub  Submission
	}{
		{"zero vocab size", Submission{QuizzedIDs: []int{1}, VocabSize: 0}},
		{"negative vocab size", Submission{QuizzedIDs: []int{1}, VocabSize: -3}},
		{"quizzed id too large", Submission{QuizzedIDs: []int{6}, VocabSize: 5}},
		{"quizzed id zero", Submission{QuizzedIDs: []int{0}, VocabSize: 5}},
		{"correct id out of range", Submission{QuizzedIDs: []int{1}, CorrectIDs: []int{9}, VocabSize: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := score(tt.sub)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
		})
	}
}
