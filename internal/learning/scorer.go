package learning

import (
	"fmt"

	"github.com/vocalearn/backend/internal/dal"
)

type (
	// Submission is one quiz session's outcome as reported by the client.
	// QuizzedIDs are the vocab ids shown during the session; CorrectIDs the
	// subset (by contract) answered correctly.
	Submission struct {
		LessonID   int64
		CorrectIDs []int
		QuizzedIDs []int
		VocabSize  int
	}

	// WordResult is the correctness verdict of one quizzed word.
	WordResult struct {
		ID        int
		IsCorrect bool
	}

	ValidationError struct {
		Reason string
	}
)

func (e *ValidationError) Error() string {
	return "invalid submission: " + e.Reason
}

// score turns a submission into per-word verdicts and a counter delta.
//
// The delta covers the full 1..VocabSize range: quizzed ids get review_total+1
// (and review_correct+1 when answered correctly), the rest stay {0,0} so the
// first submission seeds a complete record. Correct ids that were never
// quizzed are ignored: correctness can only count toward a quizzed id. An
// empty quizzed set yields a nil delta, which callers treat as "persist
// nothing".
func score(sub Submission) ([]WordResult, []dal.VocabStat, error) {
	if sub.VocabSize <= 0 {
		return nil, nil, &ValidationError{Reason: fmt.Sprintf("vocab size must be positive, got %d", sub.VocabSize)}
	}
	for _, id := range sub.QuizzedIDs {
		if id < 1 || id > sub.VocabSize {
			return nil, nil, &ValidationError{Reason: fmt.Sprintf("quizzed id %d is out of range [1, %d]", id, sub.VocabSize)}
		}
	}
	for _, id := range sub.CorrectIDs {
		if id < 1 || id > sub.VocabSize {
			return nil, nil, &ValidationError{Reason: fmt.Sprintf("correct id %d is out of range [1, %d]", id, sub.VocabSize)}
		}
	}

	correct := make(map[int]bool, len(sub.CorrectIDs))
	for _, id := range sub.CorrectIDs {
		correct[id] = true
	}

	// ids are sets by contract; drop duplicates instead of double counting
	seen := make(map[int]bool, len(sub.QuizzedIDs))
	quizzed := make([]int, 0, len(sub.QuizzedIDs))
	for _, id := range sub.QuizzedIDs {
		if !seen[id] {
			seen[id] = true
			quizzed = append(quizzed, id)
		}
	}

	words := make([]WordResult, 0, len(quizzed))
	for _, id := range quizzed {
		words = append(words, WordResult{ID: id, IsCorrect: correct[id]})
	}

	if len(quizzed) == 0 {
		return words, nil, nil
	}

	delta := make([]dal.VocabStat, sub.VocabSize)
	for i := range delta {
		delta[i].ID = i + 1
	}
	for _, id := range quizzed {
		delta[id-1].ReviewTotal++
		if correct[id] {
			delta[id-1].ReviewCorrect++
		}
	}

	return words, delta, nil
}
