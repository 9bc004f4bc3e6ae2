package mtlgen

import (
	"fmt"
	"strings"
)

// Quiz item types.
const (
	QuizOpen        = "open"
	QuizShortAnswer = "short-answer"
)

// Quiz limits: confirm questions come from the first quizStepLimit steps,
// outcome questions from the first quizConfirmationLimit confirmations.
const (
	quizStepLimit         = 5
	quizConfirmationLimit = 3
)

// QuizItem is one question derived from a task.
type QuizItem struct {
	ID       string `json:"id" yaml:"id"`
	Type     string `json:"type" yaml:"type"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer,omitempty" yaml:"answer,omitempty"`
}

// BuildQuiz derives quiz items from task, in this order:
//   - an open question per teachback prompt (teachback-1, ...)
//   - a short answer per confirm text among the first five steps (confirm-<step id>)
//   - a short answer per confirmation among the first three (final-1, ...),
//     answered by its accepted outcomes joined with "; "
func BuildQuiz(task *Task) []QuizItem {
	items := make([]QuizItem, 0, len(task.Teachback.Prompts)+quizStepLimit+quizConfirmationLimit)

	for i, prompt := range task.Teachback.Prompts {
		items = append(items, QuizItem{
			ID:       fmt.Sprintf("teachback-%d", i+1),
			Type:     QuizOpen,
			Question: prompt,
		})
	}

	for _, step := range task.Steps[:min(len(task.Steps), quizStepLimit)] {
		if step.Confirm == "" {
			continue
		}
		items = append(items, QuizItem{
			ID:       "confirm-" + step.ID,
			Type:     QuizShortAnswer,
			Question: fmt.Sprintf("What confirms completion of step '%s'?", step.ID),
			Answer:   step.Confirm,
		})
	}

	for i, c := range task.Confirmations[:min(len(task.Confirmations), quizConfirmationLimit)] {
		items = append(items, QuizItem{
			ID:       fmt.Sprintf("final-%d", i+1),
			Type:     QuizShortAnswer,
			Question: fmt.Sprintf("List acceptable outcomes for %s.", c.Item),
			Answer:   strings.Join(c.Accept, "; "),
		})
	}

	return items
}
