package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"botanize/internal/logging"
	"botanize/internal/observe"
	"botanize/internal/quota"
	"botanize/internal/taxonomy"
	"botanize/internal/traits"
)

// AnswerRecorder charges one answer against the daily allowance.
type AnswerRecorder interface {
	RecordAnswer(ctx context.Context) quota.Outcome
}

// Matcher ranks species against a selection.
type Matcher interface {
	Match(selected traits.Selection, questions []traits.Question) []observe.Result
}

// ObserveSession holds the state of one trait questionnaire.
type ObserveSession struct {
	matcher   Matcher
	recorder  AnswerRecorder
	logger    *slog.Logger
	organ     traits.Organ
	questions []traits.Question
	index     int
	selection traits.Selection
	answered  int
}

// NewObserveSession starts a questionnaire for organ. A nil recorder never
// limits answers.
func NewObserveSession(matcher Matcher, recorder AnswerRecorder, organ traits.Organ, logger *slog.Logger) (*ObserveSession, error) {
	if matcher == nil {
		return nil, fmt.Errorf("observe session: matcher is required")
	}
	s := &ObserveSession{
		matcher:  matcher,
		recorder: recorder,
		logger:   logging.NewComponentLogger(logger, "observe_session"),
	}
	if err := s.SetOrgan(organ); err != nil {
		return nil, err
	}
	return s, nil
}

// Organ returns the organ being described.
func (s *ObserveSession) Organ() traits.Organ {
	return s.organ
}

// Questions returns the questions for the current organ.
func (s *ObserveSession) Questions() []traits.Question {
	return append([]traits.Question(nil), s.questions...)
}

// Index returns the position of the current question.
func (s *ObserveSession) Index() int {
	return s.index
}

// Selection returns a copy of the answers given so far.
func (s *ObserveSession) Selection() traits.Selection {
	return s.selection.Clone()
}

// Answered counts answers accepted during this session.
func (s *ObserveSession) Answered() int {
	return s.answered
}

// SetOrgan switches organ, clearing answers and returning to the first question.
func (s *ObserveSession) SetOrgan(organ traits.Organ) error {
	if organ == traits.OrganAuto {
		return fmt.Errorf("%w: observe needs a specific organ", traits.ErrUnknownOrgan)
	}
	questions := traits.QuestionsFor(organ)
	if len(questions) == 0 {
		return fmt.Errorf("%w: %q", traits.ErrUnknownOrgan, organ)
	}
	s.organ = organ
	s.questions = questions
	s.index = 0
	s.selection = traits.Selection{}
	return nil
}

// Current returns the question awaiting an answer. ok is false once every
// question has been answered or skipped.
func (s *ObserveSession) Current() (traits.Question, bool) {
	if s.index >= len(s.questions) {
		return traits.Question{}, false
	}
	return s.questions[s.index], true
}

// Done reports whether the questionnaire is exhausted.
func (s *ObserveSession) Done() bool {
	return s.index >= len(s.questions)
}

// Answer records value for category after consulting the quota. A denied
// answer leaves the session unchanged and returns ErrQuotaExceeded.
func (s *ObserveSession) Answer(ctx context.Context, category taxonomy.Category, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("answer for %s is empty", category.Label())
	}
	if !s.asks(category) {
		return fmt.Errorf("%s is not a %s question", category.Label(), s.organ)
	}
	if s.recorder != nil && s.recorder.RecordAnswer(ctx) == quota.Denied {
		s.logger.Info("answer rejected",
			logging.Args(logging.DecisionAttrs("observe_answer", "denied", "daily quota exhausted")...)...)
		return ErrQuotaExceeded
	}
	s.selection.Set(category, value)
	s.answered++
	if s.index < len(s.questions) {
		s.index++
	}
	return nil
}

// Skip advances past the current question without answering it.
func (s *ObserveSession) Skip() {
	if s.index < len(s.questions) {
		s.index++
	}
}

// Back returns to the previous question and forgets its answer.
func (s *ObserveSession) Back() {
	if s.index == 0 {
		return
	}
	s.index--
	delete(s.selection, s.questions[s.index].Category)
}

// Reset clears every answer and returns to the first question.
func (s *ObserveSession) Reset() {
	s.index = 0
	s.selection = traits.Selection{}
	s.answered = 0
}

// Results ranks species against the answers given so far.
func (s *ObserveSession) Results() []observe.Result {
	return s.matcher.Match(s.selection, s.questions)
}

func (s *ObserveSession) asks(category taxonomy.Category) bool {
	for _, q := range s.questions {
		if q.Category == category {
			return true
		}
	}
	return false
}
