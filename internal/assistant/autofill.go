package assistant

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
)

const (
	DefaultBackground = "I am filling a survey form. Please answer the following question. Use a simple answer in one line of raw text."
	DefaultFallback   = "No comment"
)

// Responder produces a plausible answer for any question. Choice questions
// draw from their options; text questions are put to the Asker.
type Responder struct {
	asker      Asker
	logger     utils.Logger
	Background string
	Fallback   string

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewResponder builds a responder. asker may be nil, in which case every text
// question gets the fallback answer.
func NewResponder(asker Asker, logger utils.Logger, seed uint64) *Responder {
	return &Responder{
		asker:      asker,
		logger:     logger,
		Background: DefaultBackground,
		Fallback:   DefaultFallback,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:        time.Now,
	}
}

// CanSuggestText reports whether text questions get model answers rather
// than the fallback.
func (r *Responder) CanSuggestText() bool {
	return r.asker != nil
}

// AutoAnswer returns a value that satisfies q's type. It never fails; a
// failing Asker degrades to the fallback text.
func (r *Responder) AutoAnswer(ctx context.Context, q models.Question) models.ResponseValue {
	switch q.Type {
	case models.MultipleChoice:
		if len(q.Options) > 0 {
			return models.Scalar(q.Options[r.intN(len(q.Options))])
		}
	case models.Checkboxes:
		if len(q.Options) > 0 {
			return models.MultiValue(r.subset(q.Options)...)
		}
		return models.MultiValue()
	case models.Date:
		day := r.now().AddDate(0, 0, -r.intN(365))
		return models.Scalar(day.Format("2006-01-02"))
	case models.Time:
		return models.Scalar(fmt.Sprintf("%02d:%02d", r.intN(24), r.intN(4)*15))
	}
	return models.Scalar(r.suggestText(ctx, q))
}

func (r *Responder) suggestText(ctx context.Context, q models.Question) string {
	if r.asker == nil {
		return r.Fallback
	}
	text, err := r.asker.Ask(ctx, r.Background, q.Text)
	if err != nil {
		r.logger.WarnContext(ctx, "Answer suggestion failed, using fallback",
			"question", q.Text,
			"error", err,
		)
		return r.Fallback
	}
	return text
}

// subset picks a non-empty subset of options, keeping their order.
func (r *Responder) subset(options []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, opt := range options {
		if r.rng.IntN(2) == 1 {
			out = append(out, opt)
		}
	}
	if len(out) == 0 {
		out = append(out, options[r.rng.IntN(len(options))])
	}
	return out
}

func (r *Responder) intN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}
