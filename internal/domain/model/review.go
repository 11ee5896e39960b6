package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrEmptyField = errors.New("required field is empty")

// Review is a marketplace-hosted customer review. It is transient: fetched,
// processed and discarded within one cycle, never persisted.
type Review struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	Pros             string `json:"pros"`
	Cons             string `json:"cons"`
	Comment          string `json:"comment"`
	ProductValuation int    `json:"productValuation"`
	CreatedDate      string `json:"createdDate"`
}

// ReplySource returns the text a reply should be generated from: the first
// non-empty of text, pros, cons and comment; when all are absent but a rating
// exists, a minimal text is synthesized from the rating. An empty return means
// the review carries nothing to answer and must be skipped.
func (r Review) ReplySource() string {
	for _, s := range []string{r.Text, r.Pros, r.Cons, r.Comment} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	if r.ProductValuation > 0 {
		return fmt.Sprintf("Оценка: %d звезд", r.ProductValuation)
	}
	return ""
}

// ProcessingResult is the per-review outcome of a successful generate+post.
type ProcessingResult struct {
	ReviewID  string
	Text      string
	Reply     string
	Valuation int
	Timestamp time.Time
}

// StoreReport aggregates one store's counters for a single cycle.
type StoreReport struct {
	StoreID   string
	StoreName string
	Total     int
	Success   int
	Errors    int
	Skipped   int
}

// CycleReport aggregates one full pass across the fleet.
type CycleReport struct {
	CycleID  string
	Stores   int
	Excluded int
	Success  int
	Failed   int
	Reports  []StoreReport
}
