// Package wb talks to the Wildberries feedbacks API.
package wb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/config"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/model"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/ports/adapter"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/infra/metrics"
	"github.com/hi9ne/reviews-wb-bot-tg/internal/retry"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.MarketplaceAdapter = (*Client)(nil)

var errMissingData = errors.New("wb response missing data field")

// Client opens per-store sessions against the feedbacks API. One Client is
// shared by the whole fleet; its semaphore bounds concurrent outbound calls
// across every open session so store fan-out cannot stampede the API.
type Client struct {
	base        string
	pageSize    int
	timeout     time.Duration
	rateWait    time.Duration // floor for 429 waits
	fetchPolicy retry.Policy
	postPolicy  retry.Policy
	sem         chan struct{}
	log         *zerolog.Logger
}

func NewClient(cfg *config.WBConfig, logger *zerolog.Logger) *Client {
	wbLog := logger.With().Str("component", "WBClient").Logger()
	return &Client{
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		pageSize: cfg.ReviewsPerPage,
		timeout:  cfg.Timeout,
		rateWait: cfg.RateLimitDelay,
		fetchPolicy: retry.Policy{
			MaxAttempts: cfg.MaxRetries,
			Delay:       cfg.RetryDelay,
		},
		postPolicy: retry.Policy{
			MaxAttempts: 3,
			Delay:       time.Second,
		},
		sem: make(chan struct{}, cfg.ConcurrentMax),
		log: &wbLog,
	}
}

// OpenSession returns a session scoped to one store's credential. The session
// owns its HTTP client; Close releases its pooled connections.
func (c *Client) OpenSession(apiKey string) adapter.ReviewSession {
	return &session{
		c:      c,
		apiKey: apiKey,
		http: &http.Client{
			Timeout:   c.timeout,
			Transport: &http.Transport{},
		},
	}
}

func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() { <-c.sem }

type session struct {
	c      *Client
	apiKey string
	http   *http.Client
}

func (s *session) Close() { s.http.CloseIdleConnections() }

// FetchPartition pages through one partition in dateDesc order until a page
// comes back shorter than the page size. A page whose retry budget is
// exhausted ends pagination with whatever was accumulated: a partial fetch is
// worth processing, losing the batch over one bad page is not.
func (s *session) FetchPartition(ctx context.Context, answered bool) ([]model.Review, error) {
	var all []model.Review
	skip := 0
	take := s.c.pageSize

	for {
		var page []model.Review
		err := s.c.fetchPolicy.Do(ctx, func(ctx context.Context) error {
			p, err := s.fetchPage(ctx, skip, take, answered)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return all, ctxErr
			}
			s.c.log.Warn().Err(err).Int("skip", skip).Bool("answered", answered).
				Int("accumulated", len(all)).Msg("page fetch exhausted retries, returning partial result")
			return all, nil
		}

		all = append(all, page...)
		skip += take
		if len(page) < take {
			return all, nil
		}
	}
}

func (s *session) fetchPage(ctx context.Context, skip, take int, answered bool) ([]model.Review, error) {
	if err := s.c.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.c.release()

	url := fmt.Sprintf("%s/feedbacks?skip=%d&take=%d&order=dateDesc&isAnswered=%t", s.c.base, skip, take, answered)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		metrics.IncWBRequest("feedbacks", 0)
		return nil, err
	}
	defer resp.Body.Close()
	metrics.IncWBRequest("feedbacks", resp.StatusCode)

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.IncWBRateLimited()
		wait := retryAfter(resp, s.c.rateWait)
		s.c.log.Warn().Dur("wait", wait).Msg("rate limited by wb api")
		return nil, retry.After(wait)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("wb http %d", resp.StatusCode)
	}

	var payload struct {
		Data *struct {
			Feedbacks []model.Review `json:"feedbacks"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode feedbacks page: %w", err)
	}
	if payload.Data == nil {
		return nil, errMissingData
	}
	return payload.Data.Feedbacks, nil
}

// PostAnswer submits a reply for one review. Up to 3 attempts with a short
// fixed delay; the caller decides what an exhausted budget means.
func (s *session) PostAnswer(ctx context.Context, feedbackID, text string) error {
	body, err := json.Marshal(struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}{ID: feedbackID, Text: text})
	if err != nil {
		return err
	}

	attempt := 0
	return s.c.postPolicy.Do(ctx, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			metrics.IncAnswerRetry()
		}
		return s.postOnce(ctx, body)
	})
}

func (s *session) postOnce(ctx context.Context, body []byte) error {
	if err := s.c.acquire(ctx); err != nil {
		return err
	}
	defer s.c.release()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.c.base+"/feedbacks/answer", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		metrics.IncWBRequest("feedbacks/answer", 0)
		return err
	}
	defer resp.Body.Close()
	metrics.IncWBRequest("feedbacks/answer", resp.StatusCode)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("wb answer http %d", resp.StatusCode)
	}
	return nil
}

// retryAfter reads the server-supplied wait in seconds, defaulting to 5s when
// the header is absent or unreadable, and never below the configured floor.
func retryAfter(resp *http.Response, floor time.Duration) time.Duration {
	wait := 5 * time.Second
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			wait = time.Duration(secs) * time.Second
		}
	}
	if wait < floor {
		wait = floor
	}
	return wait
}
