// Package matches fetches and normalizes the ranked job recommendations. The
// upstream job payload has carried different field names across schema
// versions, so everything is funneled through one normalization step at the
// ingestion boundary; display code only ever sees the canonical shape.
package matches

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	listPath = "/api/matches/"

	fallbackTitle    = "Untitled job"
	fallbackCompany  = "Unknown company"
	fallbackAnalysis = "No analysis available yet."
)

// Match is the canonical, immutable record shown to the user.
type Match struct {
	ID       string
	Title    string
	Company  string
	Location string
	URL      string
	Analysis string
	// Score is NaN when the upstream value was absent or not finite; the
	// percentage badge is simply suppressed then.
	Score     float64
	CreatedAt string
}

// Feed is one wholesale fetch of the user's matches. There is no incremental
// patching; a refresh replaces the whole feed.
type Feed struct {
	Matches []*Match
	Total   int
}

func (f *Feed) Len() int { return len(f.Matches) }

// Empty reports whether the feed is a valid "nothing yet" state. Matching runs
// in the background server-side, so this is displayed, not treated as an error.
func (f *Feed) Empty() bool { return len(f.Matches) == 0 }

type wireMatch struct {
	ID              string         `json:"id"`
	Job             map[string]any `json:"job"`
	SimilarityScore *float64       `json:"similarity_score"`
	Analysis        *string        `json:"analysis"`
	CreatedAt       string         `json:"created_at"`
}

type wireList struct {
	Matches []*wireMatch `json:"matches"`
	Total   int          `json:"total"`
}

// jobFields covers both shapes the upstream schema has used for the job
// summary.
type jobFields struct {
	Title       string `mapstructure:"title"`
	JobTitle    string `mapstructure:"job_title"`
	CompanyName string `mapstructure:"company_name"`
	Company     string `mapstructure:"company"`
	Location    string `mapstructure:"location"`
	URL         string `mapstructure:"url"`
}

type api interface {
	JSON(ctx context.Context, method, path string, body any, query url.Values, out any) error
}

type Loader struct {
	api    api
	logger *zap.Logger
}

func NewLoader(api api, logger *zap.Logger) *Loader {
	return &Loader{api: api, logger: logger}
}

// List fetches one page of matches and normalizes it.
func (l *Loader) List(ctx context.Context, skip, limit int) (*Feed, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	var out wireList
	if err := l.api.JSON(ctx, http.MethodGet, listPath, nil, q, &out); err != nil {
		return nil, err
	}

	feed := &Feed{Total: out.Total}
	for _, wm := range out.Matches {
		feed.Matches = append(feed.Matches, normalize(wm))
	}

	l.logger.Debug("fetched matches", zap.Int("count", feed.Len()), zap.Int("total", feed.Total))
	return feed, nil
}

func normalize(wm *wireMatch) *Match {
	var job jobFields
	if wm.Job != nil {
		// Unknown keys are expected across schema versions; a decode failure
		// just means we fall back to the placeholders.
		_ = mapstructure.Decode(wm.Job, &job)
	}

	m := &Match{
		ID:        wm.ID,
		Title:     firstNonEmpty(job.Title, job.JobTitle, fallbackTitle),
		Company:   firstNonEmpty(job.CompanyName, job.Company, fallbackCompany),
		Location:  job.Location,
		URL:       job.URL,
		Analysis:  fallbackAnalysis,
		Score:     math.NaN(),
		CreatedAt: wm.CreatedAt,
	}

	if wm.Analysis != nil && *wm.Analysis != "" {
		m.Analysis = *wm.Analysis
	}
	if wm.SimilarityScore != nil {
		m.Score = *wm.SimilarityScore
	}

	return m
}

// FormatScore renders a similarity score as a percentage with one decimal,
// e.g. "87.3%". Non-finite scores report ok=false and render nothing rather
// than a corrupted value.
func FormatScore(score float64) (formatted string, ok bool) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return "", false
	}
	return fmt.Sprintf("%.1f%%", score*100), true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
