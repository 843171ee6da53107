// Package analytics computes the aggregate reputation report for an
// influencer from stored comments. Karma comes from an LLM summarization
// when available and from a deterministic formula when it is not; either
// way the report is best-effort and never fails because the LLM did.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/DanYC1503/spyglass/internal/metrics"
	"github.com/DanYC1503/spyglass/pkg/llm"
	"github.com/DanYC1503/spyglass/pkg/logging"
	"github.com/DanYC1503/spyglass/pkg/models"
)

// ErrNotFound is returned when the influencer is unknown.
var ErrNotFound = errors.New("influencer not found")

// ErrNoData is returned when the influencer exists but has no comments.
var ErrNoData = errors.New("no comments collected for influencer")

// summarySampleSize bounds how many comments are sent to the summarizer.
const summarySampleSize = 8

var (
	karmaPattern          = regexp.MustCompile(`(?i)karma:\s*(-?\d+)`)
	recommendationPattern = regexp.MustCompile(`(?i)recomendaci[oó]n:\s*(.+)`)
)

// Store is the read surface the analyzer needs.
type Store interface {
	InfluencerExists(ctx context.Context, name string) (bool, error)
	CommentsByInfluencer(ctx context.Context, name string) ([]models.Comment, error)
}

// WordCloudRenderer renders an image for a text corpus and returns its
// URL. Optional collaborator; failures never block a report.
type WordCloudRenderer interface {
	Render(ctx context.Context, corpus string) (string, error)
}

// Analyzer produces reputation reports and ordered comment listings.
type Analyzer struct {
	store      Store
	summarizer llm.Provider
	wordcloud  WordCloudRenderer
	logger     logging.Logger
	metrics    *metrics.Metrics
}

func New(store Store, summarizer llm.Provider, wordcloud WordCloudRenderer, logger logging.Logger, m *metrics.Metrics) *Analyzer {
	return &Analyzer{
		store:      store,
		summarizer: summarizer,
		wordcloud:  wordcloud,
		logger:     logger,
		metrics:    m,
	}
}

// Analyze builds the reputation report for subject. Returns ErrNotFound
// for an unknown influencer and ErrNoData when nothing has been
// collected yet.
func (a *Analyzer) Analyze(ctx context.Context, subject string) (models.Report, error) {
	exists, err := a.store.InfluencerExists(ctx, subject)
	if err != nil {
		return models.Report{}, err
	}
	if !exists {
		return models.Report{}, ErrNotFound
	}

	comments, err := a.store.CommentsByInfluencer(ctx, subject)
	if err != nil {
		return models.Report{}, err
	}
	if len(comments) == 0 {
		return models.Report{}, ErrNoData
	}

	report := models.Report{
		Influencer: subject,
		Total:      len(comments),
	}
	var scoreSum float64
	var scored int
	for _, c := range comments {
		switch c.Sentiment {
		case models.SentimentPositive:
			report.Positive++
		case models.SentimentNegative:
			report.Negative++
		default:
			report.Neutral++
		}
		if !math.IsNaN(c.Score) && !math.IsInf(c.Score, 0) {
			scoreSum += c.Score
			scored++
		}
	}
	if scored > 0 {
		report.AverageScore = scoreSum / float64(scored)
	}

	karma, recommendation, summErr := a.summarize(ctx, report, comments)
	if summErr != nil {
		if a.logger != nil {
			a.logger.WithError(summErr).Warn("Summarization degraded, using fallback karma")
		}
		karma = FallbackKarma(report.Positive, report.Negative, report.Neutral, report.AverageScore)
		recommendation = fallbackRecommendation(karma)
		a.countReport("fallback")
	} else {
		a.countReport("summarizer")
	}
	report.Karma = clampKarma(karma)
	report.Recommendation = recommendation

	if a.wordcloud != nil {
		url, err := a.wordcloud.Render(ctx, corpus(comments))
		if err != nil {
			if a.logger != nil {
				a.logger.WithError(err).Warn("Word cloud rendering failed")
			}
		} else {
			report.WordCloudURL = url
		}
	}

	return report, nil
}

// ListBySubject returns the influencer's comments sorted by timestamp
// descending. Comments whose timestamp does not parse sort last.
func (a *Analyzer) ListBySubject(ctx context.Context, subject string) ([]models.Comment, error) {
	exists, err := a.store.InfluencerExists(ctx, subject)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	comments, err := a.store.CommentsByInfluencer(ctx, subject)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]string, len(comments))
	for _, c := range comments {
		keys[c.ID] = sortKey(c.Date)
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return keys[comments[i].ID] > keys[comments[j].ID]
	})
	return comments, nil
}

// sortKey normalizes a timestamp for lexicographic ordering; anything
// unparseable becomes the empty string and so sorts last in descending
// order.
func sortKey(date string) string {
	t, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// summarize asks the LLM for a karma score and recommendation. The reply
// must contain "Karma: <int>" and "Recomendación: <text>" lines; anything
// else counts as a degraded summarization.
func (a *Analyzer) summarize(ctx context.Context, report models.Report, comments []models.Comment) (float64, string, error) {
	if a.summarizer == nil {
		return 0, "", errors.New("summarizer not configured")
	}

	sample := comments
	if len(sample) > summarySampleSize {
		sample = sampleComments(comments, summarySampleSize)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Analiza la reputación de %q a partir de estos comentarios y estadísticas.\n", report.Influencer)
	fmt.Fprintf(&sb, "Total: %d, positivos: %d, neutrales: %d, negativos: %d, puntaje promedio: %.2f.\n",
		report.Total, report.Positive, report.Neutral, report.Negative, report.AverageScore)
	sb.WriteString("Comentarios:\n")
	for _, c := range sample {
		fmt.Fprintf(&sb, "- [%s/%s] %s\n", c.Platform, c.Sentiment, c.Text)
	}
	sb.WriteString("Responde exactamente con el formato:\nKarma: <entero 0-100>\nRecomendación: <texto>")

	reply, err := a.summarizer.Complete(ctx, llm.SystemAndUser(
		"Eres un experto en análisis de reputación digital.", sb.String()))
	if err != nil {
		return 0, "", err
	}

	karmaMatch := karmaPattern.FindStringSubmatch(reply)
	recMatch := recommendationPattern.FindStringSubmatch(reply)
	if karmaMatch == nil || recMatch == nil {
		return 0, "", fmt.Errorf("unparsable summarization reply: %q", reply)
	}
	karma, err := strconv.Atoi(karmaMatch[1])
	if err != nil {
		return 0, "", fmt.Errorf("unparsable karma value: %q", karmaMatch[1])
	}
	return float64(karma), strings.TrimSpace(recMatch[1]), nil
}

// sampleComments picks an evenly spaced sample so all sources and ages
// are represented rather than just the first n items.
func sampleComments(comments []models.Comment, n int) []models.Comment {
	sample := make([]models.Comment, 0, n)
	step := float64(len(comments)) / float64(n)
	for i := 0; i < n; i++ {
		sample = append(sample, comments[int(float64(i)*step)])
	}
	return sample
}

// FallbackKarma is the deterministic karma formula used when
// summarization is unavailable. Always in [0, 100]; 50 when there are no
// counted comments.
func FallbackKarma(pos, neg, neu int, averageScore float64) float64 {
	total := pos + neg + neu
	if total == 0 {
		return 50
	}
	karma := (float64(pos)+0.5*float64(neu))/float64(total)*100 + averageScore*25
	return clampKarma(karma)
}

func clampKarma(karma float64) float64 {
	return math.Max(0, math.Min(100, karma))
}

func fallbackRecommendation(karma float64) string {
	switch {
	case karma >= 70:
		return "La percepción general es positiva. Mantener la estrategia de contenido actual y reforzar la interacción con la comunidad."
	case karma >= 40:
		return "La percepción es mixta. Conviene revisar los temas que generan comentarios negativos y responder activamente a la audiencia."
	default:
		return "La percepción general es negativa. Se recomienda una revisión profunda de la estrategia de comunicación y gestión de crisis."
	}
}

func corpus(comments []models.Comment) string {
	texts := make([]string, 0, len(comments))
	for _, c := range comments {
		texts = append(texts, c.Text)
	}
	return strings.Join(texts, " ")
}

func (a *Analyzer) countReport(origin string) {
	if a.metrics != nil && a.metrics.Reports != nil {
		a.metrics.Reports.WithLabelValues(origin).Inc()
	}
}
