// Package sentiment wraps the LLM provider behind a classifier that
// cannot fail: any provider error or unparsable reply degrades to
// (neutral, 0.0). Sentiment is advisory; collection must never abort
// because scoring did.
package sentiment

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/DanYC1503/spyglass/pkg/llm"
	"github.com/DanYC1503/spyglass/pkg/logging"
	"github.com/DanYC1503/spyglass/pkg/models"
)

const promptTemplate = "Classify the sentiment of this text: %q " +
	"as positive, negative or neutral, and reply with only the label " +
	"and a score between -1 and 1, separated by a comma. Example: positive, 0.8"

var scorePattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

// Classifier assigns a sentiment label and score to free text.
type Classifier struct {
	provider llm.Provider
	logger   logging.Logger
}

// New builds a classifier. A nil provider is allowed and degrades every
// call to neutral, so the service runs without an LLM configured.
func New(provider llm.Provider, logger logging.Logger) *Classifier {
	return &Classifier{provider: provider, logger: logger}
}

// Classify returns the sentiment of text. Never returns an error: any
// failure maps to (neutral, 0.0) for that call only, with no retry.
func (c *Classifier) Classify(ctx context.Context, text string) (models.Sentiment, float64) {
	if c.provider == nil {
		return models.SentimentNeutral, 0.0
	}

	prompt := fmt.Sprintf(promptTemplate, text)
	reply, err := c.provider.Complete(ctx, llm.UserMessage(prompt))
	if err != nil {
		if c.logger != nil {
			c.logger.WithError(err).Debug("Sentiment classification degraded to neutral")
		}
		return models.SentimentNeutral, 0.0
	}

	label, score, ok := parseReply(reply)
	if !ok {
		if c.logger != nil {
			c.logger.WithField("reply", reply).Debug("Unparsable classifier reply, using neutral")
		}
		return models.SentimentNeutral, 0.0
	}
	return label, score
}

// parseReply extracts a label and score from a free-text reply. Label
// matching is case-insensitive anywhere in the text; the score is the
// first numeric token found.
func parseReply(reply string) (models.Sentiment, float64, bool) {
	lower := strings.ToLower(reply)

	var label models.Sentiment
	switch {
	case strings.Contains(lower, "positive"):
		label = models.SentimentPositive
	case strings.Contains(lower, "negative"):
		label = models.SentimentNegative
	case strings.Contains(lower, "neutral"):
		label = models.SentimentNeutral
	default:
		return "", 0, false
	}

	token := scorePattern.FindString(reply)
	if token == "" {
		return "", 0, false
	}
	score, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return "", 0, false
	}
	return label, score, true
}
