package models

// Platform identifies the source an opinion item was collected from.
type Platform string

const (
	PlatformReddit   Platform = "reddit"
	PlatformTikTok   Platform = "tiktok"
	PlatformFacebook Platform = "facebook"
)

// AllPlatforms lists every platform an adapter exists for.
func AllPlatforms() []Platform {
	return []Platform{PlatformReddit, PlatformTikTok, PlatformFacebook}
}

// ParsePlatform validates a platform tag from user input.
func ParsePlatform(s string) (Platform, bool) {
	switch Platform(s) {
	case PlatformReddit, PlatformTikTok, PlatformFacebook:
		return Platform(s), true
	default:
		return "", false
	}
}

// Sentiment is the label assigned to a comment by the classifier.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Influencer is the subject being analyzed. Name is canonical: lowercase
// with any leading '#' or '@' stripped.
type Influencer struct {
	Name       string `json:"name"`
	LastScrape string `json:"last_scrape"` // RFC3339
}

// Comment is one normalized opinion item. Immutable once stored.
type Comment struct {
	ID         string    `json:"id"`
	Platform   Platform  `json:"platform"`
	Influencer string    `json:"influencer"`
	Text       string    `json:"text"`
	Sentiment  Sentiment `json:"sentiment"`
	Score      float64   `json:"score"`
	Date       string    `json:"date"` // RFC3339; empty when the source had none
}

// Report is the aggregate reputation view for an influencer.
type Report struct {
	Influencer     string  `json:"influencer"`
	Total          int     `json:"total"`
	Positive       int     `json:"positive"`
	Neutral        int     `json:"neutral"`
	Negative       int     `json:"negative"`
	AverageScore   float64 `json:"average_score"`
	Karma          float64 `json:"karma"` // always in [0, 100]
	Recommendation string  `json:"recommendation"`
	WordCloudURL   string  `json:"wordcloud_url,omitempty"`
}
