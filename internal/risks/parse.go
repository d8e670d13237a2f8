// Package risks extracts structured geopolitical risk records from the
// unstructured prose an analysis job may return. The extraction is
// lossy and best-effort: keyword matching and heading heuristics, not a
// grammar. Parse never returns an empty list.
package risks

import (
	"regexp"
	"strconv"
	"strings"
)

// Impact is the three-tier severity assigned to a risk.
type Impact string

const (
	// ImpactLow marks background risks
	ImpactLow Impact = "low"
	// ImpactMedium marks risks worth watching
	ImpactMedium Impact = "medium"
	// ImpactHigh marks risks with likely market effect
	ImpactHigh Impact = "high"
)

// Risk is one extracted risk record.
type Risk struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      Impact `json:"impact"`
	// Rating is the explicit N/10 score when the text carries one,
	// zero otherwise.
	Rating  float64  `json:"rating,omitempty"`
	Region  string   `json:"region"`
	Markets []string `json:"markets"`
}

const (
	defaultRegion = "Global"
	defaultMarket = "Global Markets"
)

// headingRe matches the markers that start a new risk segment:
// markdown headings, numbered items, or an explicit "Risk N:" label.
var headingRe = regexp.MustCompile(`^(#{1,6}\s+|\d+[.)]\s+|[Rr]isk\s*\d*\s*:\s*)`)

// ratingRe matches an explicit "N/10" or "N.M/10" severity rating.
var ratingRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*/\s*10`)

var highImpactKeywords = []string{
	"war", "invasion", "nuclear", "military", "attack", "conflict",
	"sanctions", "crisis", "escalat", "embargo", "default",
}

var mediumImpactKeywords = []string{
	"tension", "dispute", "uncertainty", "instability", "tariff",
	"protest", "election", "slowdown", "volatility",
}

// regionMarkets maps a detected region keyword to the region label and
// the markets most exposed to it.
var regionMarkets = []struct {
	keyword string
	region  string
	markets []string
}{
	{"ukraine", "Eastern Europe", []string{"European Markets", "Energy"}},
	{"russia", "Eastern Europe", []string{"European Markets", "Energy"}},
	{"taiwan", "East Asia", []string{"Asian Markets", "Semiconductors"}},
	{"china", "East Asia", []string{"Asian Markets", "Emerging Markets"}},
	{"middle east", "Middle East", []string{"Energy", "Global Markets"}},
	{"iran", "Middle East", []string{"Energy", "Global Markets"}},
	{"israel", "Middle East", []string{"Energy", "Global Markets"}},
	{"europe", "Europe", []string{"European Markets"}},
	{"united states", "North America", []string{"US Markets"}},
	{"japan", "East Asia", []string{"Asian Markets"}},
	{"korea", "East Asia", []string{"Asian Markets"}},
}

// Parse extracts risk records from prose. On total failure it returns
// exactly one synthetic record flagging the parse failure, so
// downstream aggregation never sees an empty collection.
func Parse(text string) []Risk {
	segments := segment(text)
	if len(segments) == 0 {
		return []Risk{parseFailureRisk()}
	}

	risks := make([]Risk, 0, len(segments))
	for _, seg := range segments {
		risks = append(risks, buildRisk(seg))
	}
	return risks
}

type textSegment struct {
	title string
	body  string
}

// segment splits prose into title/body chunks at heading markers. Text
// with no recognizable headings becomes one segment titled by its
// first line.
func segment(text string) []textSegment {
	lines := strings.Split(text, "\n")

	var segments []textSegment
	var current *textSegment

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := headingRe.FindString(trimmed); m != "" {
			title := strings.TrimSpace(strings.TrimPrefix(trimmed, m))
			if title == "" {
				continue
			}
			segments = append(segments, textSegment{title: title})
			current = &segments[len(segments)-1]
			continue
		}

		if current == nil {
			// Prose before any heading: whole text is one segment,
			// first line serves as the title.
			segments = append(segments, textSegment{title: trimmed})
			current = &segments[len(segments)-1]
			continue
		}

		if current.body == "" {
			current.body = trimmed
		} else {
			current.body += " " + trimmed
		}
	}

	return segments
}

func buildRisk(seg textSegment) Risk {
	risk := Risk{
		Title:       seg.title,
		Description: seg.body,
		Region:      defaultRegion,
		Markets:     []string{defaultMarket},
	}
	if risk.Description == "" {
		risk.Description = seg.title
	}

	full := strings.ToLower(seg.title + " " + seg.body)

	risk.Impact = keywordImpact(full)
	if m := ratingRe.FindStringSubmatch(seg.title + " " + seg.body); m != nil {
		if rating, err := strconv.ParseFloat(m[1], 64); err == nil && rating <= 10 {
			// An explicit rating overrides the keyword guess.
			risk.Rating = rating
			risk.Impact = ratingImpact(rating)
		}
	}

	for _, rm := range regionMarkets {
		if strings.Contains(full, rm.keyword) {
			risk.Region = rm.region
			risk.Markets = rm.markets
			break
		}
	}

	return risk
}

func keywordImpact(text string) Impact {
	for _, kw := range highImpactKeywords {
		if strings.Contains(text, kw) {
			return ImpactHigh
		}
	}
	for _, kw := range mediumImpactKeywords {
		if strings.Contains(text, kw) {
			return ImpactMedium
		}
	}
	return ImpactLow
}

func ratingImpact(rating float64) Impact {
	switch {
	case rating >= 7:
		return ImpactHigh
	case rating >= 4:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

func parseFailureRisk() Risk {
	return Risk{
		Title:       "Risk extraction failed",
		Description: "No parsable risk content was found in the analysis result.",
		Impact:      ImpactMedium,
		Region:      defaultRegion,
		Markets:     []string{defaultMarket},
	}
}
