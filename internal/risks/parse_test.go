package risks

import (
	"strings"
	"testing"
)

func TestParse_EmptyTextNeverReturnsEmptyList(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty string", ""},
		{"whitespace only", "   \n\t\n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if len(got) != 1 {
				t.Fatalf("Parse(%q) returned %d risks, want exactly 1 synthetic record", tt.text, len(got))
			}
			if !strings.Contains(got[0].Title, "failed") {
				t.Errorf("Title = %q, want parse-failure marker", got[0].Title)
			}
			if got[0].Region != "Global" {
				t.Errorf("Region = %q, want Global", got[0].Region)
			}
		})
	}
}

func TestParse_MarkdownHeadings(t *testing.T) {
	text := `## Taiwan Strait tensions
Military posturing has escalated near the strait.

## European energy dispute
Pipeline negotiations have stalled amid tariff threats.`

	got := Parse(text)
	if len(got) != 2 {
		t.Fatalf("Parse() returned %d risks, want 2", len(got))
	}

	if got[0].Title != "Taiwan Strait tensions" {
		t.Errorf("Title = %q, want heading text", got[0].Title)
	}
	if got[0].Impact != ImpactHigh {
		t.Errorf("Impact = %q, want high (escalation keyword)", got[0].Impact)
	}
	if got[0].Region != "East Asia" {
		t.Errorf("Region = %q, want East Asia", got[0].Region)
	}

	if got[1].Impact != ImpactMedium {
		t.Errorf("Impact = %q, want medium (dispute/tariff keywords)", got[1].Impact)
	}
	if got[1].Region != "Europe" {
		t.Errorf("Region = %q, want Europe", got[1].Region)
	}
}

func TestParse_NumberedSegments(t *testing.T) {
	text := `1. Shipping lane instability
Rerouting raises freight costs.
2. Commodity price volatility
Broad uncertainty in metals markets.`

	got := Parse(text)
	if len(got) != 2 {
		t.Fatalf("Parse() returned %d risks, want 2", len(got))
	}
	if got[0].Title != "Shipping lane instability" {
		t.Errorf("Title = %q, want numbered item text", got[0].Title)
	}
	if got[0].Description != "Rerouting raises freight costs." {
		t.Errorf("Description = %q, want body line", got[0].Description)
	}
}

func TestParse_ExplicitRatingOverridesKeywords(t *testing.T) {
	// "war" alone would score high, but the explicit 3/10 wins.
	text := `## Trade war rhetoric
Campaign statements only, no policy change expected. Severity: 3/10.`

	got := Parse(text)
	if len(got) != 1 {
		t.Fatalf("Parse() returned %d risks, want 1", len(got))
	}
	if got[0].Rating != 3 {
		t.Errorf("Rating = %v, want 3", got[0].Rating)
	}
	if got[0].Impact != ImpactLow {
		t.Errorf("Impact = %q, want low (explicit rating overrides keywords)", got[0].Impact)
	}
}

func TestParse_RatingTiers(t *testing.T) {
	tests := []struct {
		rating string
		want   Impact
	}{
		{"2/10", ImpactLow},
		{"4/10", ImpactMedium},
		{"6.5/10", ImpactMedium},
		{"7/10", ImpactHigh},
		{"9/10", ImpactHigh},
	}

	for _, tt := range tests {
		t.Run(tt.rating, func(t *testing.T) {
			got := Parse("## Some development\nRated " + tt.rating + " by analysts.")
			if len(got) != 1 {
				t.Fatalf("Parse() returned %d risks, want 1", len(got))
			}
			if got[0].Impact != tt.want {
				t.Errorf("Impact = %q, want %q", got[0].Impact, tt.want)
			}
		})
	}
}

func TestParse_DefaultsWhenNoEntityDetected(t *testing.T) {
	text := `## Supply chain snarls
Container backlogs persist at several ports.`

	got := Parse(text)
	if len(got) != 1 {
		t.Fatalf("Parse() returned %d risks, want 1", len(got))
	}
	if got[0].Region != "Global" {
		t.Errorf("Region = %q, want Global default", got[0].Region)
	}
	if len(got[0].Markets) != 1 || got[0].Markets[0] != "Global Markets" {
		t.Errorf("Markets = %v, want [Global Markets] default", got[0].Markets)
	}
	if got[0].Impact != ImpactLow {
		t.Errorf("Impact = %q, want low default", got[0].Impact)
	}
}

func TestParse_ProseWithoutHeadings(t *testing.T) {
	text := "Sanctions pressure is building across several economies.\nFurther detail follows here."

	got := Parse(text)
	if len(got) != 1 {
		t.Fatalf("Parse() returned %d risks, want 1", len(got))
	}
	if got[0].Title != "Sanctions pressure is building across several economies." {
		t.Errorf("Title = %q, want first line", got[0].Title)
	}
	if got[0].Impact != ImpactHigh {
		t.Errorf("Impact = %q, want high (sanctions keyword)", got[0].Impact)
	}
}
