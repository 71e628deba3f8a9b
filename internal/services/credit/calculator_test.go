package credit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name           string
		contactsPerDay int
		enrichCredits  int
		durationDays   int
		wantPerDay     int
		wantTotal      int
		wantDiscovery  int
		wantEnrichment int
	}{
		{"multi day", 50, 50, 5, 100, 500, 250, 250},
		{"single day", 50, 50, 1, 100, 100, 50, 50},
		{"no enrichment", 30, 0, 7, 30, 210, 210, 0},
		{"zero everything", 0, 0, 20, 0, 0, 0, 0},
		{"negative inputs clamp to zero", -10, -5, 3, 0, 0, 0, 0},
		{"zero duration counts as one day", 10, 5, 0, 15, 15, 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.contactsPerDay, tt.enrichCredits, tt.durationDays)
			assert.Equal(t, tt.wantPerDay, got.CreditsPerDay)
			assert.Equal(t, tt.wantTotal, got.TotalCredits)
			assert.Equal(t, tt.wantDiscovery, got.Breakdown.DiscoveryCredits)
			assert.Equal(t, tt.wantEnrichment, got.Breakdown.EnrichmentCredits)
			assert.Equal(t, got.TotalCredits, got.Breakdown.DiscoveryCredits+got.Breakdown.EnrichmentCredits)
		})
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	assert.Equal(t, Compute(12, 7, 9), Compute(12, 7, 9))
}
