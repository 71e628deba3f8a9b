package credit

import "github.com/onegreenvn/outreach-campaign-dashboard/internal/models"

// Compute projects the credit cost of running a campaign for durationDays.
// Discovery costs one credit per contact; enrichment adds a flat per-day amount.
// Negative inputs are treated as zero and durationDays below one as a single day.
func Compute(contactsPerDay, enrichCreditsPerContact, durationDays int) models.CreditCalculation {
	if contactsPerDay < 0 {
		contactsPerDay = 0
	}
	if enrichCreditsPerContact < 0 {
		enrichCreditsPerContact = 0
	}
	if durationDays < 1 {
		durationDays = 1
	}

	creditsPerDay := contactsPerDay + enrichCreditsPerContact

	return models.CreditCalculation{
		CreditsPerDay: creditsPerDay,
		TotalCredits:  creditsPerDay * durationDays,
		DurationDays:  durationDays,
		Breakdown: models.CreditBreakdown{
			DiscoveryCredits:  contactsPerDay * durationDays,
			EnrichmentCredits: enrichCreditsPerContact * durationDays,
		},
	}
}
