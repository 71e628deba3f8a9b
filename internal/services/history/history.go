package history

import (
	"sort"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
)

// Rows projects daily runs into history rows ordered by day ascending.
// Runs sharing a day keep their original order.
func Rows(runs []models.DailyRun) []models.DailyRunHistoryRow {
	rows := make([]models.DailyRunHistoryRow, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, models.DailyRunHistoryRow{
			DayNumber:          run.DayNumber,
			Status:             run.Status,
			ContactsDiscovered: run.ContactsDiscovered,
			SequencesCreated:   run.SequencesCreated,
			CreditsUsed:        run.CreditsUsed,
			ScheduledAt:        run.ScheduledAt,
			CompletedAt:        run.CompletedAt,
			ErrorMessage:       run.ErrorMessage,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DayNumber < rows[j].DayNumber
	})
	return rows
}

// ForCampaign returns the history of a tracked snapshot; nil yields an empty table
func ForCampaign(campaignID string, c *models.Campaign) models.DailyRunHistoryResponse {
	resp := models.DailyRunHistoryResponse{CampaignID: campaignID, Rows: []models.DailyRunHistoryRow{}}
	if c != nil {
		resp.Rows = Rows(c.DailyRuns)
	}
	return resp
}
