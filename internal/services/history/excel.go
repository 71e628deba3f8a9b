package history

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
)

const sheetName = "Daily Runs"

var historyColumns = []string{
	"day_number", "status", "contacts_discovered", "sequences_created",
	"credits_used", "scheduled_at", "completed_at", "error_message",
}

// ExportExcel renders the campaign's daily run history into an xlsx workbook
func ExportExcel(c *models.Campaign) (*bytes.Buffer, error) {
	if c == nil {
		return nil, fmt.Errorf("no campaign snapshot to export")
	}
	rows := Rows(c.DailyRuns)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	f.SetActiveSheet(0)

	statusStyles := map[models.DailyRunStatus]int{}
	for status, color := range map[models.DailyRunStatus]string{
		models.DailyRunStatusFailed:    "F4B084", // Light red
		models.DailyRunStatusSkipped:   "D9D9D9", // Gray
		models.DailyRunStatusRunning:   "FFC000", // Orange
		models.DailyRunStatusScheduled: "FFFF00", // Yellow
		models.DailyRunStatusCompleted: "C6EFCE", // Light green
	} {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err == nil {
			statusStyles[status] = style
		}
	}

	for i, col := range historyColumns {
		f.SetCellValue(sheetName, fmt.Sprintf("%s1", columnToLetter(i+1)), col)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err == nil {
		f.SetCellStyle(sheetName, "A1", columnToLetter(len(historyColumns))+strconv.Itoa(1), headerStyle)
	}

	for i, col := range historyColumns {
		colLetter := columnToLetter(i + 1)
		width := 18.0
		switch col {
		case "day_number", "status":
			width = 12.0
		case "scheduled_at", "completed_at":
			width = 22.0
		case "error_message":
			width = 50.0
		}
		f.SetColWidth(sheetName, colLetter, colLetter, width)
	}

	if len(rows) == 0 {
		f.SetCellValue(sheetName, "A2", "no daily runs yet")
	}

	lastCol := columnToLetter(len(historyColumns))
	for j, row := range rows {
		rowNum := j + 2

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), row.DayNumber)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), string(row.Status))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), row.ContactsDiscovered)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), row.SequencesCreated)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), row.CreditsUsed)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowNum), formatTime(row.ScheduledAt))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowNum), formatTime(row.CompletedAt))
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowNum), row.ErrorMessage)

		if style, ok := statusStyles[row.Status]; ok {
			f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("%s%d", lastCol, rowNum), style)
		}
	}

	summaryRow := len(rows) + 3
	if len(rows) == 0 {
		summaryRow = 4
	}
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "campaign_id")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow), c.CampaignID)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow+1), "status")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow+1), string(c.Status))
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow+2), "credits")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow+2),
		fmt.Sprintf("%d consumed / %d reserved / %d refunded", c.CreditsConsumed, c.TotalCreditsReserved, c.CreditsRefunded))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf, nil
}

// Filename returns the download name for a campaign export
func Filename(campaignID string, now time.Time) string {
	return fmt.Sprintf("campaign_%s_history_%d.xlsx", campaignID, now.Unix())
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// columnToLetter converts a 1-based column number to its Excel letter
func columnToLetter(col int) string {
	var result string
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
