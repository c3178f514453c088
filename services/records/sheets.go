package records

import (
	"context"
	"fmt"

	"voicetable/config"
	"voicetable/models"
	"voicetable/utils"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const sheetRange = "Sheet1!A:I"

// SheetsAppender appends finalized bookings to the restaurant's spreadsheet,
// one row per booking in fixed column order.
type SheetsAppender struct {
	spreadsheetID   string
	credentialsFile string
}

// NewSheetsAppender builds the sink from AppConfig. It degrades to a logged
// no-op when the spreadsheet or credentials are not configured.
func NewSheetsAppender() *SheetsAppender {
	if config.AppConfig.SpreadsheetID == "" || config.AppConfig.GoogleServiceAccountFile == "" {
		utils.GetLogger().Warn("Google Sheets credentials missing, spreadsheet sink disabled")
	}
	return &SheetsAppender{
		spreadsheetID:   config.AppConfig.SpreadsheetID,
		credentialsFile: config.AppConfig.GoogleServiceAccountFile,
	}
}

// Append writes one booking row.
func (s *SheetsAppender) Append(ctx context.Context, record models.BookingRecord) error {
	if s.spreadsheetID == "" || s.credentialsFile == "" {
		return fmt.Errorf("sheets sink not configured")
	}

	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(s.credentialsFile))
	if err != nil {
		return fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	values := &sheets.ValueRange{
		Values: [][]any{{
			record.Name,
			record.Phone,
			record.Date,
			record.Time,
			record.People,
			record.Status,
			record.Timestamp,
			record.ConfirmationID,
			record.CallDurationMinutes,
		}},
	}

	_, err = svc.Spreadsheets.Values.
		Append(s.spreadsheetID, sheetRange, values).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append failed: %w", err)
	}

	utils.GetLogger().Info("Booking saved to Google Sheets",
		zap.String("confirmationID", record.ConfirmationID))
	return nil
}
