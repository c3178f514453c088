package recordsRepo

import (
	"context"
	"time"

	"voicetable/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Create inserts a finalized booking and returns its archive id.
func (r *mongoArchiveRepo) Create(ctx context.Context, record models.BookingRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// GetByConfirmationID returns the archived booking for a confirmation id.
func (r *mongoArchiveRepo) GetByConfirmationID(ctx context.Context, confirmationID string) (*models.BookingRecord, error) {
	var record models.BookingRecord
	err := r.coll.FindOne(ctx, bson.M{"confirmationId": confirmationID}).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByDate fetches all archived bookings for a given day token.
func (r *mongoArchiveRepo) GetByDate(ctx context.Context, date string) ([]models.BookingRecord, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"date": date})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.BookingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
