package recordsRepo

import (
	"context"

	"voicetable/database"
	"voicetable/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingArchiveRepository is the durable copy of every finalized booking.
type BookingArchiveRepository interface {
	Create(ctx context.Context, record models.BookingRecord) (string, error)
	GetByConfirmationID(ctx context.Context, confirmationID string) (*models.BookingRecord, error)
	GetByDate(ctx context.Context, date string) ([]models.BookingRecord, error)
}

type mongoArchiveRepo struct {
	coll *mongo.Collection
}

// NewMongoArchiveRepo returns a BookingArchiveRepository backed by MongoDB.
func NewMongoArchiveRepo() BookingArchiveRepository {
	db := database.MongoClient.Database("voicetable")
	return &mongoArchiveRepo{
		coll: db.Collection("booking_records"),
	}
}
