package models

import "time"

// BookingStatusConfirmed is the only status a record leaves the dialogue with.
const BookingStatusConfirmed = "CONFIRMED"

// BookingRecord is the finalized booking as dispatched to the record sinks.
// Field order matches the spreadsheet columns.
type BookingRecord struct {
	ID                  string    `json:"id,omitempty" bson:"id,omitempty"`
	Name                string    `json:"name" bson:"name"`
	Phone               string    `json:"phone" bson:"phone"`
	Date                string    `json:"date" bson:"date"`
	Time                string    `json:"time" bson:"time"`
	People              int       `json:"people" bson:"people"`
	Status              string    `json:"status" bson:"status"`
	Timestamp           string    `json:"timestamp" bson:"timestamp"`
	ConfirmationID      string    `json:"confirmationId" bson:"confirmationId"`
	CallDurationMinutes float64   `json:"callDurationMinutes" bson:"callDurationMinutes"`
	CreatedAt           time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// Reply is the outbound side of one dialogue turn.
type Reply struct {
	Text      string         `json:"text"`
	Voice     string         `json:"voice"`
	ShouldEnd bool           `json:"shouldEnd,omitempty"`
	Booking   *BookingRecord `json:"booking,omitempty"`
}
