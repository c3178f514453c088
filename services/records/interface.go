package records

import (
	"context"

	"voicetable/models"
)

// Dispatcher hands a finalized booking off for persistence. Implementations
// must not block the dialogue turn and must swallow failures (logging only);
// the caller has already been told the booking is confirmed.
type Dispatcher interface {
	Dispatch(record models.BookingRecord)
}

// Sink is one durable destination for booking records (spreadsheet, archive).
type Sink interface {
	Append(ctx context.Context, record models.BookingRecord) error
}
