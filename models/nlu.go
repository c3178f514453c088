package models

// Intent is the coarse classification of one utterance.
type Intent string

const (
	IntentBook    Intent = "book"
	IntentConfirm Intent = "confirm"
	IntentReject  Intent = "reject"
	IntentNone    Intent = "none"
)

// NLUResult carries the intent and whatever slots one utterance yielded.
type NLUResult struct {
	Intent Intent       `json:"intent"`
	Slots  BookingSlots `json:"slots"`
}

// SlotCount reports how many slots this turn extracted. The dialogue uses it to
// tell a slot-bearing utterance apart from a bare name or a yes/no.
func (r NLUResult) SlotCount() int {
	n := 0
	if r.Slots.Date != "" {
		n++
	}
	if r.Slots.Time != "" {
		n++
	}
	if r.Slots.People != 0 {
		n++
	}
	if r.Slots.Name != "" {
		n++
	}
	if r.Slots.Phone != "" {
		n++
	}
	return n
}
