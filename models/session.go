package models

import "time"

// DialogueState identifies the stage of a booking conversation.
type DialogueState string

const (
	StateWelcome           DialogueState = "WELCOME"
	StateCollectInfo       DialogueState = "COLLECT_INFO"
	StateCheckAvailability DialogueState = "CHECK_AVAILABILITY"
	StateConfirm           DialogueState = "CONFIRM"
	StateFinalize          DialogueState = "FINALIZE"
)

// BookingSlots holds the partial booking request collected over a call.
// Zero values mean the slot has not been filled yet.
type BookingSlots struct {
	Date   string `json:"date,omitempty"`
	Time   string `json:"time,omitempty"`
	People int    `json:"people,omitempty"`
	Name   string `json:"name,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// Session is the per-call conversation state. It is owned by exactly one
// websocket connection; the transport delivers utterances for it sequentially.
type Session struct {
	ID             string        `json:"id"`
	State          DialogueState `json:"state"`
	Slots          BookingSlots  `json:"slots"`
	StartTimestamp time.Time     `json:"startTimestamp"`
	EndTimestamp   time.Time     `json:"endTimestamp,omitempty"`

	// PhoneAttempts is reserved for a phone retry policy; nothing increments it yet.
	PhoneAttempts int `json:"phoneAttempts"`
}
