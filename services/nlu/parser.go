package nlu

import (
	"regexp"
	"strconv"
	"strings"

	"voicetable/models"
)

// RegexParser is the rule-based slot and intent extractor. Rules operate on the
// lowercased utterance.
type RegexParser struct{}

func NewRegexParser() *RegexParser {
	return &RegexParser{}
}

var (
	dateRe = regexp.MustCompile(`\b(today|tonight|tomorrow|mon|monday|tue|tuesday|wed|wednesday|thu|thursday|fri|friday|sat|saturday|sun|sunday|weekend|next week|this week|\d{1,2}(st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*)\b`)

	// "7pm", "7:30", "at 7", "half past 7", noon, midnight, lunch, dinner.
	timeRe = regexp.MustCompile(`\b((at\s+)?(1[0-2]|0?[1-9])(:[0-5]\d)?\s*(am|pm|o'clock)?|half past\s+(1[0-2]|0?[1-9])|noon|midnight|lunch|dinner)\b`)

	// "table for 5", "party of 5", "5 people", "couple", "few".
	peopleRe = regexp.MustCompile(`\b(table|party|reservation)?\s*(for|of)?\s*(\d+|one|two|three|four|five|six|seven|eight|nine|ten|couple|few)\s*(people|guests|of us)?\b`)
	justMeRe = regexp.MustCompile(`\b(just me|only me|single)\b`)

	nameRe  = regexp.MustCompile(`\b(my name is|this is|i am|it's|it is)\s+([a-z]+)\b`)
	phoneRe = regexp.MustCompile(`\b\d{10}\b`)
	yesRe   = regexp.MustCompile(`\b(yes|yeah|sure|confirm|okay|ok|correct|right|fine|good)\b`)
	noRe    = regexp.MustCompile(`\b(no|nah|don't|cancel|wrong|change|wait|stop)\b`)

	bareHourRe = regexp.MustCompile(`^\d+(:00)?$`)
	digitsRe   = regexp.MustCompile(`\d+`)
)

var wordToNum = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"couple": 2, "few": 3,
}

// Parse extracts slots first, then classifies the intent: an affirmation wins
// over everything, a negation next, otherwise any extracted slot means booking.
func (p *RegexParser) Parse(text string) models.NLUResult {
	lower := strings.ToLower(text)
	result := models.NLUResult{Intent: models.IntentNone}

	if m := dateRe.FindString(lower); m != "" {
		result.Slots.Date = m
	}

	if m := timeRe.FindString(lower); m != "" {
		result.Slots.Time = normalizeTime(m)
	}

	if m := peopleRe.FindStringSubmatch(lower); m != nil {
		num := m[3]
		if n, ok := wordToNum[num]; ok {
			result.Slots.People = n
		} else if n, err := strconv.Atoi(num); err == nil {
			result.Slots.People = n
		}
	} else if justMeRe.MatchString(lower) {
		result.Slots.People = 1
	}

	if m := nameRe.FindStringSubmatch(lower); m != nil {
		result.Slots.Name = m[2]
	}

	if m := phoneRe.FindString(lower); m != "" {
		result.Slots.Phone = m
	}

	switch {
	case yesRe.MatchString(lower):
		result.Intent = models.IntentConfirm
	case noRe.MatchString(lower):
		result.Intent = models.IntentReject
	case result.SlotCount() > 0:
		result.Intent = models.IntentBook
	}

	return result
}

func normalizeTime(raw string) string {
	t := strings.TrimSpace(strings.TrimPrefix(raw, "at "))

	switch t {
	case "noon":
		return "12:00 pm"
	case "midnight":
		return "12:00 am"
	case "lunch":
		return "1:00 pm"
	case "dinner":
		return "7:00 pm"
	}

	// "half past 7" -> "7:30"
	if strings.Contains(t, "half past") {
		if hour := digitsRe.FindString(t); hour != "" {
			return hour + ":30"
		}
		return t
	}

	// "7" -> "7:00" when no meridiem is attached.
	if !strings.Contains(t, "am") && !strings.Contains(t, "pm") {
		if bareHourRe.MatchString(t) {
			hour, _, _ := strings.Cut(t, ":")
			if n, err := strconv.Atoi(hour); err == nil && n >= 1 && n <= 12 {
				return strconv.Itoa(n) + ":00"
			}
		}
	}

	return t
}
