// internal/lead/model.go
package lead

import (
	"fmt"
	"strings"
	"time"

	"blueprint-leads/internal/quiz"

	"github.com/google/uuid"
)

// Closed option sets for the categorical contact-form fields. Values outside
// these sets are rejected at intake.
const (
	FaithThriving  = "thriving"
	FaithStuck     = "stuck"
	FaithQuestions = "questions"
	FaithAway      = "away"
	FaithExploring = "exploring"

	ChurchActive     = "active"
	ChurchOccasional = "occasional"
	ChurchLooking    = "looking"
	ChurchAwayOpen   = "away_open"
	ChurchAwayClosed = "away_closed"

	OpenYes    = "yes"
	OpenMaybe  = "maybe"
	OpenOnline = "online"
	OpenNo     = "no"

	AvailMornings   = "mornings"
	AvailAfternoons = "afternoons"
	AvailEvenings   = "evenings"
	AvailWeekends   = "weekends"
)

var (
	FaithJourneyOptions = []string{FaithThriving, FaithStuck, FaithQuestions, FaithAway, FaithExploring}
	ChurchStatusOptions = []string{ChurchActive, ChurchOccasional, ChurchLooking, ChurchAwayOpen, ChurchAwayClosed}
	OpennessOptions     = []string{OpenYes, OpenMaybe, OpenOnline, OpenNo}
	AvailabilityOptions = []string{AvailMornings, AvailAfternoons, AvailEvenings, AvailWeekends}

	// RatingKeys are the four fixed life areas of the rating question.
	RatingKeys = []string{"career", "relationships", "faith", "peace"}
)

// Lead is the stored representation of one quiz completion plus contact info.
type Lead struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	ContactHandle     string            `json:"contactHandle"`
	Email             string            `json:"email,omitempty"`
	Archetype         quiz.Archetype    `json:"archetype"`
	FaithJourney      string            `json:"faithJourney,omitempty"`
	ChurchStatus      string            `json:"churchStatus,omitempty"`
	OpennessToContact string            `json:"opennessToContact,omitempty"`
	Availability      []string          `json:"availability"`
	Ratings           map[string]int    `json:"ratings"`
	FreeTextAnswers   map[string]string `json:"freeTextAnswers"`
	FollowUpRequested bool              `json:"followUpRequested"`
	SubmittedAtUTC    time.Time         `json:"submittedAtUtc"`
	ReadFlag          bool              `json:"readFlag"`
}

// NewID builds a lead id from a millisecond timestamp prefix and a short
// random suffix, e.g. PT-1756600000000-1A2B3C.
func NewID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("PT-%d-%s", now.UnixMilli(), suffix)
}

// Truncate caps s at max bytes. A non-positive max disables the cap.
func Truncate(s string, max int) string {
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
