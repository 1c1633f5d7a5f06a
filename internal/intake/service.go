// internal/intake/service.go

// Package intake validates quiz submissions, records them in the bounded
// store, and fans events out to downstream collaborators.
package intake

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"blueprint-leads/internal/common/config"
	"blueprint-leads/internal/common/errors"
	"blueprint-leads/internal/common/logger"
	"blueprint-leads/internal/common/metrics"
	"blueprint-leads/internal/lead"
	"blueprint-leads/internal/quiz"
)

// Dispatcher delivers intake events to collaborators without blocking the
// request path.
type Dispatcher interface {
	DispatchLeadCreated(l *lead.Lead)
	DispatchFollowUpFlagged(handle string)
}

// SubmitInput is the wire shape of a lead submission.
type SubmitInput struct {
	Name              string            `json:"name"`
	ContactHandle     string            `json:"contactHandle"`
	Email             string            `json:"email"`
	Archetype         string            `json:"archetype"`
	FaithJourney      string            `json:"faithJourney"`
	ChurchStatus      string            `json:"churchStatus"`
	OpennessToContact string            `json:"opennessToContact"`
	Availability      []string          `json:"availability"`
	Ratings           map[string]int    `json:"ratings"`
	FreeTextAnswers   map[string]string `json:"freeTextAnswers"`
	FollowUpRequested bool              `json:"followUpRequested"`
}

// Service is the lead-intake core. All mutation goes through it.
type Service struct {
	store      *lead.Store
	dispatcher Dispatcher
	log        logger.Logger
	cfg        config.IntakeConfig
	schema     *gojsonschema.Schema

	now func() time.Time
}

// NewService wires the intake core. It panics if the submission schema does
// not compile, which can only happen from a programming error.
func NewService(store *lead.Store, dispatcher Dispatcher, log logger.Logger, cfg config.IntakeConfig) *Service {
	schema, err := compileSubmitSchema()
	if err != nil {
		panic(err)
	}
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		log:        log,
		cfg:        cfg,
		schema:     schema,
		now:        time.Now,
	}
}

// Submit validates a raw submission payload, stores the resulting lead, and
// dispatches the created event. Validation failures reject the payload
// without side effects.
func (s *Service) Submit(raw []byte) (*lead.Lead, *errors.StandardError) {
	var in SubmitInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, s.reject(errors.NewMalformedPayloadError(err))
	}

	if missing := missingRequiredFields(&in); len(missing) > 0 {
		return nil, s.reject(errors.NewMissingRequiredFieldsError(missing))
	}

	if details, ok := validateAgainstSchema(s.schema, raw); !ok {
		return nil, s.reject(errors.NewInvalidFieldValueError(details))
	}

	handle, err := lead.NormalizeHandle(in.ContactHandle)
	if err != nil {
		return nil, s.reject(errors.NewInvalidContactHandleError(err.Error()))
	}

	l := s.buildLead(&in, handle)
	s.store.Add(l)
	metrics.LeadsSubmitted.Inc()

	s.log.Info("Lead accepted", map[string]interface{}{
		"lead_id":   l.ID,
		"archetype": string(l.Archetype),
	})

	// Collaborators run on their own goroutines while later flag and read
	// calls keep mutating the stored record, so they get a detached copy.
	snapshot := *l
	s.dispatcher.DispatchLeadCreated(&snapshot)
	return l, nil
}

// FlagFollowUp marks the most recent lead with the given handle for
// follow-up. An unknown handle is acknowledged without effect so callers
// cannot probe which numbers exist.
func (s *Service) FlagFollowUp(rawHandle string) *errors.StandardError {
	metrics.FollowUpFlags.Inc()

	handle, err := lead.NormalizeHandle(rawHandle)
	if err != nil {
		stdErr := errors.NewInvalidContactHandleError(err.Error())
		metrics.LeadsRejected.WithLabelValues(string(stdErr.Code)).Inc()
		return stdErr
	}

	matched := s.store.FlagFollowUp(handle)
	s.log.Info("Follow-up flag processed", map[string]interface{}{
		"matched": matched,
	})

	s.dispatcher.DispatchFollowUpFlagged(handle)
	return nil
}

// ListAll returns every stored lead, most recent first, marking each as
// read. Intended for the authenticated operator view.
func (s *Service) ListAll() []lead.Lead {
	metrics.AdminReads.Inc()
	return s.store.ListAll()
}

// ScoreAnswers exposes the quiz scorer for the standalone scoring endpoint.
func (s *Service) ScoreAnswers(answers quiz.AnswerSet) (quiz.Archetype, quiz.Tally) {
	return quiz.ScoreWithTally(answers)
}

func (s *Service) reject(stdErr *errors.StandardError) *errors.StandardError {
	metrics.LeadsRejected.WithLabelValues(string(stdErr.Code)).Inc()
	s.log.Warn("Submission rejected", map[string]interface{}{
		"error_code": string(stdErr.Code),
		"details":    stdErr.Details,
	})
	return stdErr
}

func (s *Service) buildLead(in *SubmitInput, handle string) *lead.Lead {
	now := s.now().UTC()

	ratings := make(map[string]int, len(lead.RatingKeys))
	for _, k := range lead.RatingKeys {
		ratings[k] = in.Ratings[k]
	}

	freeText := make(map[string]string, len(in.FreeTextAnswers))
	for k, v := range in.FreeTextAnswers {
		freeText[k] = lead.Truncate(v, s.cfg.FreeTextMaxLen)
	}

	return &lead.Lead{
		ID:                lead.NewID(now),
		Name:              lead.Truncate(strings.TrimSpace(in.Name), s.cfg.NameMaxLen),
		ContactHandle:     lead.Truncate(handle, s.cfg.HandleMaxLen),
		Email:             lead.Truncate(strings.TrimSpace(in.Email), s.cfg.EmailMaxLen),
		Archetype:         quiz.Archetype(in.Archetype),
		FaithJourney:      in.FaithJourney,
		ChurchStatus:      in.ChurchStatus,
		OpennessToContact: in.OpennessToContact,
		Availability:      dedupe(in.Availability),
		Ratings:           ratings,
		FreeTextAnswers:   freeText,
		FollowUpRequested: in.FollowUpRequested,
		SubmittedAtUTC:    now,
		ReadFlag:          false,
	}
}

// missingRequiredFields checks the three fields a lead cannot exist without.
func missingRequiredFields(in *SubmitInput) []string {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.ContactHandle) == "" {
		missing = append(missing, "contactHandle")
	}
	if strings.TrimSpace(in.Archetype) == "" {
		missing = append(missing, "archetype")
	}
	return missing
}

// dedupe removes repeated availability slots, preserving first-seen order.
func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
