// internal/notifiers/sheet/sheet_test.go
package sheet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "blueprint-leads/internal/common/errors"
	"blueprint-leads/internal/common/logger"
	"blueprint-leads/internal/lead"
)

type fakeValues struct {
	getResults map[string][][]interface{}
	getErr     error
	appendErr  error

	updates map[string][][]interface{}
	appends map[string][][]interface{}
}

func newFakeValues() *fakeValues {
	return &fakeValues{
		getResults: map[string][][]interface{}{},
		updates:    map[string][][]interface{}{},
		appends:    map[string][][]interface{}{},
	}
}

func (f *fakeValues) Get(_ context.Context, rangeRef string) ([][]interface{}, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getResults[rangeRef], nil
}

func (f *fakeValues) Update(_ context.Context, rangeRef string, values [][]interface{}) error {
	f.updates[rangeRef] = values
	return nil
}

func (f *fakeValues) Append(_ context.Context, rangeRef string, values [][]interface{}) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appends[rangeRef] = values
	return nil
}

func sheetLead() *lead.Lead {
	return &lead.Lead{
		ID:                "PT-1700000000000-ABCDEF",
		Name:              "Joshua",
		ContactHandle:     "+6281234567890",
		Email:             "joshua@example.com",
		Archetype:         "BUILDER",
		FaithJourney:      "stuck",
		ChurchStatus:      "looking",
		OpennessToContact: "yes",
		Availability:      []string{"evenings", "weekends"},
		Ratings:           map[string]int{"career": 4, "relationships": 3, "faith": 2, "peace": 3},
		FreeTextAnswers:   map[string]string{"q7": "Direction for my career."},
		SubmittedAtUTC:    time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestLeadCreated_WritesHeaderThenRow(t *testing.T) {
	values := newFakeValues()
	n := NewWithValues(logger.NewTestLogger(t), values, "Sheet1")

	require.NoError(t, n.LeadCreated(context.Background(), sheetLead()))

	header, ok := values.updates["Sheet1!A1"]
	require.True(t, ok, "header row must be written on an empty sheet")
	assert.Len(t, header[0], 16)
	assert.Equal(t, "WhatsApp", header[0][3])
	assert.Equal(t, "Follow-up Requested", header[0][10])

	rows, ok := values.appends["Sheet1!A1"]
	require.True(t, ok)
	row := rows[0]
	require.Len(t, row, 16)
	assert.Equal(t, "PT-1700000000000-ABCDEF", row[0])
	// 10:00 UTC renders as 18:00 Singapore time.
	assert.Equal(t, "2024-11-01 18:00:00", row[1])
	assert.Equal(t, "+6281234567890", row[3])
	assert.Equal(t, "BUILDER", row[5])
	assert.Equal(t, "evenings, weekends", row[9])
	assert.Equal(t, "no", row[10])
	assert.Equal(t, 4, row[11])
	assert.Equal(t, "Direction for my career.", row[15])
}

func TestLeadCreated_SkipsHeaderWhenPresent(t *testing.T) {
	values := newFakeValues()
	values.getResults["Sheet1!A1:P1"] = [][]interface{}{{"ID"}}
	n := NewWithValues(logger.NewTestLogger(t), values, "Sheet1")

	require.NoError(t, n.LeadCreated(context.Background(), sheetLead()))
	assert.Empty(t, values.updates)
}

func TestLeadCreated_WrapsAppendFailure(t *testing.T) {
	values := newFakeValues()
	values.getResults["Sheet1!A1:P1"] = [][]interface{}{{"ID"}}
	values.appendErr = errors.New("quota exceeded")
	n := NewWithValues(logger.NewTestLogger(t), values, "Sheet1")

	err := n.LeadCreated(context.Background(), sheetLead())
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeSheetAppendFailed, stdErr.Code)
}

func TestFollowUpFlagged_UpdatesMatchingRow(t *testing.T) {
	values := newFakeValues()
	values.getResults["Sheet1!D:D"] = [][]interface{}{
		{"WhatsApp"},
		{"+6280000000001"},
		{"+6281234567890"},
	}
	n := NewWithValues(logger.NewTestLogger(t), values, "Sheet1")

	require.NoError(t, n.FollowUpFlagged(context.Background(), "+6281234567890"))

	// Handle sits in sheet row 3, so the marker lands in K3.
	marked, ok := values.updates["Sheet1!K3"]
	require.True(t, ok)
	assert.Equal(t, [][]interface{}{{"YES"}}, marked)
}

func TestFollowUpFlagged_UnknownHandleIsSilent(t *testing.T) {
	values := newFakeValues()
	values.getResults["Sheet1!D:D"] = [][]interface{}{
		{"WhatsApp"},
		{"+6280000000001"},
	}
	n := NewWithValues(logger.NewTestLogger(t), values, "Sheet1")

	require.NoError(t, n.FollowUpFlagged(context.Background(), "+6289999999999"))
	assert.Empty(t, values.updates)
}
