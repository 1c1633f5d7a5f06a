// internal/notifiers/sheet/sheet.go
package sheet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"blueprint-leads/internal/common/errors"
	"blueprint-leads/internal/common/logger"
	"blueprint-leads/internal/lead"
)

// Column layout of the lead sheet. The WhatsApp handle lives in column D
// and the follow-up marker in column K; the flag update depends on both.
var headers = []interface{}{
	"ID", "Submitted At (SGT)", "Name", "WhatsApp", "Email",
	"Blueprint", "Faith Journey", "Church Status", "Open to Meet",
	"Availability", "Follow-up Requested",
	"Career /5", "Relationships /5", "Faith /5", "Peace /5",
	"I wish God would show me...",
}

const (
	headerRange      = "A1:P1"
	handleColumn     = "D:D"
	followUpColumn   = "K"
	followUpMark     = "YES"
	followUpUnmarked = "no"
)

var sgt = time.FixedZone("SGT", 8*60*60)

// ValuesAPI is the slice of the Sheets values API the notifier needs.
// Wrapped in an interface for mocking.
type ValuesAPI interface {
	Get(ctx context.Context, rangeRef string) ([][]interface{}, error)
	Update(ctx context.Context, rangeRef string, values [][]interface{}) error
	Append(ctx context.Context, rangeRef string, values [][]interface{}) error
}

// Notifier appends every lead as a spreadsheet row and flips the follow-up
// cell when a contact asks to be reached.
type Notifier struct {
	values    ValuesAPI
	sheetName string
	logger    logger.Logger
}

// New builds the notifier against the real Sheets API using service-account
// credentials.
func New(ctx context.Context, log logger.Logger, spreadsheetID, credentialsJSON, sheetName string) (*Notifier, error) {
	srv, err := sheets.NewService(ctx, option.WithCredentialsJSON([]byte(credentialsJSON)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithValues(log, &googleValues{srv: srv, spreadsheetID: spreadsheetID}, sheetName), nil
}

// NewWithValues injects the values API, used by tests.
func NewWithValues(log logger.Logger, values ValuesAPI, sheetName string) *Notifier {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return &Notifier{
		values:    values,
		sheetName: sheetName,
		logger:    log.WithFields(map[string]interface{}{"notifier": "sheet"}),
	}
}

func (n *Notifier) Name() string { return "sheet" }

// LeadCreated ensures the header row exists, then appends the lead.
func (n *Notifier) LeadCreated(ctx context.Context, l *lead.Lead) error {
	if err := n.ensureHeaders(ctx); err != nil {
		return errors.NewSheetAppendFailedError(err)
	}

	row := leadRow(l)
	if err := n.values.Append(ctx, n.ref("A1"), [][]interface{}{row}); err != nil {
		return errors.NewSheetAppendFailedError(err)
	}

	n.logger.Info("Lead appended to sheet", map[string]interface{}{
		"lead_id": l.ID,
	})
	return nil
}

// FollowUpFlagged finds the row whose WhatsApp column matches the handle
// and writes the follow-up marker. A handle not present in the sheet is
// not an error.
func (n *Notifier) FollowUpFlagged(ctx context.Context, handle string) error {
	rows, err := n.values.Get(ctx, n.ref(handleColumn))
	if err != nil {
		return errors.NewSheetAppendFailedError(err)
	}

	rowIndex := -1
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		if cell, ok := row[0].(string); ok && cell == handle {
			rowIndex = i
			break
		}
	}
	if rowIndex == -1 {
		n.logger.Warn("Handle not found in sheet", map[string]interface{}{
			"handle": handle,
		})
		return nil
	}

	cellRef := n.ref(fmt.Sprintf("%s%d", followUpColumn, rowIndex+1))
	if err := n.values.Update(ctx, cellRef, [][]interface{}{{followUpMark}}); err != nil {
		return errors.NewSheetAppendFailedError(err)
	}
	return nil
}

func (n *Notifier) ensureHeaders(ctx context.Context) error {
	rows, err := n.values.Get(ctx, n.ref(headerRange))
	if err != nil {
		return err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		return nil
	}
	return n.values.Update(ctx, n.ref("A1"), [][]interface{}{headers})
}

func (n *Notifier) ref(rangeRef string) string {
	return n.sheetName + "!" + rangeRef
}

func leadRow(l *lead.Lead) []interface{} {
	followUp := followUpUnmarked
	if l.FollowUpRequested {
		followUp = followUpMark
	}
	return []interface{}{
		l.ID,
		l.SubmittedAtUTC.In(sgt).Format("2006-01-02 15:04:05"),
		l.Name,
		l.ContactHandle,
		l.Email,
		string(l.Archetype),
		l.FaithJourney,
		l.ChurchStatus,
		l.OpennessToContact,
		strings.Join(l.Availability, ", "),
		followUp,
		l.Ratings["career"],
		l.Ratings["relationships"],
		l.Ratings["faith"],
		l.Ratings["peace"],
		l.FreeTextAnswers["q7"],
	}
}

// googleValues adapts *sheets.Service to ValuesAPI.
type googleValues struct {
	srv           *sheets.Service
	spreadsheetID string
}

func (g *googleValues) Get(ctx context.Context, rangeRef string) ([][]interface{}, error) {
	resp, err := g.srv.Spreadsheets.Values.Get(g.spreadsheetID, rangeRef).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (g *googleValues) Update(ctx context.Context, rangeRef string, values [][]interface{}) error {
	_, err := g.srv.Spreadsheets.Values.
		Update(g.spreadsheetID, rangeRef, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (g *googleValues) Append(ctx context.Context, rangeRef string, values [][]interface{}) error {
	_, err := g.srv.Spreadsheets.Values.
		Append(g.spreadsheetID, rangeRef, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}
