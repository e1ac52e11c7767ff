// Package google mirrors movements to a Google Sheets register using a
// service account or a pre-authorized OAuth user token (see
// cmd/oauth-init).
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"mouvements/internal/core"
	ports "mouvements/internal/register"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	mu       sync.Mutex
	sheetID  int64
	resolved bool
}

var _ ports.Writer = (*Client)(nil)

// NewFromEnv creates a register client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_REGISTER_SHEET_NAME (default "Mouvements"), plus one
// of GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS for auth.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_REGISTER_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Mouvements"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service. Service Account
// credentials (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS) take precedence; an OAuth client
// plus the token saved by cmd/oauth-init is the fallback.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return newOAuthSheetsService(ctx)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// newOAuthSheetsService builds the service from an OAuth client config
// and the user token written by cmd/oauth-init.
func newOAuthSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))

	var b []byte
	var err error
	switch {
	case clientJSON != "":
		b = []byte(clientJSON)
	case clientFile != "":
		b, err = os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	default:
		return nil, errors.New("missing Google credentials (set service account variables, or GOOGLE_OAUTH_CLIENT_JSON/GOOGLE_OAUTH_CLIENT_FILE with a token from oauth-init)")
	}

	cfg, err := oauthgoogle.ConfigFromJSON(b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client config: %w", err)
	}

	tokenFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"))
	if tokenFile == "" {
		tokenFile = "token.json"
	}
	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file %s (run oauth-init first): %w", tokenFile, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("parse oauth token file %s: %w", tokenFile, err)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithTokenSource(cfg.TokenSource(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// UpsertMovement writes the movement to its register row, appending a
// new row when the ID is not in the sheet yet.
func (c *Client) UpsertMovement(ctx context.Context, m core.Movement) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	idx, err := c.findRow(ctx, m.ID)
	if err != nil {
		return err
	}

	row := rowValues(m)
	if idx >= 0 {
		rng := fmt.Sprintf("%s!A%d:L%d", c.sheetName, idx+1, idx+1)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng,
			&gsheet.ValueRange{Values: [][]any{row}}).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update register row %s: %w", rng, err)
		}
		slog.InfoContext(ctx, "Register row updated", "id", m.ID, "range", rng)
		return nil
	}

	rng := fmt.Sprintf("%s!A:L", c.sheetName)
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng,
		&gsheet.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append register row: %w", err)
	}
	slog.InfoContext(ctx, "Register row appended", "id", m.ID)
	return nil
}

// DeleteMovement removes the register row of the movement. A missing
// row is not an error; the register already reflects the deletion.
func (c *Client) DeleteMovement(ctx context.Context, id int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	idx, err := c.findRow(ctx, id)
	if err != nil {
		return err
	}
	if idx < 0 {
		slog.WarnContext(ctx, "Register row already absent", "id", id)
		return nil
	}

	sheetID, err := c.resolveSheetID(ctx)
	if err != nil {
		return err
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(idx),
					EndIndex:   int64(idx + 1),
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("delete register row: %w", err)
	}

	slog.InfoContext(ctx, "Register row deleted", "id", id, "row", idx+1)
	return nil
}

// findRow returns the zero-based row index of the movement in the
// register, or -1 when absent.
func (c *Client) findRow(ctx context.Context, id int64) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read register ids: %w", err)
	}
	return findRowIndex(resp.Values, id), nil
}

// findRowIndex scans the ID column for the movement. Row 0 is the
// header and never matches.
func findRowIndex(values [][]any, id int64) int {
	for i, row := range values {
		if i == 0 || len(row) == 0 {
			continue
		}
		raw := strings.TrimSpace(fmt.Sprint(row[0]))
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		if parsed == id {
			return i
		}
	}
	return -1
}

// rowValues lays out one register row, columns A through L.
func rowValues(m core.Movement) []any {
	acknowledged := "Non"
	if m.Acknowledged {
		acknowledged = "Oui"
	}
	return []any{
		m.ID,
		m.Type.Label(),
		m.LastName,
		m.FirstName,
		m.EmployeeNumber,
		m.JobTitle,
		m.ContractKind,
		m.Department,
		m.EffectiveDate.Format("02/01/2006"),
		m.MonthKey,
		acknowledged,
		m.Note,
	}
}

func (c *Client) resolveSheetID(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolved {
		return c.sheetID, nil
	}

	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	for _, s := range resp.Sheets {
		if s.Properties != nil && s.Properties.Title == c.sheetName {
			c.sheetID = s.Properties.SheetId
			c.resolved = true
			return c.sheetID, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheetName)
}
