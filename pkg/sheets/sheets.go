package sheets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	defaultMaxRetries = 15
	defaultMaxBackoff = 60 * time.Second
)

// SheetClient is a Store backed by one Google spreadsheet.
type SheetClient struct {
	service       *sheets.Service
	spreadsheetID string
	limiter       *rate.Limiter

	maxRetries  int
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

// NewSheetClient authenticates with the service account key at jsonPath.
// requestsPerMinute paces every call made by the client; zero disables
// pacing.
func NewSheetClient(ctx context.Context, jsonPath, spreadsheetID string, requestsPerMinute int) (*SheetClient, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(jsonPath),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}
	return newSheetClient(srv, spreadsheetID, requestsPerMinute), nil
}

func newSheetClient(srv *sheets.Service, spreadsheetID string, requestsPerMinute int) *SheetClient {
	limit := rate.Inf
	burst := 1
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
		burst = requestsPerMinute
	}
	return &SheetClient{
		service:       srv,
		spreadsheetID: spreadsheetID,
		limiter:       rate.NewLimiter(limit, burst),
		maxRetries:    defaultMaxRetries,
		baseBackoff:   time.Second,
		maxBackoff:    defaultMaxBackoff,
	}
}

// Get reads every populated row of tab. Cells come back as their
// formatted strings.
func (s *SheetClient) Get(ctx context.Context, tab string) ([][]string, error) {
	var resp *sheets.ValueRange
	err := s.withBackoff(ctx, "read "+tab, func() error {
		var err error
		resp, err = s.service.Spreadsheets.Values.Get(s.spreadsheetID, QuoteTab(tab)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

// BatchUpdateCells applies all writes in a single values.batchUpdate call.
func (s *SheetClient) BatchUpdateCells(ctx context.Context, writes []CellWrite) error {
	if len(writes) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, len(writes))
	for i, w := range writes {
		data[i] = &sheets.ValueRange{
			Range:  w.Range,
			Values: [][]interface{}{toInterfaces(w.Values)},
		}
	}
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}
	return s.withBackoff(ctx, "batch update", func() error {
		_, err := s.service.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
		return err
	})
}

// AppendRows inserts rows after the last populated row of tab.
func (s *SheetClient) AppendRows(ctx context.Context, tab string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = toInterfaces(row)
	}
	return s.withBackoff(ctx, "append "+tab, func() error {
		_, err := s.service.Spreadsheets.Values.Append(
			s.spreadsheetID,
			QuoteTab(tab),
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		return err
	})
}

// EnsureTab adds tab to the spreadsheet if it is missing and writes header
// into row 1 when the tab has no rows yet.
func (s *SheetClient) EnsureTab(ctx context.Context, tab string, header []string) error {
	var ss *sheets.Spreadsheet
	err := s.withBackoff(ctx, "get spreadsheet", func() error {
		var err error
		ss, err = s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return err
	}
	found := false
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == tab {
			found = true
			break
		}
	}
	if !found {
		log.Infof("Creating tab %s", tab)
		addSheetReq := &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab},
			},
		}
		err = s.withBackoff(ctx, "add tab "+tab, func() error {
			_, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
				Requests: []*sheets.Request{addSheetReq},
			}).Context(ctx).Do()
			return err
		})
		if err != nil {
			return err
		}
	}

	rows, err := s.Get(ctx, tab)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}
	rng, err := RangeAddress(tab, 1, 0, len(header)-1)
	if err != nil {
		return err
	}
	return s.withBackoff(ctx, "write header "+tab, func() error {
		_, err := s.service.Spreadsheets.Values.Update(
			s.spreadsheetID,
			rng,
			&sheets.ValueRange{Values: [][]interface{}{toInterfaces(header)}},
		).ValueInputOption("RAW").Context(ctx).Do()
		return err
	})
}

// withBackoff runs call, retrying with capped exponential backoff while the
// API reports rate limiting. Any other error is returned as is.
func (s *SheetClient) withBackoff(ctx context.Context, op string, call func() error) error {
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		err = call()
		if err == nil {
			return nil
		}
		if !isRateLimited(err) {
			return err
		}
		backoff := time.Duration(math.Pow(2, float64(attempt))) * s.baseBackoff
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
		log.WithFields(log.Fields{
			"op":      op,
			"attempt": attempt + 1,
		}).Warnf("Rate limited by Google Sheets API, retrying in %v...", backoff)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("%s: failed after %d retries: %w", op, s.maxRetries, err)
}

// isRateLimited reports whether err is a quota response worth retrying. A
// 403 only counts when the API says it is a rate limit; other 403s are
// permission errors.
func isRateLimited(err error) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}
	switch gErr.Code {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		for _, item := range gErr.Errors {
			if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
				return true
			}
		}
	}
	return false
}

func toInterfaces(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
