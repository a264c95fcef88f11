package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/openlive/faq-chatbot/internal/models"
)

// ErrSheetsRateLimited marks a 429 from the Sheets API.
var ErrSheetsRateLimited = errors.New("sheets: rate limit exceeded")

var sheetHeader = []any{"Timestamp", "Platform", "User ID", "Message", "Action", "Status", "Metadata"}

// SheetsConfig selects the spreadsheet and tab interaction rows go to.
type SheetsConfig struct {
	SpreadsheetID     string
	SheetName         string
	RequestsPerSecond float64
}

// SheetsInteractionRepository appends interaction rows to a Google Sheet.
// Writes are throttled client-side to stay under the API quota.
type SheetsInteractionRepository struct {
	srv     *sheets.Service
	id      string
	sheet   string
	limiter *rate.Limiter
}

// sheetMetadata is the JSON stored in the Metadata column.
type sheetMetadata struct {
	IP         string  `json:"ip,omitempty"`
	UserAgent  string  `json:"userAgent,omitempty"`
	QuestionID string  `json:"questionId,omitempty"`
	Score      float64 `json:"score,omitempty"`
	ID         string  `json:"id,omitempty"`
}

// NewSheetsInteractionRepository builds the Sheets client. opts carry the
// credentials (option.WithCredentialsFile in production).
func NewSheetsInteractionRepository(ctx context.Context, cfg SheetsConfig, opts ...option.ClientOption) (*SheetsInteractionRepository, error) {
	if cfg.SheetName == "" {
		cfg.SheetName = "Interactions"
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}

	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	return &SheetsInteractionRepository{
		srv:     srv,
		id:      cfg.SpreadsheetID,
		sheet:   cfg.SheetName,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 5),
	}, nil
}

func (r *SheetsInteractionRepository) Name() string { return "sheets" }

func (r *SheetsInteractionRepository) columns() string { return r.sheet + "!A:G" }

// EnsureHeader writes the header row when the sheet is empty.
func (r *SheetsInteractionRepository) EnsureHeader(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	resp, err := r.srv.Spreadsheets.Values.Get(r.id, r.sheet+"!A1:G1").Context(ctx).Do()
	if err != nil {
		return classify(err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	log.Printf("[Sheets Repository] Writing header row to %s", r.sheet)
	return r.append(ctx, sheetHeader)
}

// Append adds rec as one row.
func (r *SheetsInteractionRepository) Append(ctx context.Context, rec models.InteractionRecord) error {
	meta, err := json.Marshal(sheetMetadata{
		ID:         rec.ID,
		IP:         rec.Metadata.IP,
		UserAgent:  rec.Metadata.UserAgent,
		QuestionID: rec.QuestionID,
		Score:      rec.Score,
	})
	if err != nil {
		return err
	}

	return r.append(ctx, []any{
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.Platform,
		rec.UserID,
		rec.Message,
		rec.Action,
		rec.Status,
		string(meta),
	})
}

func (r *SheetsInteractionRepository) append(ctx context.Context, row []any) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	vr := &sheets.ValueRange{Values: [][]any{row}}
	_, err := r.srv.Spreadsheets.Values.Append(r.id, r.columns(), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return classify(err)
}

// Recent returns up to limit rows, newest first. The header row is skipped.
func (r *SheetsInteractionRepository) Recent(ctx context.Context, limit int) ([]models.InteractionRecord, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := r.srv.Spreadsheets.Values.Get(r.id, r.columns()).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}

	rows := resp.Values
	if len(rows) > 0 && cell(rows[0], 0) == "Timestamp" {
		rows = rows[1:]
	}

	out := []models.InteractionRecord{}
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, parseRow(rows[i]))
	}
	return out, nil
}

func parseRow(row []any) models.InteractionRecord {
	rec := models.InteractionRecord{
		Platform: cell(row, 1),
		UserID:   cell(row, 2),
		Message:  cell(row, 3),
		Action:   cell(row, 4),
		Status:   cell(row, 5),
	}
	rec.Timestamp, _ = time.Parse(time.RFC3339, cell(row, 0))

	var meta sheetMetadata
	if raw := cell(row, 6); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err == nil {
			rec.ID = meta.ID
			rec.QuestionID = meta.QuestionID
			rec.Score = meta.Score
			rec.Metadata = models.InteractionSource{IP: meta.IP, UserAgent: meta.UserAgent}
		}
	}
	return rec
}

func cell(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return s
}

func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ErrSheetsRateLimited, err)
	}
	return err
}
