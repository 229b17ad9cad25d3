package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"padel-app/internal/apperr"
	"padel-app/internal/model"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// ReadCSV reads pair names from r. A row holds either one column with the
// pair name or two columns with the players. A leading header row is skipped.
func ReadCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Validationf("invalid_csv", "read csv: %v", err)
	}
	return pairsFromRows(records)
}

func pairsFromRows(rows [][]string) ([]string, error) {
	var out []string
	for i, row := range rows {
		cells := trimRow(row)
		if len(cells) == 0 {
			continue
		}
		if i == 0 && isHeader(cells) {
			continue
		}
		switch len(cells) {
		case 1:
			out = append(out, cells[0])
		case 2:
			out = append(out, model.PairName(cells[0], cells[1]))
		default:
			return nil, apperr.Validationf("invalid_row", "row %d has %d columns, want 1 or 2", i+1, len(cells))
		}
	}
	if len(out) == 0 {
		return nil, apperr.Validation("no_pairs", "no pairs found")
	}
	return out, nil
}

// trimRow drops trailing empty cells.
func trimRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func isHeader(cells []string) bool {
	switch strings.ToLower(cells[0]) {
	case "name", "pair", "pareja", "player1", "player 1", "jugador1":
		return true
	}
	return false
}

// SheetSource reads pairs from a Google Sheets range.
type SheetSource struct {
	srv *sheetsv4.Service
}

func NewSheetSource(ctx context.Context, credentialsFile string) (*SheetSource, error) {
	if credentialsFile == "" {
		return nil, errors.New("google credentials file is not configured")
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsv4.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &SheetSource{srv: srv}, nil
}

// Pairs reads readRange (for example "Pairs!A:B") from the spreadsheet.
func (s *SheetSource) Pairs(ctx context.Context, spreadsheetID, readRange string) ([]string, error) {
	if readRange == "" {
		readRange = "A:B"
	}
	resp, err := s.srv.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, apperr.Collaborator("read spreadsheet", err)
	}
	return pairsFromRows(sheetRows(resp.Values))
}

func sheetRows(values [][]interface{}) [][]string {
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		row := make([]string, 0, len(v))
		for _, cell := range v {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows
}
