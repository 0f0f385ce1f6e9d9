package rowstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsConfig identifica a planilha e a conta de serviço.
type SheetsConfig struct {
	SpreadsheetID       string
	ServiceAccountEmail string
	PrivateKey          string
	CredentialsFile     string
}

// Sheets usa uma planilha do Google como banco. A RowRef é o número da linha
// na aba (a linha 1 é o cabeçalho), então remoções deslocam as referências
// seguintes.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// NewSheets autentica com a conta de serviço e cria o cliente da API.
func NewSheets(ctx context.Context, cfg SheetsConfig, extra ...option.ClientOption) (*Sheets, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("planilha: GOOGLE_SHEET_ID não configurado")
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.ServiceAccountEmail != "" && cfg.PrivateKey != "":
		creds, err := serviceAccountJSON(cfg.ServiceAccountEmail, cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentialsJSON(creds))
	}
	opts = append(opts, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("planilha: criar cliente: %w", err)
	}
	return &Sheets{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheetIDs: make(map[string]int64)}, nil
}

func serviceAccountJSON(email, privateKey string) ([]byte, error) {
	return json.Marshal(map[string]string{
		"type":         "service_account",
		"client_email": email,
		"private_key":  privateKey,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
}

// a1 monta a notação A1 com o nome da aba entre aspas simples.
func a1(table, cells string) string {
	return "'" + strings.ReplaceAll(table, "'", "''") + "'!" + cells
}

func (s *Sheets) ReadRows(ctx context.Context, table string) (*Table, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, a1(table, "A1:ZZ")).Context(ctx).Do()
	if err != nil {
		return nil, wrap("read", table, err)
	}
	return tableFromValues(resp.Values), nil
}

func tableFromValues(values [][]interface{}) *Table {
	t := &Table{}
	if len(values) == 0 {
		return t
	}
	t.Columns = cellStrings(values[0])
	for i, raw := range values[1:] {
		cells := cellStrings(raw)
		row := Row{Ref: RowRef(i + 2), Values: make(map[string]string, len(t.Columns))}
		for j, column := range t.Columns {
			if j < len(cells) {
				row.Values[column] = cells[j]
			} else {
				row.Values[column] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func cellStrings(raw []interface{}) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func rowValues(cells []string) [][]interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return [][]interface{}{row}
}

func (s *Sheets) headers(ctx context.Context, table string) ([]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, a1(table, "1:1")).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return cellStrings(resp.Values[0]), nil
}

func (s *Sheets) writeHeaders(ctx context.Context, table string, columns []string) error {
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, a1(table, "A1"), &sheets.ValueRange{Values: rowValues(columns)}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (s *Sheets) AppendRow(ctx context.Context, table string, values map[string]string, fallbackColumns []string) error {
	columns, err := s.headers(ctx, table)
	if err != nil {
		return wrap("append", table, err)
	}
	if len(columns) == 0 {
		if len(fallbackColumns) == 0 {
			return wrap("append", table, errors.New("aba sem cabeçalho"))
		}
		if err := s.writeHeaders(ctx, table, fallbackColumns); err != nil {
			return wrap("append", table, err)
		}
		columns = fallbackColumns
	}

	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, a1(table, "A1"), &sheets.ValueRange{Values: rowValues(orderedValues(columns, values))}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return wrap("append", table, err)
}

func (s *Sheets) UpdateRow(ctx context.Context, table string, ref RowRef, values map[string]string) error {
	if ref < 2 {
		return wrap("update", table, ErrRowNotFound)
	}
	columns, err := s.headers(ctx, table)
	if err != nil {
		return wrap("update", table, err)
	}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, a1(table, fmt.Sprintf("A%d", ref)), &sheets.ValueRange{Values: rowValues(orderedValues(columns, values))}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return wrap("update", table, err)
}

func (s *Sheets) DeleteRow(ctx context.Context, table string, ref RowRef) error {
	if ref < 2 {
		return wrap("delete", table, ErrRowNotFound)
	}
	sheetID, err := s.sheetID(ctx, table)
	if err != nil {
		return wrap("delete", table, err)
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(ref) - 1,
					EndIndex:   int64(ref),
				},
			},
		}},
	}
	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	return wrap("delete", table, err)
}

func (s *Sheets) sheetID(ctx context.Context, table string) (int64, error) {
	s.mu.Lock()
	id, ok := s.sheetIDs[table]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range doc.Sheets {
		if sh.Properties == nil {
			continue
		}
		s.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
	}
	id, ok = s.sheetIDs[table]
	if !ok {
		return 0, fmt.Errorf("aba %q não existe", table)
	}
	return id, nil
}

func (s *Sheets) EnsureColumn(ctx context.Context, table, column string) error {
	columns, err := s.headers(ctx, table)
	if err != nil {
		return wrap("ensure_column", table, err)
	}
	for _, c := range columns {
		if c == column {
			return nil
		}
	}
	return wrap("ensure_column", table, s.writeHeaders(ctx, table, append(columns, column)))
}
