package rowstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestTableFromValues(t *testing.T) {
	tbl := tableFromValues([][]interface{}{
		{"ID", "Assunto", "Finalizado"},
		{"EAL000001/2025", " Email "},
		{},
	})

	assert.Equal(t, []string{"ID", "Assunto", "Finalizado"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, RowRef(2), tbl.Rows[0].Ref)
	assert.Equal(t, "Email", tbl.Rows[0].Get("Assunto"))
	assert.Equal(t, "", tbl.Rows[0].Get("Finalizado"))
	assert.Equal(t, RowRef(3), tbl.Rows[1].Ref)
}

func TestTableFromValuesEmpty(t *testing.T) {
	tbl := tableFromValues(nil)
	assert.Empty(t, tbl.Columns)
	assert.Empty(t, tbl.Rows)
}

func TestA1QuotesSheetName(t *testing.T) {
	assert.Equal(t, "'Registro de Demandas'!A1:ZZ", a1("Registro de Demandas", "A1:ZZ"))
	assert.Equal(t, "'D''Ávila'!1:1", a1("D'Ávila", "1:1"))
}

type fakeSheetsAPI struct {
	header   []interface{}
	rows     [][]interface{}
	appended [][]interface{}
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "!1:1"):
		_ = json.NewEncoder(w).Encode(map[string]any{"values": [][]interface{}{f.header}})
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "!A1:ZZ"):
		values := append([][]interface{}{f.header}, f.rows...)
		_ = json.NewEncoder(w).Encode(map[string]any{"values": values})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.appended = append(f.appended, body.Values...)
		_, _ = w.Write([]byte(`{}`))
	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func newFakeSheets(t *testing.T, api *fakeSheetsAPI) *Sheets {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	s, err := NewSheets(context.Background(), SheetsConfig{SpreadsheetID: "planilha-teste"},
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return s
}

func TestSheetsReadRows(t *testing.T) {
	api := &fakeSheetsAPI{
		header: []interface{}{"Atendente", "Ramal"},
		rows:   [][]interface{}{{"Ana", "1234"}},
	}
	s := newFakeSheets(t, api)

	tbl, err := s.ReadRows(context.Background(), "Perfil")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "1234", tbl.Rows[0].Get("Ramal"))
}

func TestSheetsAppendOrdersByHeader(t *testing.T) {
	api := &fakeSheetsAPI{header: []interface{}{"Atendente", "Ramal", "Ativo"}}
	s := newFakeSheets(t, api)

	err := s.AppendRow(context.Background(), "Perfil", map[string]string{"Ativo": "Sim", "Atendente": "Ana"}, nil)
	require.NoError(t, err)
	require.Len(t, api.appended, 1)
	assert.Equal(t, []interface{}{"Ana", "", "Sim"}, api.appended[0])
}

func TestNewSheetsRequiresSpreadsheetID(t *testing.T) {
	_, err := NewSheets(context.Background(), SheetsConfig{})
	assert.Error(t, err)
}
