package rowstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/atendimento/internal/db"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS planilha_abas (
	aba     TEXT PRIMARY KEY,
	colunas TEXT[] NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS planilha_linhas (
	id    BIGSERIAL PRIMARY KEY,
	aba   TEXT NOT NULL,
	dados JSONB NOT NULL DEFAULT '{}'::jsonb
);
CREATE INDEX IF NOT EXISTS planilha_linhas_aba_idx ON planilha_linhas (aba, id);
`

// Postgres emula as abas em tabelas genéricas para ambientes sem acesso ao
// Google. A RowRef é o id da linha e não muda com remoções.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres cria as tabelas de apoio caso não existam.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, wrap("schema", "", err)
	}
	return &Postgres{pool: pool}, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func columnsOf(ctx context.Context, q querier, table string, lock bool) ([]string, error) {
	query := `SELECT colunas FROM planilha_abas WHERE aba = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var columns []string
	err := q.QueryRow(ctx, query, table).Scan(&columns)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return columns, err
}

func filterValues(columns []string, values map[string]string) map[string]string {
	out := make(map[string]string, len(columns))
	for _, c := range columns {
		out[c] = values[c]
	}
	return out
}

func (p *Postgres) ReadRows(ctx context.Context, table string) (*Table, error) {
	columns, err := columnsOf(ctx, p.pool, table, false)
	if err != nil {
		return nil, wrap("read", table, err)
	}

	rows, err := p.pool.Query(ctx, `SELECT id, dados FROM planilha_linhas WHERE aba = $1 ORDER BY id`, table)
	if err != nil {
		return nil, wrap("read", table, err)
	}
	defer rows.Close()

	t := &Table{Columns: columns}
	for rows.Next() {
		var (
			id   int64
			data map[string]string
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, wrap("read", table, err)
		}
		t.Rows = append(t.Rows, Row{Ref: RowRef(id), Values: filterValues(columns, data)})
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("read", table, err)
	}
	return t, nil
}

func (p *Postgres) AppendRow(ctx context.Context, table string, values map[string]string, fallbackColumns []string) error {
	err := db.WithTx(ctx, p.pool, func(ctx context.Context, tx pgx.Tx) error {
		columns, err := columnsOf(ctx, tx, table, true)
		if err != nil {
			return err
		}
		if len(columns) == 0 {
			if len(fallbackColumns) == 0 {
				return errors.New("aba sem cabeçalho")
			}
			columns = fallbackColumns
			_, err := tx.Exec(ctx, `
				INSERT INTO planilha_abas (aba, colunas) VALUES ($1, $2)
				ON CONFLICT (aba) DO UPDATE SET colunas = EXCLUDED.colunas`, table, columns)
			if err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `INSERT INTO planilha_linhas (aba, dados) VALUES ($1, $2)`, table, filterValues(columns, values))
		return err
	})
	return wrap("append", table, err)
}

func (p *Postgres) UpdateRow(ctx context.Context, table string, ref RowRef, values map[string]string) error {
	columns, err := columnsOf(ctx, p.pool, table, false)
	if err != nil {
		return wrap("update", table, err)
	}
	tag, err := p.pool.Exec(ctx, `UPDATE planilha_linhas SET dados = $3 WHERE aba = $1 AND id = $2`,
		table, int64(ref), filterValues(columns, values))
	if err != nil {
		return wrap("update", table, err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("update", table, ErrRowNotFound)
	}
	return nil
}

func (p *Postgres) DeleteRow(ctx context.Context, table string, ref RowRef) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM planilha_linhas WHERE aba = $1 AND id = $2`, table, int64(ref))
	if err != nil {
		return wrap("delete", table, err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("delete", table, ErrRowNotFound)
	}
	return nil
}

func (p *Postgres) EnsureColumn(ctx context.Context, table, column string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO planilha_abas (aba, colunas) VALUES ($1, ARRAY[$2::text])
		ON CONFLICT (aba) DO UPDATE SET colunas = planilha_abas.colunas || EXCLUDED.colunas
		WHERE NOT ($2::text = ANY(planilha_abas.colunas))`, table, column)
	return wrap("ensure_column", table, err)
}
