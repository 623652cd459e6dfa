package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/domain/repository"
)

// TableName table holding the exported rows
const TableName = "report"

// numeric columns of entity.DisplayColumns, by position
var sqliteTypes = map[int]string{5: "INTEGER", 6: "REAL", 7: "REAL", 8: "REAL"}

type sqliteExporter struct {
	tmpDir string
}

// NewSQLiteExporter writes the rows into a throwaway database file under
// tmpDir ("" = os.TempDir) and returns the file bytes
func NewSQLiteExporter(tmpDir string) repository.Exporter {
	return &sqliteExporter{tmpDir: tmpDir}
}

func (s *sqliteExporter) Extension() string   { return "sqlite" }
func (s *sqliteExporter) ContentType() string { return "application/vnd.sqlite3" }

func (s *sqliteExporter) Export(ctx context.Context, rows []entity.JoinedRecord) ([]byte, error) {
	tmp, err := os.CreateTemp(s.tmpDir, "report-*.sqlite")
	if err != nil {
		return nil, eris.Wrap(err, "failed to create temp database")
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, eris.Wrap(err, "failed to open sqlite")
	}
	if err := writeReportTable(ctx, db, rows); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Close(); err != nil {
		return nil, eris.Wrap(err, "failed to close sqlite")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read database file")
	}
	return data, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func createReportSchema(ctx context.Context, db *sql.DB) error {
	cols := make([]string, len(entity.DisplayColumns))
	for i, name := range entity.DisplayColumns {
		typ, ok := sqliteTypes[i]
		if !ok {
			typ = "TEXT"
		}
		cols[i] = quoteIdent(name) + " " + typ
	}
	schema := fmt.Sprintf("CREATE TABLE %s (%s)", TableName, strings.Join(cols, ", "))
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return eris.Wrap(err, "failed to create report table")
	}
	return nil
}

func writeReportTable(ctx context.Context, db *sql.DB, rows []entity.JoinedRecord) error {
	if err := createReportSchema(ctx, db); err != nil {
		return err
	}

	quoted := make([]string, len(entity.DisplayColumns))
	marks := make([]string, len(entity.DisplayColumns))
	for i, name := range entity.DisplayColumns {
		quoted[i] = quoteIdent(name)
		marks[i] = "?"
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		TableName, strings.Join(quoted, ", "), strings.Join(marks, ", "))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "failed to begin transaction")
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		tx.Rollback()
		return eris.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, sqliteArgs(r)...); err != nil {
			tx.Rollback()
			return eris.Wrapf(err, "failed to insert row %d", i+1)
		}
	}
	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "failed to commit report rows")
	}
	return nil
}

// sqliteArgs display cells with missing values as NULL
func sqliteArgs(r entity.JoinedRecord) []any {
	cells := r.DisplayCells()
	for i, c := range cells {
		if _, numeric := sqliteTypes[i]; numeric && c == "" {
			cells[i] = nil
		}
	}
	return cells
}
