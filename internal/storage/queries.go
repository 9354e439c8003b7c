package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db      DBTX
	dialect Dialect
	stmts   map[core.Kind]recordStatements
}

func New(db DBTX, d Dialect) *Queries {
	stmts := make(map[core.Kind]recordStatements, len(recordTables))
	for kind, table := range recordTables {
		stmts[kind] = table.statements(d)
	}
	return &Queries{db: db, dialect: d, stmts: stmts}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect, stmts: q.stmts}
}

type recordTable struct {
	name     string
	category string
}

var recordTables = map[core.Kind]recordTable{
	core.KindExpense: {name: "expenses", category: "category"},
	core.KindIncome:  {name: "incomes", category: "source"},
}

type recordStatements struct {
	list, get, create, update, delete, count string
}

func (t recordTable) statements(d Dialect) recordStatements {
	cols := fmt.Sprintf("id, description, amount, %s, date_created", t.category)
	return recordStatements{
		list: fmt.Sprintf(`SELECT %s FROM %s ORDER BY date_created DESC, id DESC`, cols, t.name),
		get:  d.Rebind(fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, cols, t.name)),
		create: d.Rebind(fmt.Sprintf(
			`INSERT INTO %s (description, amount, %s, date_created) VALUES (?, ?, ?, ?) RETURNING id`,
			t.name, t.category)),
		update: d.Rebind(fmt.Sprintf(
			`UPDATE %s SET description = ?, amount = ?, %s = ? WHERE id = ?`,
			t.name, t.category)),
		delete: d.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.name)),
		count:  fmt.Sprintf(`SELECT COUNT(*) FROM %s`, t.name),
	}
}

func (q *Queries) statementsFor(kind core.Kind) (recordStatements, error) {
	s, ok := q.stmts[kind]
	if !ok {
		return recordStatements{}, fmt.Errorf("%w: %q", core.ErrUnknownKind, kind)
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, kind core.Kind) (core.Record, error) {
	var (
		r        core.Record
		category sql.NullString
		created  time.Time
	)
	if err := row.Scan(&r.ID, &r.Description, &r.Amount, &category, &created); err != nil {
		return core.Record{}, err
	}
	r.Kind = kind
	r.Category = category.String
	r.DateCreated = created.UTC()
	return r, nil
}

// ListRecords returns every record of a kind, newest first.
func (q *Queries) ListRecords(ctx context.Context, kind core.Kind) ([]core.Record, error) {
	s, err := q.statementsFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx, s.list)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.Record
	for rows.Next() {
		r, err := scanRecord(rows, kind)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetRecord returns sql.ErrNoRows when no record has the id.
func (q *Queries) GetRecord(ctx context.Context, kind core.Kind, id int64) (core.Record, error) {
	s, err := q.statementsFor(kind)
	if err != nil {
		return core.Record{}, err
	}
	return scanRecord(q.db.QueryRowContext(ctx, s.get, id), kind)
}

type CreateRecordParams struct {
	Kind        core.Kind
	Description string
	Amount      float64
	Category    string
	DateCreated time.Time
}

func (q *Queries) CreateRecord(ctx context.Context, arg CreateRecordParams) (int64, error) {
	s, err := q.statementsFor(arg.Kind)
	if err != nil {
		return 0, err
	}

	var id int64
	err = q.db.QueryRowContext(ctx, s.create,
		arg.Description,
		arg.Amount,
		arg.Category,
		arg.DateCreated,
	).Scan(&id)
	return id, err
}

type UpdateRecordParams struct {
	Kind        core.Kind
	ID          int64
	Description string
	Amount      float64
	Category    string
}

// UpdateRecord returns the number of affected rows.
func (q *Queries) UpdateRecord(ctx context.Context, arg UpdateRecordParams) (int64, error) {
	s, err := q.statementsFor(arg.Kind)
	if err != nil {
		return 0, err
	}

	result, err := q.db.ExecContext(ctx, s.update,
		arg.Description,
		arg.Amount,
		arg.Category,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteRecord returns the number of affected rows.
func (q *Queries) DeleteRecord(ctx context.Context, kind core.Kind, id int64) (int64, error) {
	s, err := q.statementsFor(kind)
	if err != nil {
		return 0, err
	}

	result, err := q.db.ExecContext(ctx, s.delete, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (q *Queries) CountRecords(ctx context.Context, kind core.Kind) (int64, error) {
	s, err := q.statementsFor(kind)
	if err != nil {
		return 0, err
	}

	var n int64
	err = q.db.QueryRowContext(ctx, s.count).Scan(&n)
	return n, err
}
