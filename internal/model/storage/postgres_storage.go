package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	// postgres driver
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mission-budget/spender/internal/entity/budget"
	"github.com/mission-budget/spender/internal/logger"
	"github.com/mission-budget/spender/internal/model/customerr"
)

const dsnTemplate = "user=%s password=%s host=%s dbname=%s sslmode=disable"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type config interface {
	Host() string
	Username() string
	Password() string
	Database() string
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config config) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", fmt.Sprintf(dsnTemplate,
		config.Username(),
		config.Password(),
		config.Host(),
		config.Database()))
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = migrateUp(db); err != nil {
		return nil, errors.Wrap(err, "cannot migrate database")
	}
	return &PostgresStorage{db}, nil
}

func rollback(tx *sql.Tx) {
	err := tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Error("transaction rollback", zap.Error(err))
	}
}

// ActiveGoal returns the single visible goal, nil when none exists.
func (s *PostgresStorage) ActiveGoal(ctx context.Context) (*budget.Goal, error) {
	query := psql.Select("id", "target_amount", "deadline", "monthly_income",
		"emi", "rent", "clothing_cap", "initial_savings", "created_at").
		From("goals").
		OrderBy("id DESC").
		Limit(1)

	var g budget.Goal
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&g.ID, &g.TargetAmount,
		&g.Deadline, &g.MonthlyIncome, &g.EMI, &g.Rent, &g.ClothingCap,
		&g.InitialSavings, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get goal")
	}
	g.Deadline = budget.DateOf(g.Deadline)
	return &g, nil
}

// ReplaceGoal removes every previous goal and inserts the new one in
// the same transaction; the table never holds more than one row.
func (s *PostgresStorage) ReplaceGoal(ctx context.Context, g budget.Goal) (budget.Goal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return budget.Goal{}, errors.Wrap(err, "replace goal")
	}
	defer rollback(tx)

	_, err = psql.Delete("goals").RunWith(tx).ExecContext(ctx)
	if err != nil {
		return budget.Goal{}, errors.Wrap(err, "replace goal")
	}

	query := psql.Insert("goals").
		Columns("target_amount", "deadline", "monthly_income", "emi", "rent",
			"clothing_cap", "initial_savings", "created_at").
		Values(g.TargetAmount, g.Deadline, g.MonthlyIncome, g.EMI, g.Rent,
			g.ClothingCap, g.InitialSavings, g.CreatedAt).
		Suffix("RETURNING id")

	err = query.RunWith(tx).QueryRowContext(ctx).Scan(&g.ID)
	if err != nil {
		return budget.Goal{}, errors.Wrap(err, "replace goal")
	}
	if err = tx.Commit(); err != nil {
		return budget.Goal{}, errors.Wrap(err, "replace goal")
	}
	return g, nil
}

func (s *PostgresStorage) ExpenseByID(ctx context.Context, id int64) (budget.Expense, error) {
	query := psql.Select("id", "amount", "category", "spent_on", "note", "mood", "payment_mode").
		From("expenses").
		Where(sq.Eq{"id": id})

	e, err := scanExpense(query.RunWith(s.db).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return budget.Expense{}, &customerr.NotFoundError{Entity: "expense", ID: id}
	}
	if err != nil {
		return budget.Expense{}, errors.Wrap(err, "get expense")
	}
	return e, nil
}

func (s *PostgresStorage) ListExpenses(ctx context.Context) ([]budget.Expense, error) {
	query := psql.Select("id", "amount", "category", "spent_on", "note", "mood", "payment_mode").
		From("expenses").
		OrderBy("spent_on DESC", "id DESC")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list expenses")
	}
	defer closeRows(rows)

	exps := make([]budget.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, errors.Wrap(err, "list expenses")
		}
		exps = append(exps, e)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list expenses")
	}
	return exps, nil
}

// AddExpense commits the expense row, the weekly-envelope increment and
// the optional ledger debit as one unit. The week row is created with
// the caller's defaults only when absent; an existing row keeps its
// frozen cap.
func (s *PostgresStorage) AddExpense(ctx context.Context, exp budget.Expense, week budget.WeeklyLimit, debit *budget.LedgerEntry) (budget.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return budget.Expense{}, errors.Wrap(err, "save expense")
	}
	defer rollback(tx)

	query := psql.Insert("expenses").
		Columns("amount", "category", "spent_on", "note", "mood", "payment_mode").
		Values(exp.Amount, exp.Category, exp.Date, nullable(exp.Note), nullable(string(exp.Mood)),
			exp.PaymentMode.OrDefault()).
		Suffix("RETURNING id")
	if err = query.RunWith(tx).QueryRowContext(ctx).Scan(&exp.ID); err != nil {
		return budget.Expense{}, errors.Wrap(err, "save expense")
	}

	if err = ensureWeek(ctx, tx, week); err != nil {
		return budget.Expense{}, errors.Wrap(err, "save expense")
	}

	update := psql.Update("weekly_limits").
		Set("spent_this_week", sq.Expr("spent_this_week + ?", exp.Amount)).
		Where(sq.Eq{"week_start_date": week.WeekStart})
	if _, err = update.RunWith(tx).ExecContext(ctx); err != nil {
		return budget.Expense{}, errors.Wrap(err, "save expense")
	}

	if debit != nil {
		if _, err = appendEntry(ctx, tx, *debit); err != nil {
			return budget.Expense{}, errors.Wrap(err, "save expense")
		}
	}

	if err = tx.Commit(); err != nil {
		return budget.Expense{}, errors.Wrap(err, "save expense")
	}
	return exp, nil
}

// DeleteExpense removes the row and reverses its side effects in one
// transaction: the amount leaves the week of the expense's own date
// (floored at zero) and the compensating credit, when given, is
// appended. The original debit entry is never touched.
func (s *PostgresStorage) DeleteExpense(ctx context.Context, exp budget.Expense, credit *budget.LedgerEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}
	defer rollback(tx)

	res, err := psql.Delete("expenses").
		Where(sq.Eq{"id": exp.ID}).
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &customerr.NotFoundError{Entity: "expense", ID: exp.ID}
	}

	update := psql.Update("weekly_limits").
		Set("spent_this_week", sq.Expr("GREATEST(0, spent_this_week - ?)", exp.Amount)).
		Where(sq.Eq{"week_start_date": budget.WeekStartOf(exp.Date)})
	if _, err = update.RunWith(tx).ExecContext(ctx); err != nil {
		return errors.Wrap(err, "delete expense")
	}

	if credit != nil {
		if _, err = appendEntry(ctx, tx, *credit); err != nil {
			return errors.Wrap(err, "delete expense")
		}
	}

	return errors.Wrap(tx.Commit(), "delete expense")
}

func (s *PostgresStorage) WeeklyLimitAt(ctx context.Context, weekStart time.Time) (*budget.WeeklyLimit, error) {
	query := psql.Select("id", "week_start_date", "weekly_cap", "spent_this_week").
		From("weekly_limits").
		Where(sq.Eq{"week_start_date": weekStart})

	var wl budget.WeeklyLimit
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&wl.ID, &wl.WeekStart, &wl.Cap, &wl.Spent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get weekly limit")
	}
	wl.WeekStart = budget.DateOf(wl.WeekStart)
	return &wl, nil
}

// CreateWeeklyLimit is an idempotent create-or-fetch: two requests
// racing to create the same week both end up with the row the insert
// winner produced.
func (s *PostgresStorage) CreateWeeklyLimit(ctx context.Context, wl budget.WeeklyLimit) (budget.WeeklyLimit, error) {
	insert := psql.Insert("weekly_limits").
		Columns("week_start_date", "weekly_cap", "spent_this_week").
		Values(wl.WeekStart, wl.Cap, wl.Spent).
		Suffix("ON CONFLICT (week_start_date) DO NOTHING")
	if _, err := insert.RunWith(s.db).ExecContext(ctx); err != nil {
		return budget.WeeklyLimit{}, errors.Wrap(err, "create weekly limit")
	}

	created, err := s.WeeklyLimitAt(ctx, wl.WeekStart)
	if err != nil {
		return budget.WeeklyLimit{}, errors.Wrap(err, "create weekly limit")
	}
	if created == nil {
		return budget.WeeklyLimit{}, errors.New("create weekly limit: row vanished after upsert")
	}
	return *created, nil
}

func (s *PostgresStorage) ListWeeklyLimits(ctx context.Context) ([]budget.WeeklyLimit, error) {
	query := psql.Select("id", "week_start_date", "weekly_cap", "spent_this_week").
		From("weekly_limits").
		OrderBy("week_start_date ASC")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list weekly limits")
	}
	defer closeRows(rows)

	weeks := make([]budget.WeeklyLimit, 0)
	for rows.Next() {
		var wl budget.WeeklyLimit
		if err = rows.Scan(&wl.ID, &wl.WeekStart, &wl.Cap, &wl.Spent); err != nil {
			return nil, errors.Wrap(err, "list weekly limits")
		}
		wl.WeekStart = budget.DateOf(wl.WeekStart)
		weeks = append(weeks, wl)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list weekly limits")
	}
	return weeks, nil
}

func (s *PostgresStorage) SetWeeklyCap(ctx context.Context, weekStart time.Time, cap int64) error {
	query := psql.Update("weekly_limits").
		Set("weekly_cap", cap).
		Where(sq.Eq{"week_start_date": weekStart})
	_, err := query.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "set weekly cap")
}

func (s *PostgresStorage) AppendLedger(ctx context.Context, e budget.LedgerEntry) (budget.LedgerEntry, error) {
	id, err := appendEntry(ctx, s.db, e)
	if err != nil {
		return budget.LedgerEntry{}, errors.Wrap(err, "append ledger")
	}
	e.ID = id
	return e, nil
}

func (s *PostgresStorage) LastSet(ctx context.Context) (*budget.LedgerEntry, error) {
	query := psql.Select("id", "entry_type", "amount", "note", "recorded_at").
		From("balance_ledger").
		Where(sq.Eq{"entry_type": budget.EntrySet}).
		OrderBy("recorded_at DESC", "id DESC").
		Limit(1)

	e, err := scanEntry(query.RunWith(s.db).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "last set entry")
	}
	return &e, nil
}

func (s *PostgresStorage) LedgerAfter(ctx context.Context, t time.Time) ([]budget.LedgerEntry, error) {
	query := psql.Select("id", "entry_type", "amount", "note", "recorded_at").
		From("balance_ledger").
		Where(sq.Gt{"recorded_at": t}).
		OrderBy("recorded_at ASC", "id ASC")

	return s.queryEntries(ctx, query, "ledger after")
}

func (s *PostgresStorage) HasSet(ctx context.Context) (bool, error) {
	query := psql.Select("1").
		From("balance_ledger").
		Where(sq.Eq{"entry_type": budget.EntrySet}).
		Limit(1)

	var one int
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "has set entry")
	}
	return true, nil
}

func (s *PostgresStorage) RecentLedger(ctx context.Context, limit uint64) ([]budget.LedgerEntry, error) {
	query := psql.Select("id", "entry_type", "amount", "note", "recorded_at").
		From("balance_ledger").
		OrderBy("recorded_at DESC", "id DESC").
		Limit(limit)

	return s.queryEntries(ctx, query, "recent ledger")
}

func (s *PostgresStorage) queryEntries(ctx context.Context, query sq.SelectBuilder, op string) ([]budget.LedgerEntry, error) {
	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer closeRows(rows)

	entries := make([]budget.LedgerEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, op)
	}
	return entries, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanExpense(row scannable) (budget.Expense, error) {
	var e budget.Expense
	var note, mood sql.NullString
	var mode string
	err := row.Scan(&e.ID, &e.Amount, &e.Category, &e.Date, &note, &mood, &mode)
	if err != nil {
		return budget.Expense{}, err
	}
	e.Date = budget.DateOf(e.Date)
	e.Note = note.String
	e.Mood = budget.Mood(mood.String)
	e.PaymentMode = budget.PaymentMode(mode).OrDefault()
	return e, nil
}

func scanEntry(row scannable) (budget.LedgerEntry, error) {
	var e budget.LedgerEntry
	var note sql.NullString
	err := row.Scan(&e.ID, &e.Type, &e.Amount, &note, &e.RecordedAt)
	if err != nil {
		return budget.LedgerEntry{}, err
	}
	e.Note = note.String
	return e, nil
}

func appendEntry(ctx context.Context, runner sq.BaseRunner, e budget.LedgerEntry) (int64, error) {
	query := psql.Insert("balance_ledger").
		Columns("entry_type", "amount", "note", "recorded_at").
		Values(e.Type, e.Amount, nullable(e.Note), e.RecordedAt).
		Suffix("RETURNING id")

	var id int64
	err := query.RunWith(runner).QueryRowContext(ctx).Scan(&id)
	return id, err
}

func ensureWeek(ctx context.Context, tx *sql.Tx, week budget.WeeklyLimit) error {
	insert := psql.Insert("weekly_limits").
		Columns("week_start_date", "weekly_cap", "spent_this_week").
		Values(week.WeekStart, week.Cap, week.Spent).
		Suffix("ON CONFLICT (week_start_date) DO NOTHING")
	_, err := insert.RunWith(tx).ExecContext(ctx)
	return err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.Error("closing rows", zap.Error(err))
	}
}
