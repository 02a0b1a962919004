package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mission-budget/spender/internal/entity/budget"
	"github.com/mission-budget/spender/internal/model/customerr"
)

// InMemStorage mirrors PostgresStorage over plain slices. It backs
// local runs without a database and every engine test.
type InMemStorage struct {
	mu sync.Mutex

	goal    *budget.Goal
	exps    []budget.Expense
	weeks   []budget.WeeklyLimit
	entries []budget.LedgerEntry
	nextID  int64
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{nextID: 1}
}

func (s *InMemStorage) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *InMemStorage) ActiveGoal(_ context.Context) (*budget.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.goal == nil {
		return nil, nil
	}
	g := *s.goal
	return &g, nil
}

func (s *InMemStorage) ReplaceGoal(_ context.Context, g budget.Goal) (budget.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.id()
	s.goal = &g
	return g, nil
}

func (s *InMemStorage) ExpenseByID(_ context.Context, id int64) (budget.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.exps {
		if e.ID == id {
			return e, nil
		}
	}
	return budget.Expense{}, &customerr.NotFoundError{Entity: "expense", ID: id}
}

func (s *InMemStorage) ListExpenses(_ context.Context) ([]budget.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]budget.Expense, len(s.exps))
	copy(res, s.exps)
	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.After(res[j].Date)
		}
		return res[i].ID > res[j].ID
	})
	return res, nil
}

func (s *InMemStorage) AddExpense(_ context.Context, exp budget.Expense, week budget.WeeklyLimit, debit *budget.LedgerEntry) (budget.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp.ID = s.id()
	exp.PaymentMode = exp.PaymentMode.OrDefault()
	s.exps = append(s.exps, exp)

	idx := s.ensureWeek(week)
	s.weeks[idx].Spent += exp.Amount

	if debit != nil {
		s.append(*debit)
	}
	return exp, nil
}

func (s *InMemStorage) DeleteExpense(_ context.Context, exp budget.Expense, credit *budget.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i, e := range s.exps {
		if e.ID == exp.ID {
			s.exps = append(s.exps[:i], s.exps[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return &customerr.NotFoundError{Entity: "expense", ID: exp.ID}
	}

	weekStart := budget.WeekStartOf(exp.Date)
	for i := range s.weeks {
		if s.weeks[i].WeekStart.Equal(weekStart) {
			s.weeks[i].Spent -= exp.Amount
			if s.weeks[i].Spent < 0 {
				s.weeks[i].Spent = 0
			}
			break
		}
	}

	if credit != nil {
		s.append(*credit)
	}
	return nil
}

func (s *InMemStorage) WeeklyLimitAt(_ context.Context, weekStart time.Time) (*budget.WeeklyLimit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.weeks {
		if w.WeekStart.Equal(weekStart) {
			wl := w
			return &wl, nil
		}
	}
	return nil, nil
}

func (s *InMemStorage) CreateWeeklyLimit(_ context.Context, wl budget.WeeklyLimit) (budget.WeeklyLimit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weeks[s.ensureWeek(wl)], nil
}

func (s *InMemStorage) ListWeeklyLimits(_ context.Context) ([]budget.WeeklyLimit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]budget.WeeklyLimit, len(s.weeks))
	copy(res, s.weeks)
	sort.Slice(res, func(i, j int) bool {
		return res[i].WeekStart.Before(res[j].WeekStart)
	})
	return res, nil
}

func (s *InMemStorage) SetWeeklyCap(_ context.Context, weekStart time.Time, cap int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.weeks {
		if s.weeks[i].WeekStart.Equal(weekStart) {
			s.weeks[i].Cap = cap
			break
		}
	}
	return nil
}

func (s *InMemStorage) AppendLedger(_ context.Context, e budget.LedgerEntry) (budget.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.append(e), nil
}

func (s *InMemStorage) LastSet(_ context.Context) (*budget.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last *budget.LedgerEntry
	for i := range s.entries {
		e := s.entries[i]
		if e.Type != budget.EntrySet {
			continue
		}
		if last == nil || e.RecordedAt.After(last.RecordedAt) ||
			(e.RecordedAt.Equal(last.RecordedAt) && e.ID > last.ID) {
			last = &s.entries[i]
		}
	}
	if last == nil {
		return nil, nil
	}
	e := *last
	return &e, nil
}

func (s *InMemStorage) LedgerAfter(_ context.Context, t time.Time) ([]budget.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]budget.LedgerEntry, 0)
	for _, e := range s.entries {
		if e.RecordedAt.After(t) {
			res = append(res, e)
		}
	}
	return res, nil
}

func (s *InMemStorage) HasSet(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Type == budget.EntrySet {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemStorage) RecentLedger(_ context.Context, limit uint64) ([]budget.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]budget.LedgerEntry, len(s.entries))
	copy(res, s.entries)
	sort.Slice(res, func(i, j int) bool {
		if !res[i].RecordedAt.Equal(res[j].RecordedAt) {
			return res[i].RecordedAt.After(res[j].RecordedAt)
		}
		return res[i].ID > res[j].ID
	})
	if uint64(len(res)) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *InMemStorage) append(e budget.LedgerEntry) budget.LedgerEntry {
	e.ID = s.id()
	s.entries = append(s.entries, e)
	return e
}

// ensureWeek inserts the row unless the week already exists, matching
// the ON CONFLICT DO NOTHING upsert of the postgres implementation.
func (s *InMemStorage) ensureWeek(week budget.WeeklyLimit) int {
	for i, w := range s.weeks {
		if w.WeekStart.Equal(week.WeekStart) {
			return i
		}
	}
	week.ID = s.id()
	s.weeks = append(s.weeks, week)
	return len(s.weeks) - 1
}
