package messages

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"

	"github.com/mission-budget/spender/internal/entity/budget"
	"github.com/mission-budget/spender/internal/model/customerr"
	"github.com/mission-budget/spender/internal/model/engine"
)

const (
	dontUnderstandMessage = "I don't understand you :("
	helloMessage          = "Hello! I am Spender, your mission-budget bot 🤖\n" +
		"Commands: /goal /expense /delete /expenses /weekly /cap /balance /credit /ledger /dashboard /simulate /report"
	loveToTalkMessage = "I would love to talk about it more!"
	okMessage         = "Gotcha!"
	noExpensesMessage = "You have no expenses yet"
	noLedgerMessage   = "Your ledger is empty. Start with /balance <amount>"

	incorrectUsageMessage   = "That is an incorrect command usage"
	incorrectAmountMessage  = "The amount is incorrect"
	incorrectDateMessage    = "The date is incorrect. Should be dd.mm.yyyy"
	cannotReachMessage      = "Can't reach your budget atm. Try later"
	generatingReportMessage = "Crunching your analytics, the report will arrive shortly 📊"
)

const (
	startCommand     = "/start"
	goalCommand      = "/goal"
	expenseCommand   = "/expense"
	deleteCommand    = "/delete"
	expensesCommand  = "/expenses"
	weeklyCommand    = "/weekly"
	capCommand       = "/cap"
	balanceCommand   = "/balance"
	creditCommand    = "/credit"
	ledgerCommand    = "/ledger"
	dashboardCommand = "/dashboard"
	simulateCommand  = "/simulate"
	reportCommand    = "/report"
)

type budgetEngine interface {
	SetGoal(ctx context.Context, g budget.Goal) (budget.Goal, error)
	Goal(ctx context.Context) (*budget.Goal, error)
	AddExpense(ctx context.Context, exp budget.Expense) (budget.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	ListExpenses(ctx context.Context) ([]budget.Expense, error)
	CurrentWeeklyLimit(ctx context.Context, goal *budget.Goal) (budget.WeeklyLimit, error)
	UpdateWeeklyCap(ctx context.Context, cap int64) (budget.WeeklyLimit, error)
	SetBalance(ctx context.Context, amount int64, note string) (budget.LedgerEntry, error)
	AddCredit(ctx context.Context, amount int64, note string) (budget.LedgerEntry, error)
	Ledger(ctx context.Context) ([]budget.LedgerEntry, error)
	Dashboard(ctx context.Context) (engine.Dashboard, error)
	Simulate(ctx context.Context, amount int64, category budget.Category) (engine.Simulation, error)
}

type reportProducer interface {
	ProduceMessage(message []byte) error
}

type reportCache interface {
	GetReport(userID int64) (string, error)
	InvalidateReport(userID int64) error
}

type config interface {
	Timezone() string
}

type handler func(ctx context.Context, arg string, userID int64) (string, error)

type handlerMap map[string]handler

type HandlerService struct {
	handlersMap handlerMap
	engine      budgetEngine
	producer    reportProducer
	cache       reportCache
	loc         *time.Location
}

func newHandler(engine budgetEngine, producer reportProducer, cache reportCache, conf config) *HandlerService {
	res := &HandlerService{
		handlersMap: nil,
		engine:      engine,
		producer:    producer,
		cache:       cache,
		loc:         location(conf.Timezone()),
	}
	res.handlersMap = newMap(res)
	return res
}

func newMap(s *HandlerService) handlerMap {
	m := make(handlerMap)
	m[startCommand] = s.handleStart
	m[goalCommand] = s.handleGoal
	m[expenseCommand] = s.handleExpense
	m[deleteCommand] = s.handleDelete
	m[expensesCommand] = s.handleExpenses
	m[weeklyCommand] = s.handleWeekly
	m[capCommand] = s.handleCap
	m[balanceCommand] = s.handleBalance
	m[creditCommand] = s.handleCredit
	m[ledgerCommand] = s.handleLedger
	m[dashboardCommand] = s.handleDashboard
	m[simulateCommand] = s.handleSimulate
	m[reportCommand] = s.handleReport

	m[""] = s.handleNoCommand

	return m
}

func (s *HandlerService) HandleMessage(ctx context.Context, text string, userID int64) (string, error) {
	cmd, arg := parseCommand(text)

	handler, ok := s.handlersMap[cmd]
	if ok {
		return handler(ctx, arg, userID)
	}
	return dontUnderstandMessage, nil
}

func (s *HandlerService) handleStart(_ context.Context, _ string, _ int64) (string, error) {
	return helloMessage, nil
}

func (s *HandlerService) handleNoCommand(_ context.Context, _ string, _ int64) (string, error) {
	return loveToTalkMessage, nil
}

// /goal target deadline income [emi] [rent] [clothing_cap] [initial_savings]
func (s *HandlerService) handleGoal(ctx context.Context, arg string, userID int64) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 3 {
		return incorrectUsageMessage, nil
	}

	amounts := make([]int64, 0, len(args)-1)
	for i, a := range args {
		if i == 1 {
			continue
		}
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil || v < 0 {
			return incorrectAmountMessage, nil
		}
		amounts = append(amounts, v)
	}

	deadline, err := time.ParseInLocation(dateLayout, args[1], time.UTC)
	if err != nil {
		return incorrectDateMessage, nil
	}

	g := budget.Goal{
		TargetAmount:  amounts[0],
		Deadline:      deadline,
		MonthlyIncome: amounts[1],
	}
	rest := amounts[2:]
	optional := []*int64{&g.EMI, &g.Rent, &g.ClothingCap, &g.InitialSavings}
	for i, v := range rest {
		if i >= len(optional) {
			break
		}
		*optional[i] = v
	}

	if _, err = s.engine.SetGoal(ctx, g); err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle goal")
	}
	s.invalidate(userID)
	return okMessage + " New goal is on: " + formatMoney(g.TargetAmount) +
		" by " + deadline.Format(dateLayout), nil
}

// /expense amount category [dd.mm.yyyy] [cc] [note...]
func (s *HandlerService) handleExpense(ctx context.Context, arg string, userID int64) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 2 {
		return incorrectUsageMessage, nil
	}

	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || amount <= 0 {
		return incorrectAmountMessage, nil
	}
	category, err := budget.ParseCategory(args[1])
	if err != nil {
		return "Unknown category. Try one of: " + categoriesList(), nil
	}

	exp := budget.Expense{
		Amount:      amount,
		Category:    category,
		Date:        time.Now().In(s.loc),
		PaymentMode: budget.ModeUPI,
	}

	rest := args[2:]
	if len(rest) > 0 {
		if date, err := time.ParseInLocation(dateLayout, rest[0], time.UTC); err == nil {
			exp.Date = date
			rest = rest[1:]
		}
	}
	if len(rest) > 0 && rest[0] == "cc" {
		exp.PaymentMode = budget.ModeCard
		rest = rest[1:]
	}
	exp.Note = strings.Join(rest, " ")

	saved, err := s.engine.AddExpense(ctx, exp)
	if err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle expense")
	}
	s.invalidate(userID)

	return "Logged #" + strconv.FormatInt(saved.ID, 10) + ": " +
		formatMoney(saved.Amount) + " on " + string(saved.Category), nil
}

// /delete id
func (s *HandlerService) handleDelete(ctx context.Context, arg string, userID int64) (string, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return incorrectUsageMessage, nil
	}

	err = s.engine.DeleteExpense(ctx, id)
	var notFound *customerr.NotFoundError
	if errors.As(err, &notFound) {
		return "There is no expense #" + strconv.FormatInt(id, 10), nil
	}
	if err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle delete")
	}
	s.invalidate(userID)
	return okMessage + " Expense #" + strconv.FormatInt(id, 10) + " is reversed", nil
}

func (s *HandlerService) handleExpenses(ctx context.Context, _ string, _ int64) (string, error) {
	expenses, err := s.engine.ListExpenses(ctx)
	if err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle expenses")
	}
	if len(expenses) == 0 {
		return noExpensesMessage, nil
	}
	return formatExpenses(expenses), nil
}

func (s *HandlerService) handleWeekly(ctx context.Context, _ string, _ int64) (string, error) {
	goal, err := s.engine.Goal(ctx)
	if err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle weekly")
	}
	wl, err := s.engine.CurrentWeeklyLimit(ctx, goal)
	if err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle weekly")
	}
	return formatWeekly(wl), nil
}

// /cap n
func (s *HandlerService) handleCap(ctx context.Context, arg string, userID int64) (string, error) {
	cap, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || cap < 0 {
		return incorrectAmountMessage, nil
	}
	wl, err := s.engine.UpdateWeeklyCap(ctx, cap)
	if err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle cap")
	}
	s.invalidate(userID)
	return okMessage + " " + formatWeekly(wl), nil
}

// /balance amount [note...]
func (s *HandlerService) handleBalance(ctx context.Context, arg string, userID int64) (string, error) {
	amount, note, ok := parseAmountAndNote(arg)
	if !ok || amount < 0 {
		return incorrectAmountMessage, nil
	}
	if _, err := s.engine.SetBalance(ctx, amount, note); err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle balance")
	}
	s.invalidate(userID)
	return okMessage + " Balance is set to " + formatMoney(amount), nil
}

// /credit amount [note...]
func (s *HandlerService) handleCredit(ctx context.Context, arg string, userID int64) (string, error) {
	amount, note, ok := parseAmountAndNote(arg)
	if !ok || amount < 0 {
		return incorrectAmountMessage, nil
	}

	_, err := s.engine.AddCredit(ctx, amount, note)
	var noBalance *customerr.NoBalanceError
	if errors.As(err, &noBalance) {
		return "Set your current balance first: /balance <amount>", nil
	}
	if err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle credit")
	}
	s.invalidate(userID)
	return okMessage + " Credited " + formatMoney(amount), nil
}

func (s *HandlerService) handleLedger(ctx context.Context, _ string, _ int64) (string, error) {
	entries, err := s.engine.Ledger(ctx)
	if err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle ledger")
	}
	if len(entries) == 0 {
		return noLedgerMessage, nil
	}
	return formatLedger(entries), nil
}

func (s *HandlerService) handleDashboard(ctx context.Context, _ string, _ int64) (string, error) {
	dash, err := s.engine.Dashboard(ctx)
	if err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle dashboard")
	}
	return formatDashboard(dash), nil
}

// /simulate amount category
func (s *HandlerService) handleSimulate(ctx context.Context, arg string, _ int64) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 2 {
		return incorrectUsageMessage, nil
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || amount <= 0 {
		return incorrectAmountMessage, nil
	}
	category, err := budget.ParseCategory(args[1])
	if err != nil {
		return "Unknown category. Try one of: " + categoriesList(), nil
	}

	sim, err := s.engine.Simulate(ctx, amount, category)
	if err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle simulate")
	}
	return formatSimulation(amount, sim), nil
}

// /report answers from cache when possible, otherwise queues a request
// for the reporter worker.
func (s *HandlerService) handleReport(_ context.Context, _ string, userID int64) (string, error) {
	cached, err := s.cache.GetReport(userID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, memcache.ErrCacheMiss) {
		return cannotReachMessage, errors.Wrap(err, "handle report")
	}

	msg, err := encodeReportRequest(userID)
	if err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle report")
	}
	if err = s.producer.ProduceMessage(msg); err != nil {
		return cannotReachMessage, errors.Wrap(err, "handle report")
	}
	return generatingReportMessage, nil
}

func (s *HandlerService) invalidate(userID int64) {
	_ = s.cache.InvalidateReport(userID)
}
