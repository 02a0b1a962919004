package budget

import "time"

// DefaultClothingCap applies when a goal is created without an explicit cap.
const DefaultClothingCap = 10000

// Goal is the single active savings goal. Creating a new goal replaces
// any previous one; only the most recent row is ever visible.
type Goal struct {
	ID             int64
	TargetAmount   int64
	Deadline       time.Time
	MonthlyIncome  int64
	EMI            int64
	Rent           int64
	ClothingCap    int64
	InitialSavings int64
	CreatedAt      time.Time
}

// UsableIncome is what remains of the monthly income after fixed costs.
// May be negative when EMI and rent exceed the income.
func (g Goal) UsableIncome() int64 {
	return g.MonthlyIncome - g.EMI - g.Rent
}
