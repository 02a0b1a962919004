package budget

import (
	"fmt"
	"time"
)

type Category string

const (
	CategoryFood          Category = "food"
	CategoryTravel        Category = "travel"
	CategoryClothes       Category = "clothes"
	CategorySkincare      Category = "skincare"
	CategoryStudies       Category = "studies"
	CategoryRent          Category = "rent"
	CategoryEMI           Category = "emi"
	CategoryHealth        Category = "health"
	CategorySubscriptions Category = "subscriptions"
	CategoryMisc          Category = "misc"
)

var Categories = []Category{
	CategoryFood, CategoryTravel, CategoryClothes, CategorySkincare,
	CategoryStudies, CategoryRent, CategoryEMI, CategoryHealth,
	CategorySubscriptions, CategoryMisc,
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type Mood string

const (
	MoodCalm     Mood = "calm"
	MoodStressed Mood = "stressed"
	MoodBored    Mood = "bored"
	MoodHappy    Mood = "happy"
)

type PaymentMode string

const (
	ModeUPI  PaymentMode = "upi"
	ModeCard PaymentMode = "card"
)

// OrDefault normalizes the zero value to UPI. The schema declares the
// column NOT NULL DEFAULT 'upi'; this is the matching in-memory boundary.
func (m PaymentMode) OrDefault() PaymentMode {
	if m == "" {
		return ModeUPI
	}
	return m
}

// Expense is immutable once created; the only mutation is deletion,
// which reverses its side effects through compensating writes.
type Expense struct {
	ID          int64
	Amount      int64
	Category    Category
	Date        time.Time
	Note        string
	Mood        Mood
	PaymentMode PaymentMode
}

// Label is the text used for ledger notes: the note when present,
// otherwise the category name.
func (e Expense) Label() string {
	if e.Note != "" {
		return e.Note
	}
	return string(e.Category)
}
