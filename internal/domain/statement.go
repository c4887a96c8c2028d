package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OwnerStatement is a per-property reconciliation record for one period.
// The four total fields are always derived from the line-item collections;
// any mutation of line items must be followed by a full recompute.
type OwnerStatement struct {
	ID               string
	OrgID            string
	PropertyID       string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	TotalIncome      decimal.Decimal
	TotalExpenses    decimal.Decimal
	TotalAdjustments decimal.Decimal
	GrandTotal       decimal.Decimal
	UpdatedAt        time.Time
	UpdatedBy        string
}

// LineItemKind discriminates the three line-item collections.
type LineItemKind string

const (
	LineItemIncome     LineItemKind = "income"
	LineItemExpense    LineItemKind = "expense"
	LineItemAdjustment LineItemKind = "adjustment"
)

// LineItemSource records where a line item came from.
type LineItemSource string

const (
	SourceVendorImport LineItemSource = "vendor-import"
	SourceManual       LineItemSource = "manual"
)

// LineItem is one income, expense or adjustment entry belonging to exactly
// one statement. Amounts are arbitrary-precision decimals, never floats.
// Imported items that could not be attributed to a property are retained
// with Matched=false for manual resolution; they are excluded from totals
// until resolved.
type LineItem struct {
	ID           string
	StatementID  string
	Kind         LineItemKind
	Amount       decimal.Decimal
	Description  string
	PropertyID   string
	PropertyName string
	Source       LineItemSource
	ImportJobID  string
	Matched      bool
	CreatedAt    time.Time
}

// StatementTotals holds the four derived statement fields.
type StatementTotals struct {
	TotalIncome      decimal.Decimal
	TotalExpenses    decimal.Decimal
	TotalAdjustments decimal.Decimal
	GrandTotal       decimal.Decimal
}

// Equal reports whether two totals are numerically identical field by field.
func (t StatementTotals) Equal(o StatementTotals) bool {
	return t.TotalIncome.Equal(o.TotalIncome) &&
		t.TotalExpenses.Equal(o.TotalExpenses) &&
		t.TotalAdjustments.Equal(o.TotalAdjustments) &&
		t.GrandTotal.Equal(o.GrandTotal)
}

// CalculateTotals computes aggregate totals from the three full line-item
// collections. Each output is rounded to 2 decimal places independently;
// the grand total is rounded after the signed sum of the unrounded
// components, not by adding already-rounded totals, so rounding drift
// cannot compound. Pure; always call it with the current full collections,
// never a delta.
func CalculateTotals(incomes, expenses, adjustments []LineItem) StatementTotals {
	totalIncome := sumAmounts(incomes)
	totalExpenses := sumAmounts(expenses)
	totalAdjustments := sumAmounts(adjustments)

	grandTotal := totalIncome.Sub(totalExpenses).Add(totalAdjustments)

	return StatementTotals{
		TotalIncome:      totalIncome.Round(2),
		TotalExpenses:    totalExpenses.Round(2),
		TotalAdjustments: totalAdjustments.Round(2),
		GrandTotal:       grandTotal.Round(2),
	}
}

func sumAmounts(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}

	return total
}

// ParseAmount converts a raw vendor amount to a decimal. Vendor feeds are
// messy; missing or unparseable amounts contribute zero instead of failing
// the whole batch.
func ParseAmount(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(normalizeAmount(raw))
	if err != nil {
		return decimal.Zero
	}

	return d
}

func normalizeAmount(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")

	return s
}
