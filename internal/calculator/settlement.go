package calculator

import (
	"math"
	"sort"

	"github.com/smartsplit/smartsplit/internal/models"
)

// Epsilon is the tolerance below which a balance counts as settled.
// It is a currency-granularity policy constant, not a float-precision
// artifact: tune it if the unit ever gets sub-cent granularity.
const Epsilon = 0.01

// PlanSettlement computes the minimal transfer plan that brings every
// balance to zero, using greedy largest-debt/largest-credit matching.
//
// Debtors (balance < -Epsilon) are sorted most-negative first, creditors
// (balance > Epsilon) most-positive first, then matched two-pointer
// style: each step transfers min(|debt|, credit) and advances whichever
// side reached the epsilon band. Recorded amounts are rounded to 2
// decimal places but the running balances are not, so rounding error
// never compounds across iterations. Output order is debtor-major.
//
// The plan never exceeds len(balances)-1 transactions and its total
// equals the sum of positive balances to within Epsilon.
func PlanSettlement(balances []models.Balance) []models.Transaction {
	var debtors, creditors []models.Balance
	for _, b := range balances {
		switch {
		case b.Balance < -Epsilon:
			debtors = append(debtors, b)
		case b.Balance > Epsilon:
			creditors = append(creditors, b)
		}
	}

	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].Balance < debtors[j].Balance
	})
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].Balance > creditors[j].Balance
	})

	var plan []models.Transaction
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := math.Min(-debtor.Balance, creditor.Balance)

		plan = append(plan, models.Transaction{
			FromID: debtor.MemberID,
			ToID:   creditor.MemberID,
			Amount: math.Round(amount*100) / 100,
		})

		debtor.Balance += amount
		creditor.Balance -= amount

		if math.Abs(debtor.Balance) < Epsilon {
			i++
		}
		if creditor.Balance < Epsilon {
			j++
		}
	}

	return plan
}
