// Package calculator holds the pure settlement math: net balances per
// member and the greedy minimal-transfer plan. Nothing here touches
// storage or the network.
package calculator

import (
	"github.com/smartsplit/smartsplit/internal/models"
)

// ComputeBalances returns the net balance per member ID across all bills.
//
// Every member starts at 0 so that members with no bills still appear.
// For each bill the payer is credited the full amount and every involved
// member is debited an equal share. A payer ID that no longer resolves to
// a member is still counted under its stored value. Bills with an empty
// involved list are skipped (the store refuses to create them; snapshots
// from other clients may still carry one).
func ComputeBalances(bills []models.Bill, members []models.Member) map[string]float64 {
	balances := make(map[string]float64, len(members))
	for _, m := range members {
		balances[m.ID] = 0
	}

	for _, bill := range bills {
		if len(bill.InvolvedIDs) == 0 {
			continue
		}

		// Payer gets credit, involved members split the debt equally.
		balances[bill.PayerID] += bill.Amount
		share := bill.Amount / float64(len(bill.InvolvedIDs))
		for _, id := range bill.InvolvedIDs {
			balances[id] -= share
		}
	}

	return balances
}

// SummarizeBalances returns balances in a stable display order: members
// in roster order first, then any IDs that only appear on bills (dangling
// payers or participants) in first-seen order.
func SummarizeBalances(bills []models.Bill, members []models.Member) []models.Balance {
	balances := ComputeBalances(bills, members)

	summary := make([]models.Balance, 0, len(balances))
	seen := make(map[string]bool, len(balances))

	appendID := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		summary = append(summary, models.Balance{MemberID: id, Balance: balances[id]})
	}

	for _, m := range members {
		appendID(m.ID)
	}
	for _, bill := range bills {
		if len(bill.InvolvedIDs) == 0 {
			continue
		}
		appendID(bill.PayerID)
		for _, id := range bill.InvolvedIDs {
			appendID(id)
		}
	}

	return summary
}
