package calculator

import (
	"math"
	"testing"

	"github.com/smartsplit/smartsplit/internal/models"
)

func TestPlanSettlement(t *testing.T) {
	tests := []struct {
		name         string
		balances     []models.Balance
		validateFunc func(t *testing.T, plan []models.Transaction)
	}{
		{
			name: "one creditor two debtors",
			balances: []models.Balance{
				{MemberID: "Alice", Balance: 200},
				{MemberID: "Bob", Balance: -100},
				{MemberID: "Carol", Balance: -100},
			},
			validateFunc: func(t *testing.T, plan []models.Transaction) {
				if len(plan) != 2 {
					t.Fatalf("plan length = %d, want 2", len(plan))
				}
				for i, tx := range plan {
					if tx.ToID != "Alice" {
						t.Errorf("plan[%d].ToID = %s, want Alice", i, tx.ToID)
					}
					if math.Abs(tx.Amount-100) > 0.01 {
						t.Errorf("plan[%d].Amount = %v, want 100", i, tx.Amount)
					}
				}
			},
		},
		{
			name: "all settled yields empty plan",
			balances: []models.Balance{
				{MemberID: "Alice", Balance: 0},
				{MemberID: "Bob", Balance: 0},
			},
			validateFunc: func(t *testing.T, plan []models.Transaction) {
				if len(plan) != 0 {
					t.Errorf("plan length = %d, want 0", len(plan))
				}
			},
		},
		{
			name: "balances within epsilon band are excluded",
			balances: []models.Balance{
				{MemberID: "Alice", Balance: 0.009},
				{MemberID: "Bob", Balance: -0.009},
				{MemberID: "Carol", Balance: 0},
			},
			validateFunc: func(t *testing.T, plan []models.Transaction) {
				if len(plan) != 0 {
					t.Errorf("plan length = %d, want 0 for sub-epsilon balances", len(plan))
				}
			},
		},
		{
			name: "largest debt matched with largest credit first",
			balances: []models.Balance{
				{MemberID: "small-creditor", Balance: 30},
				{MemberID: "big-creditor", Balance: 70},
				{MemberID: "small-debtor", Balance: -40},
				{MemberID: "big-debtor", Balance: -60},
			},
			validateFunc: func(t *testing.T, plan []models.Transaction) {
				if len(plan) == 0 {
					t.Fatal("expected transactions")
				}
				first := plan[0]
				if first.FromID != "big-debtor" || first.ToID != "big-creditor" {
					t.Errorf("first transaction = %s -> %s, want big-debtor -> big-creditor", first.FromID, first.ToID)
				}
				if math.Abs(first.Amount-60) > 0.01 {
					t.Errorf("first amount = %v, want 60", first.Amount)
				}
			},
		},
		{
			name: "recorded amounts rounded to cents without compounding",
			balances: []models.Balance{
				{MemberID: "payer", Balance: 100},
				{MemberID: "a", Balance: -100.0 / 3},
				{MemberID: "b", Balance: -100.0 / 3},
				{MemberID: "c", Balance: -100.0 / 3},
			},
			validateFunc: func(t *testing.T, plan []models.Transaction) {
				if len(plan) != 3 {
					t.Fatalf("plan length = %d, want 3", len(plan))
				}
				for i, tx := range plan {
					cents := math.Round(tx.Amount * 100)
					if math.Abs(tx.Amount*100-cents) > 1e-9 {
						t.Errorf("plan[%d].Amount = %v, not rounded to cents", i, tx.Amount)
					}
					if math.Abs(tx.Amount-33.33) > 0.01 {
						t.Errorf("plan[%d].Amount = %v, want ~33.33", i, tx.Amount)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanSettlement(tt.balances)
			tt.validateFunc(t, plan)

			// Conservation: plan total matches sum of positive balances.
			var planned, credit float64
			for _, tx := range plan {
				planned += tx.Amount
				if tx.Amount <= 0 {
					t.Errorf("transaction %s -> %s has non-positive amount %v", tx.FromID, tx.ToID, tx.Amount)
				}
				if tx.FromID == tx.ToID {
					t.Errorf("transaction pays %s to itself", tx.FromID)
				}
			}
			for _, b := range tt.balances {
				if b.Balance > Epsilon {
					credit += b.Balance
				}
			}
			if math.Abs(planned-credit) > Epsilon+1e-6 {
				t.Errorf("plan total = %v, positive balances = %v, want equal within epsilon", planned, credit)
			}

			// Greedy bound: never more transfers than members-1.
			if len(tt.balances) > 0 && len(plan) > len(tt.balances)-1 {
				t.Errorf("plan has %d transactions for %d members", len(plan), len(tt.balances))
			}
		})
	}
}

func TestPlanSettlementEndToEnd(t *testing.T) {
	// Full pipeline: bills -> balances -> plan.
	ms := members("Alice", "Bob", "Carol")
	bills := []models.Bill{
		{ID: "b1", Amount: 300, PayerID: "Alice", InvolvedIDs: []string{"Alice", "Bob", "Carol"}},
	}

	plan := PlanSettlement(SummarizeBalances(bills, ms))

	if len(plan) != 2 {
		t.Fatalf("plan length = %d, want 2", len(plan))
	}
	if plan[0].FromID != "Bob" || plan[0].ToID != "Alice" || math.Abs(plan[0].Amount-100) > 0.01 {
		t.Errorf("plan[0] = %+v, want Bob -> Alice 100", plan[0])
	}
	if plan[1].FromID != "Carol" || plan[1].ToID != "Alice" || math.Abs(plan[1].Amount-100) > 0.01 {
		t.Errorf("plan[1] = %+v, want Carol -> Alice 100", plan[1])
	}
}
