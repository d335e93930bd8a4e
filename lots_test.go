package brokerage

import (
	"errors"
	"testing"
)

// fixtureLots builds three open lots acquired on successive days.
func fixtureLots() []*Lot {
	return []*Lot{
		{ID: "a", Account: "ira", Instrument: "AAPL", Acquired: MustParse("2025-01-01"), Original: Q(10), Remaining: Q(10), UnitCost: M(10, "USD"), seq: 0},
		{ID: "b", Account: "ira", Instrument: "AAPL", Acquired: MustParse("2025-01-05"), Original: Q(10), Remaining: Q(10), UnitCost: M(12, "USD"), seq: 1},
		{ID: "c", Account: "ira", Instrument: "AAPL", Acquired: MustParse("2025-01-03"), Original: Q(5), Remaining: Q(5), UnitCost: M(11, "USD"), seq: 2},
	}
}

func TestPlanConsumption(t *testing.T) {
	testCases := []struct {
		name     string
		rule     MatchingRule
		request  float64
		selected []string
		want     []struct {
			id  string
			qty float64
		}
	}{
		{
			name:    "FIFO consumes oldest first",
			rule:    FIFO,
			request: 15,
			want: []struct {
				id  string
				qty float64
			}{{"a", 10}, {"c", 5}},
		},
		{
			name:    "FIFO partial from one lot",
			rule:    FIFO,
			request: 4,
			want: []struct {
				id  string
				qty float64
			}{{"a", 4}},
		},
		{
			name:    "LIFO consumes newest first",
			rule:    LIFO,
			request: 12,
			want: []struct {
				id  string
				qty float64
			}{{"b", 10}, {"c", 2}},
		},
		{
			name:     "SpecificLot in caller order",
			rule:     SpecificLot,
			request:  12,
			selected: []string{"b", "a"},
			want: []struct {
				id  string
				qty float64
			}{{"b", 10}, {"a", 2}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ls := fixtureLots()
			plan, err := planConsumption(tc.rule, "ira", "AAPL", Q(tc.request), ls, tc.selected)
			if err != nil {
				t.Fatalf("planConsumption: %v", err)
			}
			if len(plan) != len(tc.want) {
				t.Fatalf("plan has %d consumptions, want %d", len(plan), len(tc.want))
			}
			for i, w := range tc.want {
				if plan[i].lot.ID != w.id {
					t.Errorf("consumption %d from lot %q, want %q", i, plan[i].lot.ID, w.id)
				}
				if !plan[i].quantity.Equal(Q(w.qty)) {
					t.Errorf("consumption %d quantity %s, want %v", i, plan[i].quantity, w.qty)
				}
			}
		})
	}
}

func TestPlanConsumption_AllOrNothing(t *testing.T) {
	ls := fixtureLots() // 25 open in total

	_, err := planConsumption(FIFO, "ira", "AAPL", Q(30), ls, nil)
	var insufficient *InsufficientLotError
	if !errors.As(err, &insufficient) {
		t.Fatalf("want *InsufficientLotError, got %v", err)
	}
	if !insufficient.Requested.Equal(Q(30)) || !insufficient.Open.Equal(Q(25)) {
		t.Errorf("error reports requested %s open %s, want 30 and 25", insufficient.Requested, insufficient.Open)
	}
	// planning must not mutate the lots
	for _, l := range ls {
		if !l.Remaining.Equal(l.Original) {
			t.Errorf("lot %q mutated by a failed plan", l.ID)
		}
	}
}

func TestPlanConsumption_SpecificLotValidation(t *testing.T) {
	ls := fixtureLots()

	t.Run("unknown lot id", func(t *testing.T) {
		if _, err := planConsumption(SpecificLot, "ira", "AAPL", Q(5), ls, []string{"zzz"}); err == nil {
			t.Fatal("want error for unknown lot id")
		}
	})

	t.Run("selected lots too small", func(t *testing.T) {
		_, err := planConsumption(SpecificLot, "ira", "AAPL", Q(12), ls, []string{"a"})
		var insufficient *InsufficientLotError
		if !errors.As(err, &insufficient) {
			t.Fatalf("want *InsufficientLotError, got %v", err)
		}
	})
}

func TestLotState(t *testing.T) {
	l := &Lot{Original: Q(10), Remaining: Q(10)}
	if got := l.State(); got != Open {
		t.Errorf("State() = %s, want open", got)
	}
	l.Remaining = Q(4)
	if got := l.State(); got != PartiallyClosed {
		t.Errorf("State() = %s, want partially-closed", got)
	}
	l.Remaining = Q(0)
	if got := l.State(); got != Closed {
		t.Errorf("State() = %s, want closed", got)
	}
}
