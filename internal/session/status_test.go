package session

import (
	"errors"
	"testing"
)

func TestNext_WalksTheFullChain(t *testing.T) {
	want := []Status{
		StatusInitializingStatements,
		StatusCategorizing,
		StatusAnalyzingPayments,
		StatusAnalyzingTransactions,
		StatusAnalyzingFinancialProfile,
		StatusAnalyzingInsights,
		StatusAnalyzingSwot,
		StatusAnalyzingSavingsPotential,
		StatusProcessedAnalysis,
		StatusDone,
	}
	cur := StatusStarted
	for _, w := range want {
		next, ok := Next(cur)
		if !ok || next != w {
			t.Fatalf("Next(%s) = %s, %v; want %s", cur, next, ok, w)
		}
		cur = next
	}
	if _, ok := Next(StatusDone); ok {
		t.Error("Next(done) should report no successor")
	}
	if _, ok := Next(StatusFailed); ok {
		t.Error("Next(failed) should report no successor")
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"forward step", StatusCategorizing, StatusAnalyzingPayments, true},
		{"skip ahead", StatusCategorizing, StatusAnalyzingFinancialProfile, false},
		{"backward", StatusAnalyzingSwot, StatusCategorizing, false},
		{"retry reset from late stage", StatusAnalyzingSwot, StatusInitializingStatements, true},
		{"retry reset from done", StatusDone, StatusInitializingStatements, true},
		{"retry reset from failed", StatusFailed, StatusInitializingStatements, true},
		{"fail mid-pipeline", StatusAnalyzingPayments, StatusFailed, true},
		{"done cannot fail", StatusDone, StatusFailed, false},
		{"failed cannot fail again", StatusFailed, StatusFailed, false},
		{"unknown from", Status("limbo"), StatusCategorizing, false},
		{"unknown to", StatusCategorizing, Status("limbo"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTransition_InvalidReturnsSentinel(t *testing.T) {
	if _, err := Transition(StatusStarted, StatusDone); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Transition error = %v, want ErrInvalidTransition", err)
	}
	got, err := Transition(StatusStarted, StatusInitializingStatements)
	if err != nil || got != StatusInitializingStatements {
		t.Fatalf("Transition = %s, %v", got, err)
	}
}
