package core_test

import (
	"fmt"
	"reflect"
	"testing"

	"bizsense/internal/core"
)

func TestBuildSequence(t *testing.T) {
	// Eight days: cash in 1..8, cash out 10..80.
	var series []core.DailyCashFlow
	for i := 1; i <= 8; i++ {
		series = append(series, core.DailyCashFlow{
			Date:    fmt.Sprintf("2026-08-%02d", i),
			CashIn:  float64(i),
			CashOut: float64(i * 10),
		})
	}

	got := core.BuildSequence(series)
	if len(got) != 2 {
		t.Fatalf("BuildSequence returned %d rows, want 2", len(got))
	}

	// Day 7: [in, out, inLag1, outLag1, rolling7In, rolling7Out].
	want0 := []float64{7, 70, 6, 60, 28, 280}
	if !reflect.DeepEqual(got[0], want0) {
		t.Errorf("row 0 = %v, want %v", got[0], want0)
	}

	// Day 8: rolling window slides forward by one day.
	want1 := []float64{8, 80, 7, 70, 35, 350}
	if !reflect.DeepEqual(got[1], want1) {
		t.Errorf("row 1 = %v, want %v", got[1], want1)
	}
}

func TestBuildSequence_TooShort(t *testing.T) {
	series := []core.DailyCashFlow{
		{Date: "2026-08-01", CashIn: 100, CashOut: 50},
		{Date: "2026-08-02", CashIn: 200, CashOut: 80},
	}
	if got := core.BuildSequence(series); len(got) != 0 {
		t.Errorf("BuildSequence on short series returned %d rows, want 0", len(got))
	}
}

func TestBuildSequence_Empty(t *testing.T) {
	if got := core.BuildSequence(nil); len(got) != 0 {
		t.Errorf("BuildSequence(nil) returned %d rows, want 0", len(got))
	}
}
