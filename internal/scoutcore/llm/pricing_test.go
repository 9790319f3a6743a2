package llm

import "testing"

func TestPrice_KnownModel(t *testing.T) {
	cost, resolved := Price("gemini-2.5-flash", 1_000_000, 1_000_000)
	if resolved != "gemini-2.5-flash" {
		t.Fatalf("expected resolved=gemini-2.5-flash, got %s", resolved)
	}
	want := 0.30 + 2.50
	if cost != want {
		t.Errorf("expected cost=%v, got %v", want, cost)
	}
}

func TestPrice_AliasResolves(t *testing.T) {
	_, resolved := Price("flash", 0, 0)
	if resolved != "gemini-2.5-flash" {
		t.Errorf("expected alias 'flash' to resolve to gemini-2.5-flash, got %s", resolved)
	}
}

func TestPrice_UnknownModelFallsBackToCheapest(t *testing.T) {
	_, resolved := Price("some-future-model", 0, 0)
	if resolved != cheapestFallback {
		t.Errorf("expected fallback to %s, got %s", cheapestFallback, resolved)
	}
}

func TestPrice_MinimumBillableCostFloor(t *testing.T) {
	// Every rate in the table bills one token above the floor (one flash
	// input token costs 3e-7), so a zero-rate entry is used to reach it.
	rates["zero-rate-model"] = Rate{}
	defer delete(rates, "zero-rate-model")
	cost, _ := Price("zero-rate-model", 1, 0)
	if cost != MinBillableCost {
		t.Errorf("expected tiny call to be floored at %v, got %v", MinBillableCost, cost)
	}
}

func TestPrice_ZeroTokensIsZeroCost(t *testing.T) {
	cost, _ := Price("gemini-2.5-flash", 0, 0)
	if cost != 0 {
		t.Errorf("expected zero-token call to cost 0, got %v", cost)
	}
}
