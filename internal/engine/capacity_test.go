package engine

import "testing"

func TestComputeCapacityAdditive(t *testing.T) {
	base := int64(10_000)

	if got := ComputeCapacity(base, nil, false); got != 10_000 {
		t.Fatalf("empty infra: got %d want 10000", got)
	}
	got := ComputeCapacity(base, []string{"RDS", "Redis"}, false)
	if got != 10_000+15_000+30_000 {
		t.Fatalf("RDS+Redis: got %d want 55000", got)
	}
}

func TestComputeCapacityIdempotent(t *testing.T) {
	infra := []string{"EC2", "AutoScaling", "S3"}
	first := ComputeCapacity(5_000, infra, true)
	second := ComputeCapacity(5_000, infra, true)
	if first != second {
		t.Fatalf("same inputs gave %d then %d", first, second)
	}
}

func TestComputeCapacityUnknownInfra(t *testing.T) {
	with := ComputeCapacity(10_000, []string{"RDS", "FaxMachine"}, false)
	without := ComputeCapacity(10_000, []string{"RDS"}, false)
	if with != without {
		t.Fatalf("unknown service changed capacity: %d vs %d", with, without)
	}
	if KnownInfra("FaxMachine") {
		t.Fatalf("FaxMachine should not be a known service")
	}
}

func TestConsultingMultiplierPersists(t *testing.T) {
	base := int64(10_000)

	boosted := ComputeCapacity(base, nil, true)
	if boosted != 30_000 {
		t.Fatalf("consulting on empty infra: got %d want 30000", boosted)
	}

	// Adding infrastructure after consulting must keep the multiplier.
	after := ComputeCapacity(base, []string{"RDS"}, true)
	if after != (10_000+15_000)*3 {
		t.Fatalf("consulting + RDS: got %d want 75000", after)
	}
	if after <= boosted {
		t.Fatalf("adding infra under consulting should grow capacity: %d -> %d", boosted, after)
	}
}
