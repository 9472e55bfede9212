package usecase

import (
	"errors"
	"testing"

	"github.com/nexaline/comp-service/internal/domain"
)

// root
//   b (left, sponsored by root)
//   c (right, sponsored by root)
//     d (left of b, sponsored by b)
func testTree() []*domain.Distributor {
	root := testDistributor("root", nil, nil, nil)
	b := testDistributor("b", strPtr("root"), strPtr("root"), legPtr(domain.LegLeft))
	c := testDistributor("c", strPtr("root"), strPtr("root"), legPtr(domain.LegRight))
	d := testDistributor("d", strPtr("b"), strPtr("b"), legPtr(domain.LegLeft))
	return []*domain.Distributor{root, b, c, d}
}

func testEntries(pv map[string]string) []*domain.VolumeEntry {
	var entries []*domain.VolumeEntry
	for id, amount := range pv {
		entries = append(entries, &domain.VolumeEntry{
			ID:            id + "-entry",
			DistributorID: id,
			SourceOrderID: id + "-order",
			CV:            dec(amount),
			PV:            dec(amount),
		})
	}
	return entries
}

func TestComputePeriodVolumes(t *testing.T) {
	arena, err := BuildArena(testTree())
	if err != nil {
		t.Fatalf("BuildArena failed: %v", err)
	}

	volumes := ComputePeriodVolumes(arena, testEntries(map[string]string{
		"root": "100",
		"b":    "1000",
		"c":    "600",
		"d":    "50",
	}))

	if !volumes.PV["b"].Equal(dec("1000")) {
		t.Errorf("Expected PV(b)=1000, got %s", volumes.PV["b"].String())
	}
	if !volumes.TV["root"].Equal(dec("1750")) {
		t.Errorf("Expected TV(root)=1750, got %s", volumes.TV["root"].String())
	}
	if !volumes.TV["b"].Equal(dec("1050")) {
		t.Errorf("Expected TV(b)=1050, got %s", volumes.TV["b"].String())
	}

	left := volumes.LegVolume(arena, "root", domain.LegLeft)
	right := volumes.LegVolume(arena, "root", domain.LegRight)
	if !left.Equal(dec("1050")) {
		t.Errorf("Expected left leg 1050, got %s", left.String())
	}
	if !right.Equal(dec("600")) {
		t.Errorf("Expected right leg 600, got %s", right.String())
	}
}

func TestEvaluate_RanksAndActivity(t *testing.T) {
	arena, err := BuildArena(testTree())
	if err != nil {
		t.Fatalf("BuildArena failed: %v", err)
	}
	volumes := ComputePeriodVolumes(arena, testEntries(map[string]string{
		"root": "100",
		"b":    "1000",
		"c":    "600",
	}))

	evaluator := NewEligibilityEvaluator()
	snapshots := evaluator.Evaluate(arena, volumes, testPlan(), "p1")

	byID := make(map[string]*domain.EligibilitySnapshot)
	for _, snapshot := range snapshots {
		byID[snapshot.DistributorID] = snapshot
	}

	// root: PV 100, TV 1700, lesser leg min(1000, 600)=600 -> silver
	if byID["root"].Rank != 2 {
		t.Errorf("Expected root rank 2, got %d", byID["root"].Rank)
	}
	if !byID["root"].LesserLegVolume.Equal(dec("600")) {
		t.Errorf("Expected root lesser leg 600, got %s", byID["root"].LesserLegVolume.String())
	}
	// b: PV 1000 but no lesser-leg volume -> bronze
	if byID["b"].Rank != 1 {
		t.Errorf("Expected b rank 1, got %d", byID["b"].Rank)
	}
	// d: no volume -> unranked and inactive
	if byID["d"].Rank != 0 {
		t.Errorf("Expected d unranked, got %d", byID["d"].Rank)
	}
	if byID["d"].IsActive {
		t.Error("Expected d to be inactive")
	}
	if !byID["root"].IsActive {
		t.Error("Expected root to be active")
	}
}

func TestEvaluate_NeverDemotes(t *testing.T) {
	tree := testTree()
	tree[1].Rank = 2 // b holds silver from an earlier period

	arena, err := BuildArena(tree)
	if err != nil {
		t.Fatalf("BuildArena failed: %v", err)
	}
	volumes := ComputePeriodVolumes(arena, testEntries(map[string]string{"b": "60"}))

	snapshots := NewEligibilityEvaluator().Evaluate(arena, volumes, testPlan(), "p1")
	for _, snapshot := range snapshots {
		if snapshot.DistributorID == "b" && snapshot.Rank != 2 {
			t.Errorf("Expected b to keep rank 2, got %d", snapshot.Rank)
		}
	}
}

func TestBuildArena_Inconsistencies(t *testing.T) {
	cases := map[string][]*domain.Distributor{
		"two roots": {
			testDistributor("r1", nil, nil, nil),
			testDistributor("r2", nil, nil, nil),
		},
		"unknown sponsor": {
			testDistributor("root", nil, nil, nil),
			testDistributor("a", strPtr("ghost"), strPtr("root"), legPtr(domain.LegLeft)),
		},
		"missing binary slot": {
			testDistributor("root", nil, nil, nil),
			testDistributor("a", strPtr("root"), nil, nil),
		},
		"duplicate leg": {
			testDistributor("root", nil, nil, nil),
			testDistributor("a", strPtr("root"), strPtr("root"), legPtr(domain.LegLeft)),
			testDistributor("b", strPtr("root"), strPtr("root"), legPtr(domain.LegLeft)),
		},
		"no root": {
			testDistributor("a", strPtr("b"), strPtr("b"), legPtr(domain.LegLeft)),
			testDistributor("b", strPtr("a"), strPtr("a"), legPtr(domain.LegLeft)),
		},
	}

	for name, tree := range cases {
		if _, err := BuildArena(tree); !errors.Is(err, domain.ErrTreeInconsistency) {
			t.Errorf("%s: expected ErrTreeInconsistency, got %v", name, err)
		}
	}
}

func TestUnilevelAncestors(t *testing.T) {
	arena, err := BuildArena(testTree())
	if err != nil {
		t.Fatalf("BuildArena failed: %v", err)
	}

	ancestors := arena.UnilevelAncestors("d", 5)
	if len(ancestors) != 2 {
		t.Fatalf("Expected 2 ancestors, got %d", len(ancestors))
	}
	if ancestors[0].ID != "b" || ancestors[1].ID != "root" {
		t.Errorf("Expected chain [b root], got [%s %s]", ancestors[0].ID, ancestors[1].ID)
	}

	capped := arena.UnilevelAncestors("d", 1)
	if len(capped) != 1 || capped[0].ID != "b" {
		t.Errorf("Expected depth-capped chain [b], got %v", capped)
	}
}
