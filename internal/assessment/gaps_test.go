package assessment

import "testing"

func TestBuildGapEntries_ThresholdIsStrict(t *testing.T) {
	scores := map[string]int{"A": 70, "B": 69, "C": 100}
	entries := BuildGapEntries("SQL", scores, nil, 80)

	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1 (70 exactly is not a gap)", len(entries))
	}
	if entries[0].Skill != "SQL — B" {
		t.Errorf("skill = %q", entries[0].Skill)
	}
}

func TestBuildGapEntries_PriorityByAscendingScore(t *testing.T) {
	scores := map[string]int{"Pipelines": 60, "OneLake": 20, "Lakehouses": 45}
	entries := BuildGapEntries("Microsoft Fabric", scores, nil, 42)

	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	wantOrder := []string{"OneLake", "Lakehouses", "Pipelines"}
	for i, want := range wantOrder {
		if entries[i].Priority != i+1 {
			t.Errorf("entries[%d].Priority = %d, want %d", i, entries[i].Priority, i+1)
		}
		if entries[i].Skill != "Microsoft Fabric — "+want {
			t.Errorf("entries[%d].Skill = %q, want suffix %q", i, entries[i].Skill, want)
		}
	}
	// Overall below 50 marks every gap high-demand.
	if entries[0].JobMarketDemand != "high" {
		t.Errorf("demand = %q, want high", entries[0].JobMarketDemand)
	}
}

func TestBuildGapEntries_ReasonMatching(t *testing.T) {
	scores := map[string]int{"CTEs": 40, "Indexes": 50}
	gaps := []string{"ctes: weak on recursive queries"}
	entries := BuildGapEntries("SQL", scores, gaps, 55)

	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	// Matching is case-insensitive; unmatched subtopics get a synthesized reason.
	if entries[0].Reason != "ctes: weak on recursive queries" {
		t.Errorf("entries[0].Reason = %q", entries[0].Reason)
	}
	if entries[1].Reason != "Scored 50/100 in Indexes" {
		t.Errorf("entries[1].Reason = %q", entries[1].Reason)
	}
}

func TestBuildGapEntries_NoGaps(t *testing.T) {
	if entries := BuildGapEntries("SQL", map[string]int{"A": 90}, nil, 90); len(entries) != 0 {
		t.Errorf("entries = %v, want none", entries)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"SQL", "sql"},
		{"Power BI / DAX", "power_bi_dax"},
		{"ETL / Data Engineering", "etl_data_engineering"},
	}
	for _, tt := range tests {
		if got := categorize(tt.in); got != tt.want {
			t.Errorf("categorize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
