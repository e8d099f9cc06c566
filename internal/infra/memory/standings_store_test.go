package memory

import (
	"context"
	"testing"
	"time"

	"eco-quiz-engine/internal/domain"
)

func TestStandingsAccumulate(t *testing.T) {
	ctx := context.Background()
	store := NewStandingsStore()
	t0 := time.Unix(1_700_000_000, 0)

	_, _ = store.Record(ctx, domain.Result{
		PlayerID: "u1", DisplayName: "Alice", FinishedAt: t0,
		Summary: domain.Summary{Score: 600, OverallPercentage: 60, Badges: []domain.Badge{domain.BadgeTree}},
	})
	st, err := store.Record(ctx, domain.Result{
		PlayerID: "u1", DisplayName: "Alice", FinishedAt: t0.Add(time.Minute),
		Summary: domain.Summary{Score: 500, OverallPercentage: 50, Badges: []domain.Badge{domain.BadgeTree, domain.BadgeEnergy}},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if st.TotalScore != 1100 || st.PlayThroughs != 2 || st.Rank != 2 {
		t.Fatalf("unexpected standing %+v", st)
	}
	if st.BestPercentage != 60 || st.BestScore != 600 {
		t.Fatalf("expected best result kept, got %+v", st)
	}
	if len(st.Badges) != 2 {
		t.Fatalf("expected badge union of 2, got %v", st.Badges)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewStandingsStore()
	t0 := time.Unix(1_700_000_000, 0)

	_, _ = store.Record(ctx, domain.Result{PlayerID: "u1", DisplayName: "Alice", FinishedAt: t0.Add(time.Second), Summary: domain.Summary{Score: 100}})
	_, _ = store.Record(ctx, domain.Result{PlayerID: "u2", DisplayName: "Bob", FinishedAt: t0, Summary: domain.Summary{Score: 100}})
	_, _ = store.Record(ctx, domain.Result{PlayerID: "u3", DisplayName: "Cara", FinishedAt: t0, Summary: domain.Summary{Score: 250}})

	lb, err := store.Leaderboard(ctx, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	want := []string{"u3", "u2", "u1"}
	for i, id := range want {
		if lb.Entries[i].PlayerID != id {
			t.Fatalf("position %d: expected %s, got %+v", i, id, lb.Entries)
		}
	}

	top, _ := store.Leaderboard(ctx, 1)
	if len(top.Entries) != 1 || top.Entries[0].PlayerID != "u3" {
		t.Fatalf("expected top 1 to be u3, got %+v", top.Entries)
	}
}
