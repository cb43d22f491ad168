package httpadapter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/replay"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/runs"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/sweep"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/domain/farm"
)

func TestResponseJSONUsesSnakeCase(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	passes := 2
	run := farm.Run{
		ID:                "run-1",
		Status:            farm.RunCompleted,
		CompanionInterval: 5,
		Passes:            &passes,
		WorldSize:         4,
		PassesCompleted:   2,
		Visits:            32,
		StartedAt:         now,
		FinishedAt:        &now,
	}
	visit := farm.Visit{
		RunID:       "run-1",
		Seq:         3,
		Cell:        farm.Position{X: 3, Y: 0},
		Action:      farm.VisitFallback,
		Planted:     farm.EntitySunflower,
		Companion:   &farm.Companion{Plant: farm.EntityBush, At: farm.Position{X: 1, Y: 1}},
		DetourError: "travel: boom",
		VisitedAt:   now,
	}

	cases := []struct {
		name    string
		payload any
		want    []string
		notWant []string
	}{
		{
			name:    "run",
			payload: run,
			want:    []string{"id", "status", "companion_interval", "passes", "world_size", "passes_completed", "visits", "started_at", "finished_at"},
			notWant: []string{"ID", "CompanionInterval", "PassesCompleted", "error"},
		},
		{
			name:    "replay",
			payload: replay.Response{Run: run, Visits: []farm.Visit{visit}, Actions: map[farm.VisitAction]int{farm.VisitFallback: 1}},
			want:    []string{"run", "visits", "plantings", "actions", "harvests"},
			notWant: []string{"Run", "Visits", "Plantings"},
		},
		{
			name:    "self_test",
			payload: runs.SelfTestResponse{Sweep: sweep.Response{Status: farm.RunCompleted, WorldSize: 4, PassesCompleted: 1, Visits: 16}},
			want:    []string{"sweep", "position"},
			notWant: []string{"Sweep", "Position"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.payload)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			var got map[string]any
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			for _, key := range tc.want {
				if _, ok := got[key]; !ok {
					t.Fatalf("expected key %q in %s", key, string(b))
				}
			}
			for _, key := range tc.notWant {
				if _, ok := got[key]; ok {
					t.Fatalf("unexpected key %q in %s", key, string(b))
				}
			}
			if tc.name == "replay" {
				visits, _ := got["visits"].([]any)
				if len(visits) != 1 {
					t.Fatalf("expected one visit in %s", string(b))
				}
				v := asMap(visits[0])
				for _, key := range []string{"run_id", "planted_at", "detour_error", "visited_at", "maintenance"} {
					if _, ok := v[key]; !ok {
						t.Fatalf("expected nested key visits[0].%s in %s", key, string(b))
					}
				}
				if _, ok := v["DetourError"]; ok {
					t.Fatalf("unexpected nested key visits[0].DetourError in %s", string(b))
				}
			}
			if tc.name == "self_test" {
				sw := asMap(got["sweep"])
				if _, ok := sw["passes_completed"]; !ok {
					t.Fatalf("expected nested key sweep.passes_completed in %s", string(b))
				}
			}
		})
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
