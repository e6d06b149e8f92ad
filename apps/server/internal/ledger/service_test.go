package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"negotiator-lite/apps/server/internal/storage"
)

func services(t *testing.T) map[string]Service {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	sqlService, err := NewSQLService(db)
	if err != nil {
		t.Fatalf("new sql ledger: %v", err)
	}
	return map[string]Service{
		"memory": NewMemoryService(),
		"sqlite": sqlService,
	}
}

func seed(t *testing.T, svc Service) {
	t.Helper()
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{AttemptID: "a1", PlayerID: 1, Username: "alice", Score: 8.04, Success: true, Turns: 6, Day: "2026-10-19", CreatedAt: base},
		{AttemptID: "a2", PlayerID: 2, Username: "bob", Score: 5.5, Turns: 10, Day: "2026-10-19", CreatedAt: base.Add(time.Minute)},
		{AttemptID: "a3", PlayerID: 3, Username: "carol", Score: 8.04, Success: true, Turns: 7, Day: "2026-10-19", CreatedAt: base.Add(2 * time.Minute)},
		{AttemptID: "a4", PlayerID: 1, Username: "alice", Score: 9.2, Success: true, Turns: 4, Day: "2026-10-18", CreatedAt: base.Add(-24 * time.Hour)},
	}
	for _, e := range entries {
		if err := svc.Record(context.Background(), e); err != nil {
			t.Fatalf("record %s: %v", e.AttemptID, err)
		}
	}
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.AttemptID)
	}
	return out
}

func TestLedger_Leaderboards(t *testing.T) {
	ctx := context.Background()
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, svc)

			daily, err := svc.DailyTop(ctx, "2026-10-19", 10)
			if err != nil {
				t.Fatalf("daily top: %v", err)
			}
			if got := ids(daily); len(got) != 3 || got[0] != "a1" || got[1] != "a3" || got[2] != "a2" {
				t.Fatalf("unexpected daily order %v", got)
			}

			top, err := svc.AllTimeTop(ctx, 2)
			if err != nil {
				t.Fatalf("all-time top: %v", err)
			}
			if got := ids(top); len(got) != 2 || got[0] != "a4" || got[1] != "a1" {
				t.Fatalf("unexpected all-time order %v", got)
			}
			if !top[0].CreatedAt.Equal(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)) {
				t.Fatalf("created_at not preserved: %v", top[0].CreatedAt)
			}
		})
	}
}

func TestLedger_RecordIsIdempotent(t *testing.T) {
	ctx := context.Background()
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			e := Entry{AttemptID: "dup", PlayerID: 9, Username: "dave", Score: 4, Day: "2026-10-19"}
			for i := 0; i < 2; i++ {
				if err := svc.Record(ctx, e); err != nil {
					t.Fatalf("record: %v", err)
				}
			}
			daily, err := svc.DailyTop(ctx, "2026-10-19", 10)
			if err != nil {
				t.Fatalf("daily top: %v", err)
			}
			if len(daily) != 1 {
				t.Fatalf("expected one entry, got %d", len(daily))
			}
		})
	}
}

func TestLedger_PlayerStats(t *testing.T) {
	ctx := context.Background()
	for name, svc := range services(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, svc)
			st, err := svc.PlayerStats(ctx, 1, "2026-10-19")
			if err != nil {
				t.Fatalf("stats: %v", err)
			}
			want := Stats{DailyCount: 1, DailyAverage: 8.04, LifetimeCount: 2, LifetimeAverage: 8.62, Best: 9.2}
			if st != want {
				t.Fatalf("stats = %+v, want %+v", st, want)
			}

			empty, err := svc.PlayerStats(ctx, 42, "2026-10-19")
			if err != nil {
				t.Fatalf("stats: %v", err)
			}
			if empty != (Stats{}) {
				t.Fatalf("expected zero stats, got %+v", empty)
			}
		})
	}
}

func TestHTTPHandler_Leaderboard(t *testing.T) {
	svc := NewMemoryService()
	seed(t, svc)
	h := NewHTTPHandler(svc)
	h.now = func() time.Time { return time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC) }
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp leaderboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Day != "2026-10-19" || len(resp.Daily) != 2 || len(resp.AllTime) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?day=yesterday", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
