package session

import (
	"context"
	"testing"
	"time"

	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/detect"
)

var sampleTranscript = []string{
	"안녕하세요, 문의가 있어서 전화드렸습니다.",
	"앞선 통화에서도 말씀드렸다시피, 같은 문제인데요.",
	"또 같은 얘기인데 왜 안 해주는 거예요?",
	"X팔, 제대로 일을 못하시나봐요?",
	"죽여버리겠어요, 정말 화가 나네요.",
}

func categoriesOf(turn TurnRecord) map[complaint.Category]bool {
	cats := map[complaint.Category]bool{}
	for _, f := range turn.Findings {
		cats[f.Category] = true
	}
	return cats
}

func TestClassifySessionTranscript(t *testing.T) {
	turns := ClassifySession(detect.Get(), sampleTranscript)
	if len(turns) != len(sampleTranscript) {
		t.Fatalf("expected %d turns, got %d", len(sampleTranscript), len(turns))
	}

	wantCats := []map[complaint.Category]bool{
		{},
		{complaint.CategoryRepetition: true},
		{complaint.CategoryRepetition: true},
		{complaint.CategoryProfanity: true, complaint.CategoryInsult: true},
		{complaint.CategoryViolenceThreat: true},
	}
	for i, turn := range turns {
		got := categoriesOf(turn)
		for cat := range wantCats[i] {
			if !got[cat] {
				t.Errorf("turn %d: missing %s (got %v)", i, cat, turn.Findings)
			}
		}
		if len(got) != len(wantCats[i]) {
			t.Errorf("turn %d: categories %v, want %v", i, got, wantCats[i])
		}
	}
}

func TestSummarizeTranscript(t *testing.T) {
	turns := ClassifySession(detect.Get(), sampleTranscript)
	s := Summarize(turns)

	if s.TurnCount != 5 {
		t.Errorf("turn count = %d, want 5", s.TurnCount)
	}
	if s.MaxSeverity != complaint.SeverityHigh {
		t.Errorf("max severity = %s, want HIGH", s.MaxSeverity)
	}
	if s.RecommendedAction != complaint.SeverityAction(complaint.SeverityHigh) {
		t.Errorf("recommended action = %q", s.RecommendedAction)
	}
	if got := s.CategoryCounts[complaint.CategoryRepetition]; got != 2 {
		t.Errorf("repetition count = %d, want 2", got)
	}
	for _, cat := range []complaint.Category{
		complaint.CategoryProfanity,
		complaint.CategoryInsult,
		complaint.CategoryViolenceThreat,
	} {
		if got := s.CategoryCounts[cat]; got != 1 {
			t.Errorf("%s count = %d, want 1", cat, got)
		}
	}
}

func TestSummarizeEmptySession(t *testing.T) {
	s := Summarize(nil)
	if s.MaxSeverity != complaint.SeverityNormal {
		t.Errorf("empty session severity = %s, want NORMAL", s.MaxSeverity)
	}
	if s.RecommendedAction != "log only" {
		t.Errorf("empty session action = %q, want log only", s.RecommendedAction)
	}
	if s.CategoryCounts != nil {
		t.Errorf("empty session counts = %v, want nil", s.CategoryCounts)
	}
}

func TestTrackerAccumulatesContext(t *testing.T) {
	store := NewMemoryStore(WithSweepInterval(time.Hour))
	defer store.Close()
	tracker := NewTracker(detect.Get(), store)
	ctx := context.Background()

	for i, text := range sampleTranscript {
		record, err := tracker.AddTurn(ctx, "call-001", text)
		if err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
		if record.Index != i {
			t.Errorf("turn %d: index = %d", i, record.Index)
		}
	}

	state, err := tracker.Session(ctx, "call-001")
	if err != nil {
		t.Fatal(err)
	}
	if state == nil || state.TurnCount != 5 {
		t.Fatalf("expected 5 stored turns, got %+v", state)
	}
	// Second turn only fires repetition because turn one is in context.
	if cats := categoriesOf(state.Turns[1]); !cats[complaint.CategoryRepetition] {
		t.Errorf("turn 1 findings = %v, want repetition", state.Turns[1].Findings)
	}

	summary, err := tracker.Summary(ctx, "call-001")
	if err != nil {
		t.Fatal(err)
	}
	if summary.MaxSeverity != complaint.SeverityHigh {
		t.Errorf("summary severity = %s, want HIGH", summary.MaxSeverity)
	}
	if summary.SessionID != "call-001" {
		t.Errorf("summary session ID = %q", summary.SessionID)
	}
}

func TestTrackerTrimsSlidingWindow(t *testing.T) {
	store := NewMemoryStore(WithSweepInterval(time.Hour))
	defer store.Close()
	tracker := NewTracker(detect.Get(), store)
	ctx := context.Background()

	seed := &State{SessionID: "call-002", MaxTurns: 2}
	if err := store.Save(ctx, seed); err != nil {
		t.Fatal(err)
	}
	for _, text := range []string{"첫 번째 문의입니다.", "두 번째 문의입니다.", "세 번째 문의입니다."} {
		if _, err := tracker.AddTurn(ctx, "call-002", text); err != nil {
			t.Fatal(err)
		}
	}

	state, err := tracker.Session(ctx, "call-002")
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Turns) != 2 {
		t.Errorf("window length = %d, want 2", len(state.Turns))
	}
	if state.TurnCount != 3 {
		t.Errorf("turn count = %d, want 3", state.TurnCount)
	}
	if state.Turns[0].Index != 1 {
		t.Errorf("oldest retained turn index = %d, want 1", state.Turns[0].Index)
	}
}

func TestTrackerRejectsEmptySessionID(t *testing.T) {
	store := NewMemoryStore(WithSweepInterval(time.Hour))
	defer store.Close()
	tracker := NewTracker(detect.Get(), store)

	if _, err := tracker.AddTurn(context.Background(), "", "문의입니다."); err == nil {
		t.Error("expected error for empty session ID")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(WithMaxAge(10*time.Millisecond), WithSweepInterval(time.Hour))
	defer store.Close()
	ctx := context.Background()

	state := &State{SessionID: "stale", LastTurnAt: time.Now()}
	if err := store.Save(ctx, state); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "stale")
	if err != nil || got == nil {
		t.Fatalf("fresh session should be readable, got %v, %v", got, err)
	}

	time.Sleep(25 * time.Millisecond)

	got, err = store.Get(ctx, "stale")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("expired session should read as not found")
	}
}

func TestMemoryStoreStats(t *testing.T) {
	store := NewMemoryStore(WithSweepInterval(time.Hour))
	defer store.Close()
	ctx := context.Background()

	if err := store.Save(ctx, &State{SessionID: "a", TurnCount: 3}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, &State{SessionID: "b", TurnCount: 1}); err != nil {
		t.Fatal(err)
	}

	stats := store.Stats()
	if stats.SessionCount != 2 || stats.TotalTurns != 4 {
		t.Errorf("stats = %+v, want 2 sessions / 4 turns", stats)
	}
}
