package batch

import (
	"context"
	"testing"
	"time"

	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/dataset"
	"github.com/minwonlab/sentinel/pkg/risk"
)

func testDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Columns: []string{"text", "label"},
		Records: []dataset.Record{
			{Text: "정상적인 민원 문의입니다. 도움이 필요합니다.", Label: "정상"},
			{Text: "ㅇ", Label: "정상"}, // below the quality floor
			{Text: "죽여버리겠다. 찾아가서 복수하겠어.", Label: "폭력_위협_범죄조장"},
			{Text: "X팔 너 거기 앉아서 뭐 배웠느냐? 고등학교는 나왔느냐?", Label: "욕설_저주|모욕_조롱"},
		},
	}
}

func TestRunnerClassifiesInInputOrder(t *testing.T) {
	runner := NewRunner(risk.New(), WithWorkers(4))

	results, summary, err := runner.Run(context.Background(), testDataset())
	if err != nil {
		t.Fatal(err)
	}

	if summary.Processed != 3 || summary.Skipped != 1 {
		t.Fatalf("summary = %+v, want 3 processed / 1 skipped", summary)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Input order survives concurrent classification.
	wantTexts := []string{
		"정상적인 민원 문의입니다. 도움이 필요합니다.",
		"죽여버리겠다. 찾아가서 복수하겠어.",
		"X팔 너 거기 앉아서 뭐 배웠느냐? 고등학교는 나왔느냐?",
	}
	for i, want := range wantTexts {
		if results[i].Record.Text != want {
			t.Errorf("result %d text = %q, want %q", i, results[i].Record.Text, want)
		}
	}

	if results[0].Result.RiskLevel != complaint.SeverityNormal {
		t.Errorf("row 0 level = %s, want NORMAL", results[0].Result.RiskLevel)
	}
	if results[1].Result.RiskLevel != complaint.SeverityCritical {
		t.Errorf("row 1 level = %s, want CRITICAL", results[1].Result.RiskLevel)
	}
	if !results[2].Result.ProfanityDetected {
		t.Error("row 2 should flag profanity")
	}

	if summary.LevelCounts["NORMAL"] != 1 || summary.LevelCounts["CRITICAL"] != 1 {
		t.Errorf("level counts = %v", summary.LevelCounts)
	}
}

func TestRunnerWorkerCountDoesNotChangeResults(t *testing.T) {
	ds := testDataset()

	serial, _, err := NewRunner(risk.New(), WithWorkers(1)).Run(context.Background(), ds)
	if err != nil {
		t.Fatal(err)
	}
	parallel, _, err := NewRunner(risk.New(), WithWorkers(8)).Run(context.Background(), ds)
	if err != nil {
		t.Fatal(err)
	}

	if len(serial) != len(parallel) {
		t.Fatalf("result counts differ: %d vs %d", len(serial), len(parallel))
	}
	for i := range serial {
		if serial[i].Record.Text != parallel[i].Record.Text ||
			serial[i].Result.RiskScore != parallel[i].Result.RiskScore {
			t.Errorf("row %d differs between worker counts", i)
		}
	}
}

func TestRunnerHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewRunner(risk.New()).Run(ctx, testDataset())
	if err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestSemaphoreBounds(t *testing.T) {
	sem := NewSemaphore(2)

	ctx := context.Background()
	if err := sem.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := sem.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if sem.InUse() != 2 {
		t.Fatalf("in use = %d, want 2", sem.InUse())
	}

	// At capacity a third acquire must block until cancelled.
	blocked, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := sem.Acquire(blocked); err == nil {
		t.Error("acquire at capacity should fail once the context expires")
	}

	sem.Release()
	if err := sem.Acquire(ctx); err != nil {
		t.Errorf("acquire after release: %v", err)
	}
	if sem.InUse() != 2 {
		t.Errorf("in use = %d, want 2", sem.InUse())
	}
}

func BenchmarkRunner(b *testing.B) {
	ds := testDataset()
	runner := NewRunner(risk.New(), WithWorkers(4))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := runner.Run(context.Background(), ds); err != nil {
			b.Fatal(err)
		}
	}
}
