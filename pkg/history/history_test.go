package history

import (
	"context"
	"os"
	"testing"

	"github.com/minwonlab/sentinel/pkg/complaint"
)

// Integration test; set SENTINEL_TEST_DATABASE_URL to run against a live
// PostgreSQL instance.
func TestRepositoryRoundTrip(t *testing.T) {
	dsn := os.Getenv("SENTINEL_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SENTINEL_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	repo, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	entry := Entry{
		SessionID: "history-test",
		TurnIndex: 0,
		Text:      "죽여버리겠다. 찾아가서 복수하겠어.",
		Result: complaint.RiskScoreResult{
			RiskScore:      9,
			RiskLevel:      complaint.SeverityCritical,
			BaselineIssues: []string{string(complaint.CategoryViolenceThreat)},
			Confidence:     0.9,
			Recommendation: complaint.SeverityAction(complaint.SeverityCritical),
		},
	}
	if err := repo.Insert(ctx, &entry); err != nil {
		t.Fatal(err)
	}
	if entry.ID == 0 || entry.ClassifiedAt.IsZero() {
		t.Errorf("insert should assign id and timestamp, got %+v", entry)
	}

	last, err := repo.LastForSession(ctx, "history-test")
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || last.Result.RiskLevel != complaint.SeverityCritical {
		t.Errorf("reloaded entry = %+v", last)
	}
}
