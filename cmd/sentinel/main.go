package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/redis/go-redis/v9"

	"github.com/minwonlab/sentinel/pkg/batch"
	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/config"
	"github.com/minwonlab/sentinel/pkg/dataset"
	"github.com/minwonlab/sentinel/pkg/detect"
	"github.com/minwonlab/sentinel/pkg/history"
	"github.com/minwonlab/sentinel/pkg/lexicon"
	"github.com/minwonlab/sentinel/pkg/risk"
	"github.com/minwonlab/sentinel/pkg/session"
)

const Version = "0.1.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cfg := config.NewDefaultConfig()
		if len(os.Args) > 2 {
			cfg.ListenAddr = ":" + strings.TrimPrefix(os.Args[2], ":")
		}
		cfg.MustValidate()
		runHTTPServer(cfg)
	case "scan":
		if len(os.Args) < 3 {
			fmt.Println("Usage: sentinel scan <text>")
			os.Exit(1)
		}
		runCLIScan(strings.Join(os.Args[2:], " "))
	case "session":
		if len(os.Args) < 3 {
			fmt.Println("Usage: sentinel session <transcript file>")
			os.Exit(1)
		}
		runCLISession(os.Args[2])
	case "batch":
		if len(os.Args) < 3 {
			fmt.Println("Usage: sentinel batch <dataset> [output.csv]")
			os.Exit(1)
		}
		output := ""
		if len(os.Args) > 3 {
			output = os.Args[3]
		}
		runCLIBatch(os.Args[2], output)
	case "validate":
		if len(os.Args) < 3 {
			fmt.Println("Usage: sentinel validate <dataset>")
			os.Exit(1)
		}
		runCLIValidate(os.Args[2])
	case "version":
		fmt.Printf("Sentinel v%s\n", Version)
		fmt.Println("Malicious civil-complaint screening engine")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Sentinel v%s - Malicious civil-complaint screening engine\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  sentinel serve [port]               Start HTTP server (default: 8090)")
	fmt.Println("  sentinel scan <text>                Classify one utterance")
	fmt.Println("  sentinel session <transcript>       Classify a transcript file (one turn per line)")
	fmt.Println("  sentinel batch <dataset> [out.csv]  Classify a whole dataset")
	fmt.Println("  sentinel validate <dataset>         Validate a labeled dataset")
	fmt.Println("  sentinel version                    Show version")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  sentinel serve 8090")
	fmt.Println("  sentinel scan \"또 같은 얘기인데 왜 안 해주는 거예요?\"")
	fmt.Println("  sentinel batch data/train.csv data/train_classified.csv")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  SENTINEL_PROFILE          Threshold posture: strict, balanced, permissive")
	fmt.Println("  SENTINEL_THRESHOLDS       YAML threshold override file")
	fmt.Println("  SENTINEL_LEXICON          YAML term list override file")
	fmt.Println("  SENTINEL_SESSION_BACKEND  Session store: memory, redis")
	fmt.Println("  SENTINEL_DATABASE_URL     PostgreSQL DSN for classification history")
}

// buildRegistry wires the detector registry from configuration: profile and
// file-based threshold overrides, plus optional custom term lists.
func buildRegistry(cfg *config.Config) (*detect.Registry, error) {
	th, err := cfg.Thresholds()
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}

	lex, err := lexicon.New()
	if cfg.LexiconPath != "" {
		lists, loadErr := lexicon.LoadLists(cfg.LexiconPath)
		if loadErr != nil {
			return nil, fmt.Errorf("load lexicon: %w", loadErr)
		}
		lex, err = lexicon.NewFromLists(lists)
	}
	if err != nil {
		return nil, fmt.Errorf("build lexicon: %w", err)
	}

	return detect.NewRegistry(th, lex), nil
}

// ============================================================================
// HTTP Server Mode
// ============================================================================

func runHTTPServer(cfg *config.Config) {
	reg, err := buildRegistry(cfg)
	if err != nil {
		log.Fatalf("[STARTUP] FATAL: %v", err)
	}
	classifier := risk.NewWithRegistry(reg)

	var store session.Store
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store = session.NewRedisStore(client, session.WithTTL(cfg.SessionTTL))
		log.Printf("✓ Session store: redis (%s)", cfg.RedisAddr)
	default:
		store = session.NewMemoryStore(session.WithMaxAge(cfg.SessionTTL))
		log.Println("✓ Session store: memory")
	}
	defer store.Close()

	tracker := session.NewTracker(reg, store)

	var repo *history.Repository
	if cfg.HistoryDSN != "" {
		ctx := context.Background()
		repo, err = history.Connect(ctx, cfg.HistoryDSN)
		if err != nil {
			log.Fatalf("[STARTUP] FATAL: %v", err)
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("[STARTUP] FATAL: %v", err)
		}
		defer repo.Close()
		log.Println("✓ Classification history enabled (postgres)")
	} else {
		log.Println("○ Classification history disabled (no DSN)")
	}

	app := fiber.New(fiber.Config{
		AppName: "Sentinel",
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"version":   Version,
			"profile":   cfg.Profile,
			"detectors": reg.DetectorCount(),
		})
	})

	// Single-utterance classification. Context carries prior turns for the
	// context-aware detectors; metadata is the upstream consultation record.
	app.Post("/classify", func(c fiber.Ctx) error {
		var req struct {
			Text     string                    `json:"text"`
			Context  []string                  `json:"context"`
			Metadata *complaintMetadataPayload `json:"metadata"`
		}
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if strings.TrimSpace(req.Text) == "" {
			return c.Status(400).JSON(fiber.Map{"error": "text field is required"})
		}

		findings := reg.ClassifyText(req.Text, req.Context)
		result := classifier.Aggregate(findings, risk.CheckMetadata(req.Metadata.toDomain()))

		if repo != nil {
			entry := history.Entry{Text: req.Text, Result: result}
			if err := repo.Insert(c.Context(), &entry); err != nil {
				log.Printf("[WARN] history insert failed: %v", err)
			}
		}

		return c.JSON(fiber.Map{
			"findings": findings,
			"result":   result,
		})
	})

	app.Post("/session", func(c fiber.Ctx) error {
		return c.Status(201).JSON(fiber.Map{"session_id": uuid.NewString()})
	})

	app.Post("/session/:id/turn", func(c fiber.Ctx) error {
		var req struct {
			Text string `json:"text"`
		}
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if strings.TrimSpace(req.Text) == "" {
			return c.Status(400).JSON(fiber.Map{"error": "text field is required"})
		}

		sessionID := c.Params("id")
		turn, err := tracker.AddTurn(c.Context(), sessionID, req.Text)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		summary, err := tracker.Summary(c.Context(), sessionID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}

		if repo != nil {
			entry := history.Entry{
				SessionID: sessionID,
				TurnIndex: turn.Index,
				Text:      req.Text,
				Result:    classifier.Aggregate(turn.Findings, nil),
			}
			if err := repo.Insert(c.Context(), &entry); err != nil {
				log.Printf("[WARN] history insert failed: %v", err)
			}
		}

		return c.JSON(fiber.Map{
			"turn":    turn,
			"summary": summary,
		})
	})

	app.Get("/session/:id", func(c fiber.Ctx) error {
		state, err := tracker.Session(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if state == nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		return c.JSON(state)
	})

	app.Get("/session/:id/summary", func(c fiber.Ctx) error {
		summary, err := tracker.Summary(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		return c.JSON(summary)
	})

	app.Delete("/session/:id", func(c fiber.Ctx) error {
		if err := tracker.Delete(c.Context(), c.Params("id")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	log.Printf("Sentinel HTTP server starting on %s", cfg.ListenAddr)
	log.Printf("Endpoints:")
	log.Printf("  GET    /health               - Health check")
	log.Printf("  POST   /classify             - Classify one utterance")
	log.Printf("  POST   /session              - Open a session")
	log.Printf("  POST   /session/:id/turn     - Classify one session turn")
	log.Printf("  GET    /session/:id          - Session state")
	log.Printf("  GET    /session/:id/summary  - Session rollup")
	log.Printf("  DELETE /session/:id          - Drop a session")

	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}

// complaintMetadataPayload keeps the wire shape decoupled from the domain
// type so absent metadata stays a nil pointer.
type complaintMetadataPayload struct {
	ConsultationContent string `json:"consultation_content"`
	ConsultationResult  string `json:"consultation_result"`
	RequirementType     string `json:"requirement_type"`
	ConsultationReason  string `json:"consultation_reason"`
}

func (p *complaintMetadataPayload) toDomain() *complaint.ConsultationMetadata {
	if p == nil {
		return nil
	}
	return &complaint.ConsultationMetadata{
		ConsultationContent: p.ConsultationContent,
		ConsultationResult:  p.ConsultationResult,
		RequirementType:     p.RequirementType,
		ConsultationReason:  p.ConsultationReason,
	}
}

// ============================================================================
// CLI Modes
// ============================================================================

func runCLIScan(text string) {
	cfg := config.NewDefaultConfig()
	reg, err := buildRegistry(cfg)
	if err != nil {
		log.Fatal(err)
	}
	classifier := risk.NewWithRegistry(reg)

	findings := reg.ClassifyText(text, nil)
	result := classifier.Aggregate(findings, nil)

	output, _ := json.MarshalIndent(fiber.Map{
		"findings": findings,
		"result":   result,
	}, "", "  ")
	fmt.Println(string(output))
}

func runCLISession(path string) {
	cfg := config.NewDefaultConfig()
	reg, err := buildRegistry(cfg)
	if err != nil {
		log.Fatal(err)
	}

	texts, err := readTranscript(path)
	if err != nil {
		log.Fatal(err)
	}

	turns := session.ClassifySession(reg, texts)
	summary := session.Summarize(turns)

	output, _ := json.MarshalIndent(fiber.Map{
		"turns":   turns,
		"summary": summary,
	}, "", "  ")
	fmt.Println(string(output))
}

// readTranscript accepts either a JSON array of strings or a plain text file
// with one turn per line.
func readTranscript(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var texts []string
		if err := json.Unmarshal([]byte(trimmed), &texts); err != nil {
			return nil, fmt.Errorf("parse transcript: %w", err)
		}
		return texts, nil
	}

	var texts []string
	scanner := bufio.NewScanner(strings.NewReader(trimmed))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	return texts, scanner.Err()
}

func runCLIBatch(input, output string) {
	cfg := config.NewDefaultConfig()
	reg, err := buildRegistry(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ds, err := dataset.Load(input)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Loaded %d rows from %s", ds.Len(), input)

	// Unlabeled input is fine for classification; only the text column and
	// its contents have to be sound.
	report := dataset.NewValidator(dataset.ColText).Validate(ds)
	if !report.Valid {
		dataset.PrintReport(os.Stdout, input, ds, report)
		log.Fatal("dataset failed validation, aborting batch run")
	}

	runner := batch.NewRunner(risk.NewWithRegistry(reg), batch.WithWorkers(cfg.BatchWorkers))
	results, summary, err := runner.Run(context.Background(), ds)
	if err != nil {
		log.Fatal(err)
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "_classified.csv"
	}
	if err := dataset.SaveCSV(output, ds.Columns, results); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s %d rows classified, %d skipped\n",
		color.Green.Sprint("done:"), summary.Processed, summary.Skipped)
	fmt.Printf("results written to %s\n\n", output)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"위험도", "개수"})
	for _, level := range []string{"NORMAL", "LOW", "MEDIUM", "HIGH", "CRITICAL"} {
		if count, ok := summary.LevelCounts[level]; ok {
			table.Append([]string{level, fmt.Sprintf("%d", count)})
		}
	}
	table.Render()
}

func runCLIValidate(path string) {
	ds, err := dataset.Load(path)
	if err != nil {
		log.Fatal(err)
	}

	report := dataset.NewValidator().Validate(ds)
	dataset.PrintReport(os.Stdout, path, ds, report)

	if !report.Valid {
		os.Exit(1)
	}
}
