// Package session tracks multi-turn consultations so the context-aware
// detectors can see prior caller turns, and rolls a finished session up into
// a summary.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/detect"
)

// DefaultMaxTurns bounds the sliding context window kept per session. The
// turn counter keeps counting past the window; only the retained records are
// trimmed.
const DefaultMaxTurns = 15

// TurnRecord is one classified caller turn.
type TurnRecord struct {
	Index     int                 `json:"index"`
	Text      string              `json:"text"`
	Timestamp time.Time           `json:"timestamp"`
	Findings  []complaint.Finding `json:"findings,omitempty"`
}

// State is the stored per-session record. Turns are append-only within the
// sliding window; classification results are immutable once recorded.
type State struct {
	SessionID  string       `json:"session_id"`
	CreatedAt  time.Time    `json:"created_at"`
	LastTurnAt time.Time    `json:"last_turn_at"`
	TurnCount  int          `json:"turn_count"`
	MaxTurns   int          `json:"max_turns"`
	Turns      []TurnRecord `json:"turns,omitempty"`
}

// Store is the session persistence interface. Get returns (nil, nil) for an
// unknown or expired session.
type Store interface {
	Get(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// Summary is the aggregate view of a session.
type Summary struct {
	SessionID         string                     `json:"session_id,omitempty"`
	TurnCount         int                        `json:"turn_count"`
	CategoryCounts    map[complaint.Category]int `json:"category_counts,omitempty"`
	MaxSeverity       complaint.Severity         `json:"max_severity"`
	RecommendedAction string                     `json:"recommended_action"`
}

// Summarize rolls classified turns up: per-category finding counts, the
// highest severity seen, and the action that severity maps to.
func Summarize(turns []TurnRecord) Summary {
	s := Summary{
		TurnCount:         len(turns),
		MaxSeverity:       complaint.SeverityNormal,
		RecommendedAction: complaint.SeverityAction(complaint.SeverityNormal),
	}
	for _, turn := range turns {
		for _, f := range turn.Findings {
			if s.CategoryCounts == nil {
				s.CategoryCounts = make(map[complaint.Category]int)
			}
			s.CategoryCounts[f.Category]++
			s.MaxSeverity = s.MaxSeverity.Max(f.Severity)
		}
	}
	s.RecommendedAction = complaint.SeverityAction(s.MaxSeverity)
	return s
}

// ClassifySession classifies an ordered transcript in one pass. Each turn is
// classified with every earlier turn as context, exactly as if the turns had
// arrived live through a tracker.
func ClassifySession(reg *detect.Registry, texts []string) []TurnRecord {
	turns := make([]TurnRecord, 0, len(texts))
	priors := make([]string, 0, len(texts))
	for i, text := range texts {
		turns = append(turns, TurnRecord{
			Index:    i,
			Text:     text,
			Findings: reg.ClassifyText(text, priors),
		})
		priors = append(priors, text)
	}
	return turns
}

// Tracker classifies live turns against stored session state.
type Tracker struct {
	reg   *detect.Registry
	store Store
}

// NewTracker wires a detector registry to a session store.
func NewTracker(reg *detect.Registry, store Store) *Tracker {
	return &Tracker{reg: reg, store: store}
}

// AddTurn classifies one caller turn with the session's prior turns as
// context, records it, and persists the updated state. Unknown session IDs
// start a fresh session.
func (t *Tracker) AddTurn(ctx context.Context, sessionID, text string) (*TurnRecord, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	state, err := t.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	now := time.Now()
	if state == nil {
		state = &State{
			SessionID: sessionID,
			CreatedAt: now,
			MaxTurns:  DefaultMaxTurns,
		}
	}
	if state.MaxTurns <= 0 {
		state.MaxTurns = DefaultMaxTurns
	}

	priors := make([]string, 0, len(state.Turns))
	for _, turn := range state.Turns {
		priors = append(priors, turn.Text)
	}

	record := TurnRecord{
		Index:     state.TurnCount,
		Text:      text,
		Timestamp: now,
		Findings:  t.reg.ClassifyText(text, priors),
	}

	state.Turns = append(state.Turns, record)
	if len(state.Turns) > state.MaxTurns {
		state.Turns = state.Turns[len(state.Turns)-state.MaxTurns:]
	}
	state.LastTurnAt = now
	state.TurnCount++

	if err := t.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return &record, nil
}

// Session returns the stored state for a session ID, or (nil, nil) when the
// session is unknown.
func (t *Tracker) Session(ctx context.Context, sessionID string) (*State, error) {
	return t.store.Get(ctx, sessionID)
}

// Summary loads a session and rolls it up.
func (t *Tracker) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	state, err := t.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	s := Summarize(state.Turns)
	s.SessionID = state.SessionID
	s.TurnCount = state.TurnCount
	return &s, nil
}

// Delete removes a session.
func (t *Tracker) Delete(ctx context.Context, sessionID string) error {
	return t.store.Delete(ctx, sessionID)
}
