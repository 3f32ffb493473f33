package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bluegenie-core/internal/domain"
	"bluegenie-core/internal/domain/model"
	"bluegenie-core/internal/domain/ports/repository"
)

var _ repository.IntentLog = (*FileIntentLog)(nil)

// FileIntentLog is an append-only JSONL journal. Each line is either an
// intent record or an ack record; state is folded at read time. Appends
// fsync before returning, so an intent survives a crash that happens
// between spending quota locally and syncing the remote counter.
type FileIntentLog struct {
	path string

	mu sync.Mutex
}

type intentEntry struct {
	Op     string                  `json:"op"` // "intent" | "ack"
	Intent *model.GenerationIntent `json:"intent,omitempty"`
	AckID  string                  `json:"ack_id,omitempty"`
}

func NewFileIntentLog(dataDir string) (*FileIntentLog, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create intent dir: %w", err)
	}
	return &FileIntentLog{path: filepath.Join(dataDir, "intents.jsonl")}, nil
}

func (l *FileIntentLog) Append(ctx context.Context, intent model.GenerationIntent) error {
	if intent.ID == "" || intent.UserID == "" {
		return domain.ErrInvalidArgument
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendEntry(intentEntry{Op: "intent", Intent: &intent})
}

func (l *FileIntentLog) Ack(ctx context.Context, intentID string) error {
	if intentID == "" {
		return domain.ErrInvalidArgument
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendEntry(intentEntry{Op: "ack", AckID: intentID})
}

func (l *FileIntentLog) Pending(ctx context.Context, userID string) ([]model.GenerationIntent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open intent log: %v", domain.ErrStorage, err)
	}
	defer f.Close()

	intents := map[string]model.GenerationIntent{}
	order := []string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e intentEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			// A torn tail line from a crash mid-append; everything before
			// it already folded.
			continue
		}
		switch e.Op {
		case "intent":
			if e.Intent != nil && e.Intent.UserID == userID {
				if _, seen := intents[e.Intent.ID]; !seen {
					order = append(order, e.Intent.ID)
				}
				intents[e.Intent.ID] = *e.Intent
			}
		case "ack":
			delete(intents, e.AckID)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan intent log: %v", domain.ErrStorage, err)
	}

	out := make([]model.GenerationIntent, 0, len(intents))
	for _, id := range order {
		if in, ok := intents[id]; ok {
			out = append(out, in)
		}
	}
	return out, nil
}

func (l *FileIntentLog) appendEntry(e intentEntry) error {
	b, err := json.Marshal(&e)
	if err != nil {
		return fmt.Errorf("%w: encode intent: %v", domain.ErrStorage, err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open intent log: %v", domain.ErrStorage, err)
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("%w: append intent: %v", domain.ErrStorage, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync intent log: %v", domain.ErrStorage, err)
	}
	return nil
}
