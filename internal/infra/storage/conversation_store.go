package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bluegenie-core/internal/domain"
	"bluegenie-core/internal/domain/model"
	"bluegenie-core/internal/domain/ports/repository"
)

var _ repository.ConversationStore = (*FileConversationStore)(nil)

// FileConversationStore keeps one JSON log file per personality. Writes are
// whole-log replace through a temp file and rename, so a reader never sees a
// partially written log and a crash leaves either the old or the new file.
type FileConversationStore struct {
	dir            string
	idleResetAfter time.Duration
}

func NewFileConversationStore(dataDir string, idleResetAfter time.Duration) (*FileConversationStore, error) {
	dir := filepath.Join(dataDir, "conversations")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create conversation dir: %w", err)
	}
	return &FileConversationStore{dir: dir, idleResetAfter: idleResetAfter}, nil
}

func (s *FileConversationStore) path(personalityID string) string {
	// Personality ids are preset slugs, but never trust them as path segments.
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '.' {
			return '_'
		}
		return r
	}, personalityID)
	return filepath.Join(s.dir, safe+".json")
}

func (s *FileConversationStore) Load(ctx context.Context, personalityID string) ([]model.Message, error) {
	if personalityID == "" {
		return nil, domain.ErrInvalidArgument
	}
	b, err := os.ReadFile(s.path(personalityID))
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Message{}, nil
		}
		return nil, fmt.Errorf("%w: read log: %v", domain.ErrStorage, err)
	}
	var log model.ConversationLog
	if err := json.Unmarshal(b, &log); err != nil {
		// Corruption is treated as no history.
		return []model.Message{}, nil
	}
	return log.Messages, nil
}

func (s *FileConversationStore) Append(ctx context.Context, personalityID string, msg model.Message) error {
	msgs, err := s.Load(ctx, personalityID)
	if err != nil {
		return err
	}
	msgs = append(msgs, msg)
	return s.write(personalityID, msgs)
}

func (s *FileConversationStore) Clear(ctx context.Context, personalityID string) error {
	if personalityID == "" {
		return domain.ErrInvalidArgument
	}
	if err := os.Remove(s.path(personalityID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: clear log: %v", domain.ErrStorage, err)
	}
	return nil
}

func (s *FileConversationStore) ClearAll(ctx context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("%w: list logs: %v", domain.ErrStorage, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("%w: clear log %s: %v", domain.ErrStorage, e.Name(), err)
		}
	}
	return nil
}

func (s *FileConversationStore) ShouldAutoReset(ctx context.Context, personalityID string) (bool, error) {
	msgs, err := s.Load(ctx, personalityID)
	if err != nil {
		return false, err
	}
	if len(msgs) == 0 {
		return false, nil
	}
	last := msgs[len(msgs)-1].CreatedAt
	return time.Since(last) > s.idleResetAfter, nil
}

func (s *FileConversationStore) ToggleBookmark(ctx context.Context, personalityID, messageID string) error {
	msgs, err := s.Load(ctx, personalityID)
	if err != nil {
		return err
	}
	changed := false
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Bookmarked = !msgs[i].Bookmarked
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}
	return s.write(personalityID, msgs)
}

func (s *FileConversationStore) write(personalityID string, msgs []model.Message) error {
	log := model.ConversationLog{PersonalityID: personalityID, Messages: msgs}
	b, err := json.MarshalIndent(&log, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode log: %v", domain.ErrStorage, err)
	}
	return replaceFile(s.path(personalityID), b)
}

// replaceFile writes to a sibling temp file and renames over the target.
func replaceFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write temp: %v", domain.ErrStorage, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: replace file: %v", domain.ErrStorage, err)
	}
	return nil
}
