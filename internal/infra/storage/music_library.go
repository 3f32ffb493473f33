package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"bluegenie-core/internal/domain"
	"bluegenie-core/internal/domain/model"
	"bluegenie-core/internal/domain/ports/repository"
	"bluegenie-core/internal/infra/metrics"
)

var _ repository.ArtifactLibrary = (*FileMusicLibrary)(nil)

// FileMusicLibrary stores audio blobs next to a JSON index file. The index
// is the source of truth for listing; an audio file without an index entry
// is invisible garbage, never a phantom catalog row.
type FileMusicLibrary struct {
	dir      string
	maxSongs int

	mu sync.Mutex
}

func NewFileMusicLibrary(dataDir string, maxSongs int) (*FileMusicLibrary, error) {
	dir := filepath.Join(dataDir, "music")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create music dir: %w", err)
	}
	return &FileMusicLibrary{dir: dir, maxSongs: maxSongs}, nil
}

func (l *FileMusicLibrary) indexPath() string {
	return filepath.Join(l.dir, "index.json")
}

func (l *FileMusicLibrary) loadIndex() ([]model.GeneratedArtifact, error) {
	b, err := os.ReadFile(l.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []model.GeneratedArtifact{}, nil
		}
		return nil, fmt.Errorf("%w: read index: %v", domain.ErrStorage, err)
	}
	var idx []model.GeneratedArtifact
	if err := json.Unmarshal(b, &idx); err != nil {
		return []model.GeneratedArtifact{}, nil
	}
	return idx, nil
}

func (l *FileMusicLibrary) writeIndex(idx []model.GeneratedArtifact) error {
	b, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode index: %v", domain.ErrStorage, err)
	}
	return replaceFile(l.indexPath(), b)
}

func (l *FileMusicLibrary) Save(ctx context.Context, audio []byte, prompt, mimeType string, durationSeconds int, freeTier bool, costCents int) (*model.GeneratedArtifact, error) {
	if len(audio) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, err := l.loadIndex()
	if err != nil {
		return nil, err
	}

	art, err := model.NewGeneratedArtifact(prompt, mimeType, durationSeconds, freeTier, costCents)
	if err != nil {
		return nil, err
	}
	art.FilePath = filepath.Join(l.dir, art.FileName())

	if err := os.WriteFile(art.FilePath, audio, 0o644); err != nil {
		return nil, fmt.Errorf("%w: write audio: %v", domain.ErrStorage, err)
	}

	idx = append(idx, *art)
	idx, evicted := l.evict(idx)

	// Commit the index before touching any old files. Evicted entries
	// leave the catalog first; their audio is removed only once the new
	// index is durable, so a failed write never orphans metadata.
	if err := l.writeIndex(idx); err != nil {
		_ = os.Remove(art.FilePath)
		return nil, err
	}
	for _, old := range evicted {
		_ = os.Remove(old.FilePath)
		metrics.IncLibraryEviction()
	}
	return art, nil
}

// evict splits off the oldest entries above the cap. ULIDs sort by
// creation time, so lexicographic order is age order.
func (l *FileMusicLibrary) evict(idx []model.GeneratedArtifact) (kept, evicted []model.GeneratedArtifact) {
	if l.maxSongs <= 0 || len(idx) <= l.maxSongs {
		return idx, nil
	}
	sort.Slice(idx, func(i, j int) bool { return idx[i].ID < idx[j].ID })
	return idx[len(idx)-l.maxSongs:], idx[:len(idx)-l.maxSongs]
}

func (l *FileMusicLibrary) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidArgument
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, err := l.loadIndex()
	if err != nil {
		return err
	}
	kept := make([]model.GeneratedArtifact, 0, len(idx))
	var removed model.GeneratedArtifact
	found := false
	for _, a := range idx {
		if a.ID == id {
			removed = a
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return nil
	}
	if err := l.writeIndex(kept); err != nil {
		return err
	}
	if err := os.Remove(removed.FilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove audio: %v", domain.ErrStorage, err)
	}
	return nil
}

func (l *FileMusicLibrary) List(ctx context.Context) ([]model.GeneratedArtifact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, err := l.loadIndex()
	if err != nil {
		return nil, err
	}
	sort.Slice(idx, func(i, j int) bool { return idx[i].ID > idx[j].ID })
	return idx, nil
}

func (l *FileMusicLibrary) GetByID(ctx context.Context, id string) (*model.GeneratedArtifact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, err := l.loadIndex()
	if err != nil {
		return nil, err
	}
	for i := range idx {
		if idx[i].ID == id {
			a := idx[i]
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}
