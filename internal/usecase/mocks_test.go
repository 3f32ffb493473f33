package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"bluegenie-core/internal/domain"
	"bluegenie-core/internal/domain/model"
	"bluegenie-core/internal/domain/ports/adapter"
	"bluegenie-core/internal/domain/ports/repository"
)

// ---- profile repository ----

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.UserProfile

	failWith       error // every call fails with this when set
	incrementCalls int
}

var _ repository.ProfileRepository = (*fakeProfileRepo)(nil)

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]*model.UserProfile{}}
}

func (r *fakeProfileRepo) GetOrCreate(ctx context.Context, tx repository.Tx, userID, email string) (*model.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	if p, ok := r.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	p, err := model.NewUserProfile(userID, email)
	if err != nil {
		return nil, err
	}
	r.profiles[userID] = p
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) FindByID(ctx context.Context, tx repository.Tx, userID string) (*model.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) IncrementSongCount(ctx context.Context, tx repository.Tx, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	p, ok := r.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.SongCount++
	p.SongsThisPeriod++
	r.incrementCalls++
	return nil
}

func (r *fakeProfileRepo) IncrementMessageCount(ctx context.Context, tx repository.Tx, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	p, ok := r.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.MessageCount++
	return nil
}

func (r *fakeProfileRepo) ActivatePremium(ctx context.Context, tx repository.Tx, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	p, ok := r.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsPremium = true
	p.SubscriptionStartDate = &at
	p.PeriodStartDate = &at
	p.SongsThisPeriod = 0
	return nil
}

func (r *fakeProfileRepo) RenewPeriod(ctx context.Context, tx repository.Tx, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	p, ok := r.profiles[userID]
	if !ok || !p.IsPremium {
		return domain.ErrNotFound
	}
	p.PeriodStartDate = &at
	p.SongsThisPeriod = 0
	return nil
}

func (r *fakeProfileRepo) FindPremiumDueForRenewal(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	var due []*model.UserProfile
	for _, p := range r.profiles {
		if !p.IsPremium {
			continue
		}
		start := p.PeriodStartDate
		if start == nil {
			start = p.SubscriptionStartDate
		}
		if start != nil && !start.After(cutoff) {
			cp := *p
			due = append(due, &cp)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

func (r *fakeProfileRepo) seed(p *model.UserProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.profiles[p.ID] = &cp
}

// ---- intent log ----

type fakeIntentLog struct {
	mu      sync.Mutex
	intents []model.GenerationIntent
	acked   map[string]bool
}

var _ repository.IntentLog = (*fakeIntentLog)(nil)

func newFakeIntentLog() *fakeIntentLog {
	return &fakeIntentLog{acked: map[string]bool{}}
}

func (l *fakeIntentLog) Append(ctx context.Context, intent model.GenerationIntent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intents = append(l.intents, intent)
	return nil
}

func (l *fakeIntentLog) Ack(ctx context.Context, intentID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acked[intentID] = true
	return nil
}

func (l *fakeIntentLog) Pending(ctx context.Context, userID string) ([]model.GenerationIntent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []model.GenerationIntent
	for _, in := range l.intents {
		if in.UserID == userID && !l.acked[in.ID] {
			out = append(out, in)
		}
	}
	return out, nil
}

// ---- subscription cache ----

type fakeSubscriptionCache struct {
	mu    sync.Mutex
	views map[string]model.UserSubscription
}

var _ SubscriptionCache = (*fakeSubscriptionCache)(nil)

func newFakeSubscriptionCache() *fakeSubscriptionCache {
	return &fakeSubscriptionCache{views: map[string]model.UserSubscription{}}
}

func (c *fakeSubscriptionCache) Store(ctx context.Context, sub *model.UserSubscription) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[sub.UserID] = *sub
	return nil
}

func (c *fakeSubscriptionCache) Get(ctx context.Context, userID string) (*model.UserSubscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (c *fakeSubscriptionCache) Delete(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, userID)
	return nil
}

// ---- conversation store ----

type fakeConversationStore struct {
	mu        sync.Mutex
	logs      map[string][]model.Message
	autoReset map[string]bool
}

var _ repository.ConversationStore = (*fakeConversationStore)(nil)

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{
		logs:      map[string][]model.Message{},
		autoReset: map[string]bool{},
	}
}

func (s *fakeConversationStore) Load(ctx context.Context, personalityID string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Message(nil), s.logs[personalityID]...), nil
}

func (s *fakeConversationStore) Append(ctx context.Context, personalityID string, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[personalityID] = append(s.logs[personalityID], msg)
	return nil
}

func (s *fakeConversationStore) Clear(ctx context.Context, personalityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, personalityID)
	s.autoReset[personalityID] = false
	return nil
}

func (s *fakeConversationStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = map[string][]model.Message{}
	return nil
}

func (s *fakeConversationStore) ShouldAutoReset(ctx context.Context, personalityID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoReset[personalityID], nil
}

func (s *fakeConversationStore) ToggleBookmark(ctx context.Context, personalityID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.logs[personalityID]
	for i := range log {
		if log[i].ID == messageID {
			log[i].Bookmarked = !log[i].Bookmarked
			break
		}
	}
	return nil
}

// ---- artifact library ----

type fakeArtifactLibrary struct {
	mu       sync.Mutex
	saved    []model.GeneratedArtifact
	failWith error
}

var _ repository.ArtifactLibrary = (*fakeArtifactLibrary)(nil)

func newFakeArtifactLibrary() *fakeArtifactLibrary {
	return &fakeArtifactLibrary{}
}

func (l *fakeArtifactLibrary) Save(ctx context.Context, audio []byte, prompt, mimeType string, durationSeconds int, freeTier bool, costCents int) (*model.GeneratedArtifact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return nil, l.failWith
	}
	art, err := model.NewGeneratedArtifact(prompt, mimeType, durationSeconds, freeTier, costCents)
	if err != nil {
		return nil, err
	}
	l.saved = append(l.saved, *art)
	return art, nil
}

func (l *fakeArtifactLibrary) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.saved {
		if l.saved[i].ID == id {
			l.saved = append(l.saved[:i], l.saved[i+1:]...)
			break
		}
	}
	return nil
}

func (l *fakeArtifactLibrary) List(ctx context.Context) ([]model.GeneratedArtifact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.GeneratedArtifact(nil), l.saved...), nil
}

func (l *fakeArtifactLibrary) GetByID(ctx context.Context, id string) (*model.GeneratedArtifact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.saved {
		if l.saved[i].ID == id {
			a := l.saved[i]
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- generation adapters ----

type fakeGenerationService struct {
	reply    string
	failWith error
	calls    int
}

var _ adapter.GenerationService = (*fakeGenerationService)(nil)

func (g *fakeGenerationService) Chat(ctx context.Context, prompt string, history []adapter.Message, personalityID string) (string, error) {
	g.calls++
	if g.failWith != nil {
		return "", g.failWith
	}
	return g.reply, nil
}

func (g *fakeGenerationService) AnalyzeImage(ctx context.Context, prompt string, image adapter.ImagePayload, history []adapter.Message, personalityID string) (string, error) {
	g.calls++
	if g.failWith != nil {
		return "", g.failWith
	}
	return g.reply, nil
}

type fakeMusicService struct {
	mu       sync.Mutex
	failWith error
	failOnce bool // fail only the first call
	prompts  []string
}

var _ adapter.MusicService = (*fakeMusicService)(nil)

func (m *fakeMusicService) Name() string { return "fake-music" }

func (m *fakeMusicService) GenerateMusic(ctx context.Context, prompt string) (*adapter.AudioResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.failWith != nil {
		err := m.failWith
		if m.failOnce {
			m.failWith = nil
		}
		return nil, err
	}
	return &adapter.AudioResult{Audio: []byte("audio"), MimeType: "audio/mpeg", DurationSeconds: 120}, nil
}

func (m *fakeMusicService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// ---- identity ----

type fakeIdentity struct {
	userID string
	email  string
}

var _ adapter.IdentityService = (*fakeIdentity)(nil)

func (i *fakeIdentity) SignIn(ctx context.Context, idToken string) error { return nil }
func (i *fakeIdentity) SignOut(ctx context.Context) error                { return nil }
func (i *fakeIdentity) CurrentUserID() string                            { return i.userID }
func (i *fakeIdentity) CurrentEmail() string                             { return i.email }
func (i *fakeIdentity) IsSignedIn() bool                                 { return i.userID != "" }

// ---- locker ----

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
}

var _ Locker = (*fakeLocker)(nil)

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]string{}}
}

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", domain.ErrGenerationBusy
	}
	l.held[key] = "token"
	return "token", nil
}

func (l *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
