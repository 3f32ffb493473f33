package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bluegenie-core/internal/config"
	"bluegenie-core/internal/domain"
	"bluegenie-core/internal/domain/model"
	"bluegenie-core/internal/domain/ports/adapter"
	"bluegenie-core/internal/domain/ports/repository"
	"bluegenie-core/internal/infra/metrics"
)

// Locker serializes generation work per user. The redis implementation lives
// in infra; tests use an in-memory fake.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// UpgradePromptFunc is invoked when a generation is blocked on entitlement.
// The surface layer decides how to present the upgrade offer.
type UpgradePromptFunc func(state model.EntitlementState)

// SessionUseCase orchestrates one user's companion session: conversation
// flow, music generation with quota accounting, and personality switching.
// Collaborator failures never escape raw; they become assistant-role error
// messages in the active log.
type SessionUseCase interface {
	SendMessage(ctx context.Context, content string) (*model.Message, error)
	SendImageMessage(ctx context.Context, content string, image adapter.ImagePayload, fileName string) (*model.Message, error)
	GenerateMusic(ctx context.Context, prompt string, rawMode bool) (*model.Message, error)

	ChangePersonality(ctx context.Context, personalityID string) error
	CurrentPersonality() model.Personality
	History(ctx context.Context) ([]model.Message, error)
	ToggleBookmark(ctx context.Context, messageID string) error
	ClearHistory(ctx context.Context) error

	Library(ctx context.Context) ([]model.GeneratedArtifact, error)
	DeleteTrack(ctx context.Context, artifactID string) error
}

type sessionUseCase struct {
	convo        repository.ConversationStore
	library      repository.ArtifactLibrary
	intents      repository.IntentLog
	profiles     repository.ProfileRepository
	entitlements EntitlementUseCase
	gen          adapter.GenerationService
	music        adapter.MusicService
	identity     adapter.IdentityService
	locker       Locker

	policy        model.QuotaPolicy
	genCfg        config.GenerationConfig
	upgradePrompt UpgradePromptFunc
	logger        zerolog.Logger

	mu     sync.Mutex
	active string // personality id
}

var _ SessionUseCase = (*sessionUseCase)(nil)

func NewSessionUseCase(
	convo repository.ConversationStore,
	library repository.ArtifactLibrary,
	intents repository.IntentLog,
	profiles repository.ProfileRepository,
	entitlements EntitlementUseCase,
	gen adapter.GenerationService,
	music adapter.MusicService,
	identity adapter.IdentityService,
	locker Locker,
	policy model.QuotaPolicy,
	genCfg config.GenerationConfig,
	upgradePrompt UpgradePromptFunc,
	logger *zerolog.Logger,
) *sessionUseCase {
	return &sessionUseCase{
		convo:         convo,
		library:       library,
		intents:       intents,
		profiles:      profiles,
		entitlements:  entitlements,
		gen:           gen,
		music:         music,
		identity:      identity,
		locker:        locker,
		policy:        policy,
		genCfg:        genCfg,
		upgradePrompt: upgradePrompt,
		logger:        logger.With().Str("component", "session_uc").Logger(),
		active:        model.PersonalityDefault,
	}
}

func (uc *sessionUseCase) CurrentPersonality() model.Personality {
	uc.mu.Lock()
	id := uc.active
	uc.mu.Unlock()
	p, _ := model.PersonalityByID(id)
	return p
}

func (uc *sessionUseCase) activeID() string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.active
}

func (uc *sessionUseCase) SendMessage(ctx context.Context, content string) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrInvalidArgument
	}
	personality := uc.activeID()

	if err := uc.maybeAutoReset(ctx, personality); err != nil {
		return nil, err
	}

	userMsg, err := model.NewMessage(personality, model.RoleUser, content)
	if err != nil {
		return nil, err
	}
	if err := uc.convo.Append(ctx, personality, *userMsg); err != nil {
		return nil, err
	}

	history, err := uc.recentHistory(ctx, personality)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, uc.genCfg.Timeout)
	defer cancel()
	reply, err := uc.gen.Chat(genCtx, content, history, personality)
	if err != nil {
		uc.logger.Warn().Err(err).Str("personality_id", personality).Msg("chat generation failed")
		return uc.appendAssistant(ctx, personality, chatErrorText(err))
	}
	return uc.appendAssistant(ctx, personality, reply)
}

func (uc *sessionUseCase) SendImageMessage(ctx context.Context, content string, image adapter.ImagePayload, fileName string) (*model.Message, error) {
	if len(image.Data) == 0 || image.MimeType == "" {
		return nil, domain.ErrInvalidArgument
	}
	personality := uc.activeID()

	if err := uc.maybeAutoReset(ctx, personality); err != nil {
		return nil, err
	}

	userMsg, err := model.NewMessage(personality, model.RoleUser, content)
	if err != nil {
		return nil, err
	}
	userMsg.WithAttachment(model.Attachment{
		URI:      "inline",
		MimeType: image.MimeType,
		Name:     fileName,
	}, strings.HasPrefix(image.MimeType, "image/"))
	if err := uc.convo.Append(ctx, personality, *userMsg); err != nil {
		return nil, err
	}

	history, err := uc.recentHistory(ctx, personality)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, uc.genCfg.Timeout)
	defer cancel()
	reply, err := uc.gen.AnalyzeImage(genCtx, content, image, history, personality)
	if err != nil {
		uc.logger.Warn().Err(err).Str("personality_id", personality).Msg("image analysis failed")
		return uc.appendAssistant(ctx, personality, chatErrorText(err))
	}
	return uc.appendAssistant(ctx, personality, reply)
}

func (uc *sessionUseCase) GenerateMusic(ctx context.Context, prompt string, rawMode bool) (*model.Message, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domain.ErrInvalidArgument
	}
	if len(prompt) > uc.genCfg.MaxPromptChars {
		return nil, domain.ErrPromptTooLong
	}
	userID := uc.identity.CurrentUserID()
	if userID == "" {
		return nil, domain.ErrNotSignedIn
	}
	personality := uc.activeID()

	token, err := uc.locker.TryLock(ctx, "genlock:"+userID, uc.genCfg.Timeout+10*time.Second)
	if err != nil {
		return nil, err
	}
	defer func() {
		if uerr := uc.locker.Unlock(context.Background(), "genlock:"+userID, token); uerr != nil {
			uc.logger.Warn().Err(uerr).Str("user_id", userID).Msg("generation lock not released")
		}
	}()

	// Authoritative check against the remote profile before anything is spent.
	sub, err := uc.entitlements.Reload(ctx, userID, uc.identity.CurrentEmail())
	if err != nil {
		return uc.appendAssistant(ctx, personality, chatErrorText(err))
	}
	counter := sub.Counter()
	if !counter.CanGenerate(uc.policy, time.Now()) {
		state := sub.State(uc.policy)
		metrics.IncEntitlementBlock(string(state))
		if uc.upgradePrompt != nil {
			uc.upgradePrompt(state)
		}
		return uc.appendAssistant(ctx, personality, upgradeText(state, uc.policy))
	}

	finalPrompt := prompt
	if !rawMode {
		finalPrompt = EnhanceMusicPrompt(prompt)
	}

	tier := "premium"
	if !counter.IsPremium {
		tier = "free"
	}

	result, err := uc.generateAudio(ctx, finalPrompt)
	if err != nil && !rawMode && isContentFiltered(err) {
		// Provider flagged the enhanced prompt; the user's own words often
		// pass where the expansion does not.
		uc.logger.Info().Str("user_id", userID).Msg("enhanced prompt flagged, retrying raw")
		result, err = uc.generateAudio(ctx, prompt)
	}
	if err != nil {
		metrics.IncGeneration(tier, "error")
		uc.logger.Warn().Err(err).Str("user_id", userID).Msg("music generation failed")
		return uc.appendAssistant(ctx, personality, musicErrorText(err))
	}

	freeTier := counter.InFreeTier(uc.policy)
	cost := counter.NextGenerationCost(uc.policy)
	art, err := uc.library.Save(ctx, result.Audio, prompt, result.MimeType, result.DurationSeconds, freeTier, cost)
	if err != nil {
		metrics.IncGeneration(tier, "error")
		uc.logger.Error().Err(err).Str("user_id", userID).Msg("saving generated track failed")
		return uc.appendAssistant(ctx, personality, musicErrorText(err))
	}

	// The track is durable; everything past this point is accounting. The
	// intent entry lets a crashed remote sync heal on the next reload.
	intent := model.GenerationIntent{
		ID:         uuid.NewString(),
		UserID:     userID,
		ArtifactID: art.ID,
		CreatedAt:  time.Now(),
	}
	journaled := true
	if err := uc.intents.Append(ctx, intent); err != nil {
		journaled = false
		uc.logger.Error().Err(err).Str("user_id", userID).Msg("intent journal append failed")
	}
	counter.RecordGeneration()

	if err := uc.profiles.IncrementSongCount(ctx, repository.NoTX, userID); err != nil {
		// Left pending in the journal; the next reload replays it.
		uc.logger.Warn().Err(err).Str("user_id", userID).Msg("remote song count sync deferred")
	} else if journaled {
		if err := uc.intents.Ack(ctx, intent.ID); err != nil {
			uc.logger.Warn().Err(err).Str("intent_id", intent.ID).Msg("intent ack failed")
		}
	}

	if fresh, rerr := uc.entitlements.Reload(ctx, userID, uc.identity.CurrentEmail()); rerr == nil {
		counter = fresh.Counter()
	}
	metrics.IncGeneration(tier, "success")
	return uc.appendAssistant(ctx, personality, successText(counter, uc.policy))
}

func (uc *sessionUseCase) generateAudio(ctx context.Context, prompt string) (*adapter.AudioResult, error) {
	genCtx, cancel := context.WithTimeout(ctx, uc.genCfg.Timeout)
	defer cancel()
	start := time.Now()
	result, err := uc.music.GenerateMusic(genCtx, prompt)
	metrics.ObserveGenerationLatency(uc.music.Name(), int(time.Since(start).Milliseconds()), err == nil)
	return result, err
}

func (uc *sessionUseCase) ChangePersonality(ctx context.Context, personalityID string) error {
	p, ok := model.PersonalityByID(personalityID)
	if !ok {
		return fmt.Errorf("%w: personality %q", domain.ErrNotFound, personalityID)
	}
	if !p.Free {
		if err := uc.requirePremium(ctx); err != nil {
			return err
		}
	}
	uc.mu.Lock()
	uc.active = p.ID
	uc.mu.Unlock()
	return uc.seedGreetingIfEmpty(ctx, p)
}

// requirePremium gates premium-only personalities on the current entitlement.
func (uc *sessionUseCase) requirePremium(ctx context.Context) error {
	userID := uc.identity.CurrentUserID()
	if userID == "" {
		return domain.ErrNotSignedIn
	}
	sub, err := uc.entitlements.Reload(ctx, userID, uc.identity.CurrentEmail())
	if err != nil {
		return err
	}
	if !sub.IsPremium {
		return fmt.Errorf("%w: premium personality", domain.ErrEntitlementBlocked)
	}
	return nil
}

// seedGreetingIfEmpty writes the personality greeting into an empty log so a
// switched-to personality never opens on a blank screen. Existing logs are
// left exactly as they were.
func (uc *sessionUseCase) seedGreetingIfEmpty(ctx context.Context, p model.Personality) error {
	msgs, err := uc.convo.Load(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(msgs) > 0 {
		return nil
	}
	greeting, err := model.NewMessage(p.ID, model.RoleAssistant, p.Greeting)
	if err != nil {
		return err
	}
	return uc.convo.Append(ctx, p.ID, *greeting)
}

func (uc *sessionUseCase) History(ctx context.Context) ([]model.Message, error) {
	return uc.convo.Load(ctx, uc.activeID())
}

func (uc *sessionUseCase) ToggleBookmark(ctx context.Context, messageID string) error {
	if messageID == "" {
		return domain.ErrInvalidArgument
	}
	return uc.convo.ToggleBookmark(ctx, uc.activeID(), messageID)
}

func (uc *sessionUseCase) ClearHistory(ctx context.Context) error {
	personality := uc.activeID()
	if err := uc.convo.Clear(ctx, personality); err != nil {
		return err
	}
	metrics.IncConversationReset("manual")
	p, ok := model.PersonalityByID(personality)
	if !ok {
		return fmt.Errorf("%w: personality %q", domain.ErrNotFound, personality)
	}
	return uc.seedGreetingIfEmpty(ctx, p)
}

func (uc *sessionUseCase) Library(ctx context.Context) ([]model.GeneratedArtifact, error) {
	return uc.library.List(ctx)
}

func (uc *sessionUseCase) DeleteTrack(ctx context.Context, artifactID string) error {
	return uc.library.Delete(ctx, artifactID)
}

// maybeAutoReset truncates a stale log to the reset notice before the next
// turn is appended.
func (uc *sessionUseCase) maybeAutoReset(ctx context.Context, personalityID string) error {
	reset, err := uc.convo.ShouldAutoReset(ctx, personalityID)
	if err != nil || !reset {
		return err
	}
	if err := uc.convo.Clear(ctx, personalityID); err != nil {
		return err
	}
	metrics.IncConversationReset("idle")
	notice, err := model.NewMessage(personalityID, model.RoleAssistant, model.AutoResetNotice)
	if err != nil {
		return err
	}
	return uc.convo.Append(ctx, personalityID, *notice)
}

func (uc *sessionUseCase) recentHistory(ctx context.Context, personalityID string) ([]adapter.Message, error) {
	msgs, err := uc.convo.Load(ctx, personalityID)
	if err != nil {
		return nil, err
	}
	if n := uc.genCfg.ContextMessages; n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]adapter.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, adapter.Message{Role: string(m.Role), Content: m.Content})
	}
	return out, nil
}

func (uc *sessionUseCase) appendAssistant(ctx context.Context, personalityID, content string) (*model.Message, error) {
	msg, err := model.NewMessage(personalityID, model.RoleAssistant, content)
	if err != nil {
		return nil, err
	}
	if err := uc.convo.Append(ctx, personalityID, *msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// isContentFiltered recognizes provider-side safety rejections from the
// error text, the only signal the providers give.
func isContentFiltered(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "flagged") || strings.Contains(s, "safety")
}

func chatErrorText(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "That took longer than expected and I had to stop waiting. Mind trying again?"
	case errors.Is(err, domain.ErrNetwork):
		return "I'm having trouble reaching the servers right now. Please check your connection and try again."
	default:
		return "Something went wrong on my end. Please try again in a moment."
	}
}

func musicErrorText(err error) string {
	switch {
	case isContentFiltered(err):
		return "That request couldn't be turned into music because it was flagged by the safety filter. Try rephrasing it and I'll give it another go."
	case errors.Is(err, context.DeadlineExceeded):
		return "The track is taking longer than expected. Please try again in a moment."
	case errors.Is(err, domain.ErrStorage):
		return "The track was generated but couldn't be saved to your library. Please try again."
	default:
		return "I couldn't generate that track. Please try again in a moment."
	}
}

func upgradeText(state model.EntitlementState, policy model.QuotaPolicy) string {
	if state == model.EntitlementPremiumRenewal {
		return fmt.Sprintf("Your premium period has ended. Renew to keep making up to %d songs a month!", policy.PremiumSongsPerPeriod)
	}
	return fmt.Sprintf("You've used all %d free songs. Upgrade to Premium for %d songs per month!", policy.FreeSongs, policy.PremiumSongsPerPeriod)
}

func successText(c model.UsageCounter, policy model.QuotaPolicy) string {
	var costInfo string
	if c.IsPremium {
		remaining := policy.PremiumSongsPerPeriod - c.SongsThisPeriod
		costInfo = fmt.Sprintf("Premium: %d of %d songs remaining this month.", remaining, policy.PremiumSongsPerPeriod)
	} else if remaining := policy.FreeSongs - c.SongCount; remaining > 0 {
		costInfo = fmt.Sprintf("This one was free! You have %d free songs remaining.", remaining)
	} else {
		costInfo = fmt.Sprintf("Upgrade to Premium for %d songs per month!", policy.PremiumSongsPerPeriod)
	}
	return "Your music is ready! " + costInfo + " The track is saved to your library."
}
