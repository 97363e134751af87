package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pvmanagement/auth-system/internal/core/domain"
	"github.com/pvmanagement/auth-system/internal/core/ports"
)

const (
	demoEmailDomain   = "demo.pv"
	demoEmailFallback = "demo"
	demoSlugMaxLen    = 32
)

// DemoAccessConfig holds the redemption policy knobs.
type DemoAccessConfig struct {
	// Scope is the literal a demo token's scope claim must equal.
	Scope string
	// DefaultMaxActivations applies to lazily created keys and to
	// pre-existing rows whose limit was never set.
	DefaultMaxActivations int
	// KeyValidity is the window granted to a key on first redemption.
	KeyValidity time.Duration
}

// DemoAccessService converts a signed demo token into a provisioned tenant
// account with real session tokens. Key rows are created lazily on first
// redemption; a lost insert race is recovered with a single bounded retry
// rather than surfaced to the caller.
type DemoAccessService struct {
	tokens      ports.TokenService
	keys        ports.DemoKeyRepository
	redemptions ports.DemoRedemptionRepository
	users       ports.UserRepository
	auth        ports.AuthService
	cfg         DemoAccessConfig
	log         zerolog.Logger
}

func NewDemoAccessService(
	tokens ports.TokenService,
	keys ports.DemoKeyRepository,
	redemptions ports.DemoRedemptionRepository,
	users ports.UserRepository,
	auth ports.AuthService,
	cfg DemoAccessConfig,
	log zerolog.Logger,
) *DemoAccessService {
	if cfg.Scope == "" {
		cfg.Scope = "demo"
	}
	if cfg.DefaultMaxActivations <= 0 {
		cfg.DefaultMaxActivations = 3
	}
	if cfg.KeyValidity <= 0 {
		cfg.KeyValidity = 10 * 24 * time.Hour
	}
	return &DemoAccessService{
		tokens:      tokens,
		keys:        keys,
		redemptions: redemptions,
		users:       users,
		auth:        auth,
		cfg:         cfg,
		log:         log,
	}
}

// Redeem validates the demo token, consumes one activation of its key and
// issues session tokens for the demo tenant account. The audit record and
// token issuance happen only after the key has been persisted, so the audit
// log and the activation counter never diverge by more than one retried write.
func (s *DemoAccessService) Redeem(ctx context.Context, demoToken, clientIP, userAgent string) (*domain.AuthResult, error) {
	claims, err := s.tokens.ParseAndValidateDemoToken(demoToken)
	if err != nil {
		return nil, err
	}
	if claims.Scope != s.cfg.Scope {
		return nil, domain.NewDemoAccessError("Demo token has invalid scope")
	}

	now := time.Now().UTC()

	key, err := s.consumeActivation(ctx, claims, now)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveDemoUser(ctx, claims.Org, now)
	if err != nil {
		return nil, err
	}

	redemption := &domain.DemoRedemption{
		KeyID:      key.KeyID,
		Org:        key.Org,
		IP:         clientIP,
		UserAgent:  userAgent,
		RedeemedAt: now,
	}
	if err := s.redemptions.Insert(ctx, redemption); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("key_id", key.KeyID).
		Str("org", key.Org).
		Int("activations", key.Activations).
		Msg("demo key redeemed")

	return s.auth.IssueTokensForUser(ctx, user)
}

// FindTokenDetails resolves demo-key metadata by key id. Used by the
// demo-login route to map its slug before redeeming.
func (s *DemoAccessService) FindTokenDetails(ctx context.Context, keyID string) (*domain.DemoKey, error) {
	return s.keys.FindByKeyID(ctx, keyID)
}

// consumeActivation validates the key, advances its counters and persists it.
// When two first-time redemptions race to insert the same (key_id, org) pair,
// the loser re-fetches the winner's row and applies its activation there.
func (s *DemoAccessService) consumeActivation(ctx context.Context, claims *domain.DemoClaims, now time.Time) (*domain.DemoKey, error) {
	key, err := s.keys.FindByKeyIDAndOrg(ctx, claims.KeyID, claims.Org)
	switch {
	case err == nil:
		if err := s.checkKey(key, now); err != nil {
			return nil, err
		}
		s.stampActivation(key, now)
		if err := s.keys.Save(ctx, key); err != nil {
			return nil, err
		}
		return key, nil

	case errors.Is(err, domain.ErrDemoKeyNotFound):
		key = s.newKeyFromClaims(claims, now)
		s.stampActivation(key, now)
		insertErr := s.keys.Insert(ctx, key)
		if insertErr == nil {
			return key, nil
		}
		if !errors.Is(insertErr, domain.ErrDemoKeyExists) {
			return nil, insertErr
		}
		// Lost the insert race; the local row is discarded and the
		// activation lands on the row the winner created. One retry only.
		existing, err := s.keys.FindByKeyIDAndOrg(ctx, claims.KeyID, claims.Org)
		if err != nil {
			return nil, err
		}
		if err := s.checkKey(existing, now); err != nil {
			return nil, err
		}
		s.stampActivation(existing, now)
		if err := s.keys.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil

	default:
		return nil, err
	}
}

func (s *DemoAccessService) checkKey(key *domain.DemoKey, now time.Time) error {
	if key.Revoked {
		return domain.NewDemoAccessError("Demo key has been revoked")
	}
	if !key.ExpiresAt.IsZero() && key.ExpiresAt.Before(now) {
		return domain.NewDemoAccessError("Demo key has expired")
	}
	// A pre-existing row without a limit falls back to the configured
	// default rather than granting unlimited activations.
	if key.MaxActivations <= 0 {
		key.MaxActivations = s.cfg.DefaultMaxActivations
	}
	if key.Activations >= key.MaxActivations {
		return domain.NewDemoAccessError("Demo key activation limit reached")
	}
	return nil
}

func (s *DemoAccessService) stampActivation(key *domain.DemoKey, now time.Time) {
	if key.FirstUsedAt == nil {
		t := now
		key.FirstUsedAt = &t
	}
	t := now
	key.LastUsedAt = &t
	key.Activations++
	if key.ExpiresAt.IsZero() {
		key.ExpiresAt = now.Add(s.cfg.KeyValidity)
	}
}

func (s *DemoAccessService) newKeyFromClaims(claims *domain.DemoClaims, now time.Time) *domain.DemoKey {
	key := &domain.DemoKey{
		KeyID:          claims.KeyID,
		Org:            claims.Org,
		MaxActivations: s.cfg.DefaultMaxActivations,
		ExpiresAt:      now.Add(s.cfg.KeyValidity),
	}
	if claims.ExpiresAt != nil {
		key.ExpiresAt = *claims.ExpiresAt
	}
	return key
}

// resolveDemoUser returns the tenant account for org, synthesizing it on
// first redemption with a deterministic demo email and a throwaway password.
func (s *DemoAccessService) resolveDemoUser(ctx context.Context, org string, now time.Time) (*domain.UserAccount, error) {
	user, err := s.users.FindByDemoOrg(ctx, org)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user = &domain.UserAccount{
		Email:        demoEmail(org),
		DisplayName:  "Demo User",
		PasswordHash: string(hash),
		DemoOrg:      org,
		Roles:        []string{domain.RoleUser, domain.RoleDemo},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, domain.ErrUserExists) {
		return nil, err
	}
	// Concurrent redemption created the account first; reuse it.
	return s.users.FindByDemoOrg(ctx, org)
}

// demoEmail derives the tenant email from a slug of the org name: lower-cased,
// non-alphanumeric runs collapsed to single hyphens, truncated to
// demoSlugMaxLen. An org with no alphanumerics falls back to a fixed local
// part.
func demoEmail(org string) string {
	slug := orgSlug(org)
	if slug == "" {
		slug = demoEmailFallback
	}
	return slug + "@" + demoEmailDomain
}

func orgSlug(org string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(org) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > demoSlugMaxLen {
		slug = strings.TrimRight(slug[:demoSlugMaxLen], "-")
	}
	return slug
}
