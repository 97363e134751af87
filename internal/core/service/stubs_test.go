package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

// In-memory repository stubs shared by the service tests. All of them guard
// their maps so the concurrency tests can hammer them from multiple
// goroutines.

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.UserAccount
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.UserAccount)}
}

func cloneUser(u *domain.UserAccount) *domain.UserAccount {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[strings.ToLower(email)]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByDemoOrg(_ context.Context, org string) (*domain.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.DemoOrg == org {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.UserAccount) (*domain.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, exists := r.users[email]; exists {
		return nil, domain.ErrUserExists
	}
	created := cloneUser(user)
	created.ID = email
	created.Email = email
	r.users[email] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) Save(_ context.Context, user *domain.UserAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[strings.ToLower(user.Email)] = cloneUser(user)
	return nil
}

type stubRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
}

func newStubRefreshRepo() *stubRefreshRepo {
	return &stubRefreshRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func cloneToken(t *domain.RefreshToken) *domain.RefreshToken {
	clone := *t
	return &clone
}

func (r *stubRefreshRepo) FindByToken(_ context.Context, token string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[token]; ok {
		return cloneToken(t), nil
	}
	return nil, domain.ErrRefreshTokenNotFound
}

func (r *stubRefreshRepo) Save(_ context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Token] = cloneToken(token)
	return nil
}

func (r *stubRefreshRepo) Delete(_ context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token.Token)
	return nil
}

func (r *stubRefreshRepo) DeleteByUser(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.UserEmail == email {
			delete(r.tokens, k)
		}
	}
	return nil
}

func (r *stubRefreshRepo) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for k, t := range r.tokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(r.tokens, k)
			deleted++
		}
	}
	return deleted, nil
}

func (r *stubRefreshRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

type stubDemoKeyRepo struct {
	mu   sync.Mutex
	keys map[string]*domain.DemoKey
	// conflictRow simulates a lost insert race: the next Insert fails with
	// ErrDemoKeyExists and this row appears as the winner's.
	conflictRow *domain.DemoKey
	inserts     int
	saves       int
}

func newStubDemoKeyRepo() *stubDemoKeyRepo {
	return &stubDemoKeyRepo{keys: make(map[string]*domain.DemoKey)}
}

func demoKeyKey(keyID, org string) string {
	return keyID + "|" + org
}

func cloneDemoKey(k *domain.DemoKey) *domain.DemoKey {
	clone := *k
	if k.FirstUsedAt != nil {
		t := *k.FirstUsedAt
		clone.FirstUsedAt = &t
	}
	if k.LastUsedAt != nil {
		t := *k.LastUsedAt
		clone.LastUsedAt = &t
	}
	return &clone
}

func (r *stubDemoKeyRepo) FindByKeyIDAndOrg(_ context.Context, keyID, org string) (*domain.DemoKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if k, ok := r.keys[demoKeyKey(keyID, org)]; ok {
		return cloneDemoKey(k), nil
	}
	return nil, domain.ErrDemoKeyNotFound
}

func (r *stubDemoKeyRepo) FindByKeyID(_ context.Context, keyID string) (*domain.DemoKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.keys {
		if k.KeyID == keyID {
			return cloneDemoKey(k), nil
		}
	}
	return nil, domain.ErrDemoKeyNotFound
}

func (r *stubDemoKeyRepo) Insert(_ context.Context, key *domain.DemoKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.conflictRow != nil {
		winner := r.conflictRow
		r.conflictRow = nil
		r.keys[demoKeyKey(winner.KeyID, winner.Org)] = cloneDemoKey(winner)
		return domain.ErrDemoKeyExists
	}
	k := demoKeyKey(key.KeyID, key.Org)
	if _, exists := r.keys[k]; exists {
		return domain.ErrDemoKeyExists
	}
	r.keys[k] = cloneDemoKey(key)
	return nil
}

func (r *stubDemoKeyRepo) Save(_ context.Context, key *domain.DemoKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.keys[demoKeyKey(key.KeyID, key.Org)] = cloneDemoKey(key)
	return nil
}

func (r *stubDemoKeyRepo) get(keyID, org string) *domain.DemoKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	if k, ok := r.keys[demoKeyKey(keyID, org)]; ok {
		return cloneDemoKey(k)
	}
	return nil
}

type stubRedemptionRepo struct {
	mu   sync.Mutex
	rows []*domain.DemoRedemption
}

func (r *stubRedemptionRepo) Insert(_ context.Context, redemption *domain.DemoRedemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *redemption
	r.rows = append(r.rows, &clone)
	return nil
}

func (r *stubRedemptionRepo) all() []*domain.DemoRedemption {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.DemoRedemption(nil), r.rows...)
}
