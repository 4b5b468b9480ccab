package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

const testConfigYAML = `
modules:
  identity:
    otp_ttl_minutes: 5
    otp_cooldown_seconds: 60
    otp_max_attempts: 5
    otp_lock_ttl_hours: 1
    session_ttl_hours: 240
`

type fakeRepoDB struct {
	mu sync.Mutex

	accountsByPhone map[string]*entity.Account
	sessions        []entity.Session
	revokedTokens   []string

	upsertErr     error
	setOTPErr     error
	consumeResult *bool
}

func newFakeRepoDB() *fakeRepoDB {
	return &fakeRepoDB{accountsByPhone: map[string]*entity.Account{}}
}

func (f *fakeRepoDB) UpsertAccountByPhone(_ context.Context, in entity.NewAccount) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return nil, f.upsertErr
	}

	if acc, ok := f.accountsByPhone[in.Phone]; ok {
		cp := *acc
		return &cp, nil
	}

	acc := &entity.Account{
		ID:       in.ID,
		Phone:    in.Phone,
		Email:    in.Email,
		FullName: in.FullName,
		Status:   in.Status,
	}
	f.accountsByPhone[in.Phone] = acc

	cp := *acc
	return &cp, nil
}

func (f *fakeRepoDB) GetAccountByPhone(_ context.Context, phone string) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc, ok := f.accountsByPhone[phone]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	cp := *acc
	return &cp, nil
}

func (f *fakeRepoDB) GetAccountByID(_ context.Context, id int64) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, acc := range f.accountsByPhone {
		if acc.ID == id {
			cp := *acc
			return &cp, nil
		}
	}

	return nil, goerror.ErrNotFound
}

func (f *fakeRepoDB) SetAccountOTP(_ context.Context, accountID int64, otpHash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setOTPErr != nil {
		return f.setOTPErr
	}

	for _, acc := range f.accountsByPhone {
		if acc.ID == accountID {
			acc.OTPHash = &otpHash
			acc.OTPExpiresAt = &expiresAt
			return nil
		}
	}

	return goerror.ErrNotFound
}

func (f *fakeRepoDB) ClearAccountOTP(_ context.Context, accountID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, acc := range f.accountsByPhone {
		if acc.ID == accountID {
			acc.OTPHash = nil
			acc.OTPExpiresAt = nil
			return nil
		}
	}

	return goerror.ErrNotFound
}

func (f *fakeRepoDB) ConsumeAccountOTP(_ context.Context, accountID int64, otpHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.consumeResult != nil {
		return *f.consumeResult, nil
	}

	for _, acc := range f.accountsByPhone {
		if acc.ID == accountID && acc.OTPHash != nil && *acc.OTPHash == otpHash {
			acc.OTPHash = nil
			acc.OTPExpiresAt = nil
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeRepoDB) CreateSession(_ context.Context, in entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sessions = append(f.sessions, in)
	return nil
}

func (f *fakeRepoDB) RevokeSession(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.revokedTokens = append(f.revokedTokens, tokenHash)
	return nil
}

type fakeMessaging struct {
	mu        sync.Mutex
	requested []OtpRequestedEvent
	verified  []OtpVerifiedEvent
	locked    []OtpLockedEvent
}

func (f *fakeMessaging) PublishOtpRequested(_ context.Context, msg OtpRequestedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, msg)
	return nil
}

func (f *fakeMessaging) PublishOtpVerified(_ context.Context, msg OtpVerifiedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = append(f.verified, msg)
	return nil
}

func (f *fakeMessaging) PublishOtpLocked(_ context.Context, msg OtpLockedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = append(f.locked, msg)
	return nil
}

type fakeSms struct {
	mu    sync.Mutex
	sent  []sms.Message
	fail  bool
	errIs error
}

func (f *fakeSms) Send(_ context.Context, msg sms.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		if f.errIs != nil {
			return f.errIs
		}
		return sms.ErrGatewayRejected
	}

	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSms) Close() error { return nil }

type stubCodeGenerator struct {
	code string
}

func (s stubCodeGenerator) Generate() (string, error) {
	return s.code, nil
}

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqNumberID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqNumberID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type stubStringID struct {
	value string
}

func (s stubStringID) Generate() string {
	return s.value
}

type testEnv struct {
	uc        *Usecase
	repoDB    *fakeRepoDB
	messaging *fakeMessaging
	sms       *fakeSms
	clock     *stubClock
	goroutine *goroutine.Manager
	redis     *miniredis.Miniredis
}

const (
	testPhone = "+15550001111"
	testCode  = "482913"
	// 64 hex characters, the shape the object id generator produces.
	testToken = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Errorf("failed to close redis client: %v", err)
		}
	})

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	clk := &stubClock{now: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}

	tokenizer, err := jwt.NewHS512(jwt.Config{
		Secret:     []byte(strings.Repeat("s", 64)),
		Issuer:     "otpgate-test",
		Audiences:  []string{"otpgate"},
		TTLMinutes: 15 * time.Minute,
		Clock:      clk,
		UUID:       stubStringID{value: "jti-1"},
	})
	if err != nil {
		t.Fatalf("failed to build jwt: %v", err)
	}

	env := &testEnv{
		repoDB:    newFakeRepoDB(),
		messaging: &fakeMessaging{},
		sms:       &fakeSms{},
		clock:     clk,
		goroutine: goroutine.NewManager(10),
		redis:     mr,
	}

	env.uc = New(Dependency{
		RepoDB:        env.repoDB,
		RepoMessaging: env.messaging,
		RateLimit:     ratelimit.NewRedis(client),
		Sms:           env.sms,
		Validator:     v10,
		Config:        cfg,
		HMAC:          hash.NewHMACSHA256("test-secret"),
		UID:           &seqNumberID{},
		OID:           stubStringID{value: testToken},
		OTPCode:       stubCodeGenerator{code: testCode},
		Clock:         clk,
		JWT:           tokenizer,
		Instrument:    instrument.NewNoop(),
		Goroutine:     env.goroutine,
	})

	return env
}

// drain waits for the async event publishes scheduled by the usecase.
func (e *testEnv) drain(t *testing.T) {
	t.Helper()

	if err := e.goroutine.Wait(); err != nil {
		t.Fatalf("unexpected goroutine error: %v", err)
	}
}

func codeOf(t *testing.T, err error) goerror.Code {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected goerror.Error, got %T: %v", err, err)
	}
	return gerr.Code()
}
