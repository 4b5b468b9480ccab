package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/otpcode"
	"github.com/shandysiswandi/otpgate/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// maxDeviceIDLength caps the device identifier used in rate-limit keys so a
// client cannot mint unbounded key space.
const maxDeviceIDLength = 64

type OtpRequestedEvent struct {
	AccountID int64
	Phone     string
}

type OtpVerifiedEvent struct {
	AccountID int64
	Phone     string
	SessionID int64
}

type OtpLockedEvent struct {
	Phone    string
	IP       string
	DeviceID string
}

type repoMessaging interface {
	PublishOtpRequested(ctx context.Context, msg OtpRequestedEvent) error
	PublishOtpVerified(ctx context.Context, msg OtpVerifiedEvent) error
	PublishOtpLocked(ctx context.Context, msg OtpLockedEvent) error
}

type repoDB interface {
	UpsertAccountByPhone(ctx context.Context, in entity.NewAccount) (*entity.Account, error)
	GetAccountByPhone(ctx context.Context, phone string) (*entity.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*entity.Account, error)

	SetAccountOTP(ctx context.Context, accountID int64, otpHash string, expiresAt time.Time) error
	ClearAccountOTP(ctx context.Context, accountID int64) error
	ConsumeAccountOTP(ctx context.Context, accountID int64, otpHash string) (bool, error)

	CreateSession(ctx context.Context, in entity.Session) error
	RevokeSession(ctx context.Context, tokenHash string) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	rateLimit     ratelimit.Store
	sms           sms.Sms
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	uid           uid.NumberID
	oid           uid.StringID
	otpCode       otpcode.Generator
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	RateLimit     ratelimit.Store
	Sms           sms.Sms
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	UID           uid.NumberID
	OID           uid.StringID
	OTPCode       otpcode.Generator
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		rateLimit:     dep.RateLimit,
		sms:           dep.Sms,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		uid:           dep.UID,
		oid:           dep.OID,
		otpCode:       dep.OTPCode,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) ensureAccountStatusAllowed(ctx context.Context, accountID int64, status entity.AccountStatus) error {
	switch status.Ensure() {
	case entity.AccountStatusBanned:
		slog.WarnContext(ctx, "account is banned", "account_id", accountID)
		return goerror.NewBusiness("account is banned", goerror.CodeForbidden)

	case entity.AccountStatusInactive:
		slog.WarnContext(ctx, "account is deactivated", "account_id", accountID)
		return goerror.NewBusiness("account is deactivated", goerror.CodeForbidden)

	case entity.AccountStatusUnknown:
		slog.WarnContext(ctx, "account status is unrecognized", "account_id", accountID)
		return goerror.NewBusiness("account status is unrecognized", goerror.CodeForbidden)

	default:
		return nil
	}
}

// placeholderEmail derives a stable synthetic email for phone-only accounts.
func placeholderEmail(phone string) string {
	sum := sha256.Sum256([]byte(phone))
	return hex.EncodeToString(sum[:])[:10] + "@otpgate.sms"
}

// truncateDeviceID normalizes the client-supplied device identifier.
func truncateDeviceID(deviceID string) string {
	if len(deviceID) > maxDeviceIDLength {
		return deviceID[:maxDeviceIDLength]
	}
	return deviceID
}

func cooldownKey(phone string) string {
	return "otp:cooldown:" + phone
}

func attemptsKey(phone, ip, deviceID string) string {
	return "otp:attempts:" + phone + ":" + ip + ":" + deviceID
}

func lockKey(phone, ip, deviceID string) string {
	return "otp:lock:" + phone + ":" + ip + ":" + deviceID
}
