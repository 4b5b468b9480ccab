package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/audit/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

type fakeRepoDB struct {
	mu        sync.Mutex
	records   []entity.Record
	createErr error
}

func (f *fakeRepoDB) CreateRecord(_ context.Context, in entity.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	f.records = append(f.records, in)
	return nil
}

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time {
	return c.now
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

func newTestUsecase(t *testing.T) (*Usecase, *fakeRepoDB, *stubClock) {
	t.Helper()

	repo := &fakeRepoDB{}
	clk := &stubClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	uc := New(Dependency{
		RepoDB:     repo,
		Validator:  v10,
		UID:        &seqNumberID{},
		Clock:      clk,
		Instrument: instrument.NewNoop(),
	})
	return uc, repo, clk
}

func TestConsumeOtpRequested(t *testing.T) {
	t.Run("PersistsRecord", func(t *testing.T) {
		// Arrange
		uc, repo, clk := newTestUsecase(t)

		// Act
		err := uc.ConsumeOtpRequested(context.Background(), ConsumeOtpRequestedInput{
			AccountID: 42,
			Phone:     "+15550001111",
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(repo.records) != 1 {
			t.Fatalf("expected one record, got %d", len(repo.records))
		}
		record := repo.records[0]
		if record.Kind != entity.KindOtpRequested || record.AccountID != 42 || record.Phone != "+15550001111" {
			t.Fatalf("unexpected record: %+v", record)
		}
		if !record.CreatedAt.Equal(clk.Now()) {
			t.Fatalf("expected created at %v, got %v", clk.Now(), record.CreatedAt)
		}
	})

	t.Run("InvalidPayloadIsDropped", func(t *testing.T) {
		// Arrange
		uc, repo, _ := newTestUsecase(t)

		// Act: a zero account id fails validation, which must not requeue.
		err := uc.ConsumeOtpRequested(context.Background(), ConsumeOtpRequestedInput{Phone: "+15550001111"})

		// Assert
		if err != nil {
			t.Fatalf("expected nil for invalid payload, got %v", err)
		}
		if len(repo.records) != 0 {
			t.Fatalf("expected no record, got %d", len(repo.records))
		}
	})

	t.Run("RepoFailureSurfaces", func(t *testing.T) {
		// Arrange
		uc, repo, _ := newTestUsecase(t)
		repo.createErr = errors.New("db down")

		// Act
		err := uc.ConsumeOtpRequested(context.Background(), ConsumeOtpRequestedInput{
			AccountID: 42,
			Phone:     "+15550001111",
		})

		// Assert
		if err == nil {
			t.Fatalf("expected repo error to surface for redelivery")
		}
	})
}

func TestConsumeOtpVerified(t *testing.T) {
	t.Run("PersistsRecordWithSession", func(t *testing.T) {
		// Arrange
		uc, repo, _ := newTestUsecase(t)

		// Act
		err := uc.ConsumeOtpVerified(context.Background(), ConsumeOtpVerifiedInput{
			AccountID: 42,
			Phone:     "+15550001111",
			SessionID: 9001,
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(repo.records) != 1 {
			t.Fatalf("expected one record, got %d", len(repo.records))
		}
		record := repo.records[0]
		if record.Kind != entity.KindOtpVerified {
			t.Fatalf("unexpected kind: %v", record.Kind)
		}
		if got, ok := record.Detail["session_id"].(int64); !ok || got != 9001 {
			t.Fatalf("expected session_id 9001 in detail, got %+v", record.Detail)
		}
	})
}

func TestConsumeOtpLocked(t *testing.T) {
	t.Run("PersistsRecordWithClientDetail", func(t *testing.T) {
		// Arrange
		uc, repo, _ := newTestUsecase(t)

		// Act
		err := uc.ConsumeOtpLocked(context.Background(), ConsumeOtpLockedInput{
			Phone:    "+15550001111",
			IP:       "203.0.113.9",
			DeviceID: "device-1",
		})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(repo.records) != 1 {
			t.Fatalf("expected one record, got %d", len(repo.records))
		}
		record := repo.records[0]
		if record.Kind != entity.KindOtpLocked || record.AccountID != 0 {
			t.Fatalf("unexpected record: %+v", record)
		}
		if record.Detail["ip"] != "203.0.113.9" || record.Detail["device_id"] != "device-1" {
			t.Fatalf("unexpected detail: %+v", record.Detail)
		}
	})
}
