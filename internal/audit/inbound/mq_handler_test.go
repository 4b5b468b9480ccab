package inbound

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/audit/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
)

type fakeUsecase struct {
	requested []usecase.ConsumeOtpRequestedInput
	verified  []usecase.ConsumeOtpVerifiedInput
	locked    []usecase.ConsumeOtpLockedInput
}

func (f *fakeUsecase) ConsumeOtpRequested(_ context.Context, in usecase.ConsumeOtpRequestedInput) error {
	f.requested = append(f.requested, in)
	return nil
}

func (f *fakeUsecase) ConsumeOtpVerified(_ context.Context, in usecase.ConsumeOtpVerifiedInput) error {
	f.verified = append(f.verified, in)
	return nil
}

func (f *fakeUsecase) ConsumeOtpLocked(_ context.Context, in usecase.ConsumeOtpLockedInput) error {
	f.locked = append(f.locked, in)
	return nil
}

type fakeMessage struct {
	body    []byte
	headers []messaging.Header
}

func (m *fakeMessage) Body() []byte                  { return m.body }
func (m *fakeMessage) Key() []byte                   { return nil }
func (m *fakeMessage) Headers() []messaging.Header   { return m.headers }
func (m *fakeMessage) Attributes() map[string]string { return nil }
func (m *fakeMessage) ID() string                    { return "msg-1" }
func (m *fakeMessage) Topic() string                 { return "" }
func (m *fakeMessage) Subject() string               { return "" }
func (m *fakeMessage) Timestamp() time.Time          { return time.Time{} }
func (m *fakeMessage) Ack(_ context.Context) error   { return nil }

func newTestHandler() (*MQHandler, *fakeUsecase) {
	uc := &fakeUsecase{}
	handler := &MQHandler{uc: uc, uuid: uid.NewUUID(), ins: instrument.NewNoop()}
	return handler, uc
}

func TestMQHandler(t *testing.T) {
	t.Run("OtpRequestedForwardsPayload", func(t *testing.T) {
		// Arrange
		handler, uc := newTestHandler()
		msg := &fakeMessage{
			body:    []byte(`{"account_id":42,"phone":"+15550001111"}`),
			headers: []messaging.Header{{Key: "cID", Value: []byte("corr-1")}},
		}

		// Act
		err := handler.OtpRequestedAudit(context.Background(), msg)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(uc.requested) != 1 {
			t.Fatalf("expected one consume call, got %d", len(uc.requested))
		}
		if uc.requested[0].AccountID != 42 || uc.requested[0].Phone != "+15550001111" {
			t.Fatalf("unexpected input: %+v", uc.requested[0])
		}
	})

	t.Run("OtpVerifiedForwardsSession", func(t *testing.T) {
		// Arrange
		handler, uc := newTestHandler()
		msg := &fakeMessage{body: []byte(`{"account_id":42,"phone":"+15550001111","session_id":9001}`)}

		// Act
		err := handler.OtpVerifiedAudit(context.Background(), msg)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(uc.verified) != 1 || uc.verified[0].SessionID != 9001 {
			t.Fatalf("unexpected input: %+v", uc.verified)
		}
	})

	t.Run("OtpLockedForwardsClientDetail", func(t *testing.T) {
		// Arrange
		handler, uc := newTestHandler()
		msg := &fakeMessage{body: []byte(`{"phone":"+15550001111","ip":"203.0.113.9","device_id":"device-1"}`)}

		// Act
		err := handler.OtpLockedAudit(context.Background(), msg)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(uc.locked) != 1 || uc.locked[0].IP != "203.0.113.9" {
			t.Fatalf("unexpected input: %+v", uc.locked)
		}
	})

	t.Run("MalformedBodyIsDropped", func(t *testing.T) {
		// Arrange
		handler, uc := newTestHandler()
		msg := &fakeMessage{body: []byte(`not json`)}

		// Act
		err := handler.OtpRequestedAudit(context.Background(), msg)

		// Assert: parse failures must not trigger redelivery.
		if err != nil {
			t.Fatalf("expected nil for malformed body, got %v", err)
		}
		if len(uc.requested) != 0 {
			t.Fatalf("expected no consume call, got %d", len(uc.requested))
		}
	})
}
