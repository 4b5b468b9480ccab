package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/otpgate/internal/identity/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishOtpRequested(ctx context.Context, msg usecase.OtpRequestedEvent) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, "PublishOtpRequested")
	defer span.End()

	body, err := json.Marshal(event.OtpRequestedMessage{
		AccountID: msg.AccountID,
		Phone:     msg.Phone,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return m.publish(ctx, event.OtpRequestedDestination, body)
}

func (m *Messaging) PublishOtpVerified(ctx context.Context, msg usecase.OtpVerifiedEvent) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, "PublishOtpVerified")
	defer span.End()

	body, err := json.Marshal(event.OtpVerifiedMessage{
		AccountID: msg.AccountID,
		Phone:     msg.Phone,
		SessionID: msg.SessionID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return m.publish(ctx, event.OtpVerifiedDestination, body)
}

func (m *Messaging) PublishOtpLocked(ctx context.Context, msg usecase.OtpLockedEvent) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, "PublishOtpLocked")
	defer span.End()

	body, err := json.Marshal(event.OtpLockedMessage{
		Phone:    msg.Phone,
		IP:       msg.IP,
		DeviceID: msg.DeviceID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return m.publish(ctx, event.OtpLockedDestination, body)
}

func (m *Messaging) publish(ctx context.Context, destination string, body []byte) error {
	span := trace.SpanFromContext(ctx)

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
