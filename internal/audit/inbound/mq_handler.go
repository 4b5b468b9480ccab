package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/audit/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) OtpRequestedAudit(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("audit.inbound.mq").Start(ctx, "OtpRequestedAudit")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: otp requested audit", "msg_body", string(body))

	var payload event.OtpRequestedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp requested audit", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeOtpRequested(ctx, usecase.ConsumeOtpRequestedInput{
		AccountID: payload.AccountID,
		Phone:     payload.Phone,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp requested", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) OtpVerifiedAudit(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("audit.inbound.mq").Start(ctx, "OtpVerifiedAudit")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: otp verified audit", "msg_body", string(body))

	var payload event.OtpVerifiedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp verified audit", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeOtpVerified(ctx, usecase.ConsumeOtpVerifiedInput{
		AccountID: payload.AccountID,
		Phone:     payload.Phone,
		SessionID: payload.SessionID,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp verified", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) OtpLockedAudit(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("audit.inbound.mq").Start(ctx, "OtpLockedAudit")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: otp locked audit", "msg_body", string(body))

	var payload event.OtpLockedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp locked audit", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeOtpLocked(ctx, usecase.ConsumeOtpLockedInput{
		Phone:    payload.Phone,
		IP:       payload.IP,
		DeviceID: payload.DeviceID,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp locked", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
