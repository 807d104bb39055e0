package auth

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/mailgate/internal/domain/repository"
	"github.com/dropDatabas3/mailgate/internal/email"
	"github.com/dropDatabas3/mailgate/internal/metrics"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

// otpIssuer genera, persiste y envía un OTP. La fila se guarda antes del envío.
type otpIssuer struct {
	deps Deps
}

func newOTPIssuer(d Deps) *otpIssuer {
	return &otpIssuer{deps: d}
}

func (o *otpIssuer) issue(ctx context.Context, addr string, purpose repository.OTPPurpose, subject string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.otp"),
		logger.Email(addr),
		logger.Purpose(string(purpose)),
	)

	code, err := o.deps.GenerateOTP()
	if err != nil {
		metrics.RecordOTPIssued(string(purpose), metrics.ResultFailed)
		return fmt.Errorf("generate otp: %w", err)
	}

	now := o.deps.now()
	if _, err := o.deps.OTPs.Create(ctx, repository.CreateOTPInput{
		Email:     addr,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(o.deps.OTPTTL),
		CreatedAt: now,
	}); err != nil {
		metrics.RecordOTPIssued(string(purpose), metrics.ResultFailed)
		log.Error("save otp failed", logger.Err(err))
		return fmt.Errorf("save otp: %w", err)
	}

	log.Info("sending otp")
	err = o.deps.Mailer.Send(ctx, email.Message{
		FromName: o.deps.OTPFromName,
		To:       []string{addr},
		Subject:  subject,
		TextBody: "Your OTP is: " + code,
	})
	if err != nil {
		metrics.RecordOTPIssued(string(purpose), metrics.ResultFailed)
		log.Error("failed to send otp", logger.Err(err))
		return fmt.Errorf("%w: %w", ErrOTPDelivery, err)
	}

	metrics.RecordOTPIssued(string(purpose), metrics.ResultOK)
	log.Info("otp sent")
	return nil
}
