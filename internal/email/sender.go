package email

import (
	"context"
	"errors"
	"time"
)

// Sender define la interfaz para los correos transaccionales.
type Sender interface {
	SendVerificationOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
	// SendPasswordReset envia el codigo para elegir una contraseña nueva.
	SendPasswordReset(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
	// SendReportReady avisa que el reporte descargable de un resultado esta listo.
	SendReportReady(ctx context.Context, toEmail, name, fileName string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationOTP(_ context.Context, _ string, _ string, _ time.Time) error {
	return s.err()
}

func (s *disabledSender) SendPasswordReset(_ context.Context, _ string, _ string, _ time.Time) error {
	return s.err()
}

func (s *disabledSender) SendReportReady(_ context.Context, _, _, _ string) error {
	return s.err()
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
