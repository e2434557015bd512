package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender delivers verification codes by SMS. When the from-number is
// unconfigured it degrades to logging, which keeps local setups working
// without credentials.
type TwilioSender struct {
	client     *twilio.RestClient
	fromNumber string
	logger     *slog.Logger
}

// NewTwilioSender creates a Twilio-backed SMS sender.
func NewTwilioSender(accountSID, authToken, fromNumber string, logger *slog.Logger) *TwilioSender {
	if logger == nil {
		logger = slog.Default()
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, fromNumber: fromNumber, logger: logger}
}

func (t *TwilioSender) SendCode(ctx context.Context, phoneNumber, code string) error {
	if t.fromNumber == "" {
		t.logger.Info("twilio unconfigured, logging code instead", "phone_number", phoneNumber, "code", code)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo("+" + phoneNumber)
	params.SetFrom(t.fromNumber)
	params.SetBody(fmt.Sprintf("Your LocalVault verification code is: %s", code))

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("sending SMS: %w", err)
	}
	return nil
}
