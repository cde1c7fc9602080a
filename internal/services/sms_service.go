package services

import (
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/example/agrolink/internal/apperrors"
	"github.com/example/agrolink/internal/config"
	"github.com/example/agrolink/internal/logger"
)

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	Send(phoneNumber, message string) error
}

// TwilioSMSService sends SMS text via the Twilio REST API.
type TwilioSMSService struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewTwilioSMSService creates a Twilio-backed sender from config.
func NewTwilioSMSService(cfg *config.Config) *TwilioSMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &TwilioSMSService{
		client:     client,
		fromNumber: cfg.TwilioPhoneNumber,
	}
}

// Send normalizes the destination to E.164 and dispatches the message.
// A normalization failure fails the send rather than silently skipping it.
func (s *TwilioSMSService) Send(phoneNumber, message string) error {
	if s.fromNumber == "" {
		return apperrors.Internal("TWILIO_PHONE_NUMBER not set", nil)
	}

	to, err := NormalizePhoneNumber(phoneNumber)
	if err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.fromNumber)
	params.SetBody(message)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		logger.Log.WithError(err).Errorf("failed to send SMS to %s", to)
		return apperrors.Internal("SMS sending failed", err)
	}

	logger.Log.Infof("SMS sent to %s", to)
	return nil
}

// NormalizePhoneNumber converts a Nigerian phone number to E.164. A local
// "0"-prefixed 11-digit number becomes "+234" plus the remainder; an
// already-normalized 14-character "+234" number passes through. Anything else
// is rejected.
func NormalizePhoneNumber(phoneNumber string) (string, error) {
	switch {
	case len(phoneNumber) == 11 && phoneNumber[0] == '0':
		return "+234" + phoneNumber[1:], nil
	case len(phoneNumber) == 14 && phoneNumber[:4] == "+234":
		return phoneNumber, nil
	default:
		return "", apperrors.Validation(fmt.Sprintf("Phone number %q is not a valid Nigerian number", phoneNumber))
	}
}
