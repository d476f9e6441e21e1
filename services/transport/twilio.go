package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotelbot/database"
	"hotelbot/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const whatsappPrefix = "whatsapp:"

// AccountLookup resolves the provider credentials for a tenant.
type AccountLookup interface {
	GetMessagingAccount(ctx context.Context, accountSID string) (*models.MessagingAccount, error)
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// TwilioSender sends WhatsApp messages through the Twilio Messages API using the tenant's
// own account credentials.
type TwilioSender struct {
	httpClient *resty.Client
	accounts   AccountLookup
	logger     *zap.Logger
}

func NewTwilioSender(baseURL string, accounts AccountLookup, logger *zap.Logger) *TwilioSender {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")

	return &TwilioSender{
		httpClient: client,
		accounts:   accounts,
		logger:     logger,
	}
}

// fromAddress matches the channel of the recipient.
func fromAddress(hotelPhone, to string) string {
	if strings.HasPrefix(to, whatsappPrefix) && !strings.HasPrefix(hotelPhone, whatsappPrefix) {
		return whatsappPrefix + hotelPhone
	}
	return hotelPhone
}

func (s *TwilioSender) Send(ctx context.Context, tenant *models.Tenant, to, body string) error {
	if tenant.MessagingAccountRef == "" {
		return fmt.Errorf("tenant %s has no messaging account", tenant.ID)
	}
	account, err := s.accounts.GetMessagingAccount(ctx, tenant.MessagingAccountRef)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("tenant %s has no messaging account", tenant.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to load messaging account: %w", err)
	}
	if account.Status != models.AccountStatusActive {
		return fmt.Errorf("messaging account %s is %s", account.AccountSID, account.Status)
	}

	var (
		result  twilioMessage
		apiErr  twilioError
		formRaw = map[string]string{
			"To":   to,
			"From": fromAddress(tenant.Phone, to),
			"Body": body,
		}
	)
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBasicAuth(account.AccountSID, account.AuthToken).
		SetPathParam("accountSid", account.AccountSID).
		SetFormData(formRaw).
		SetResult(&result).
		SetError(&apiErr).
		Post("/2010-04-01/Accounts/{accountSid}/Messages.json")
	if err != nil {
		return fmt.Errorf("failed to call Twilio API: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("Twilio API error: %s (code: %d, status: %d)", apiErr.Message, apiErr.Code, resp.StatusCode())
	}

	s.logger.Debug("Twilio accepted message",
		zap.String("tenantId", tenant.ID),
		zap.String("sid", result.SID),
		zap.String("status", result.Status),
	)
	return nil
}
