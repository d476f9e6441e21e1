package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"hotelbot/services/messaging"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubMessaging struct {
	err      error
	panicMsg string
	got      []messaging.InboundMessage
}

func (s *stubMessaging) ProcessInbound(_ context.Context, msg messaging.InboundMessage) error {
	s.got = append(s.got, msg)
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.err
}

func (s *stubMessaging) NotifyPaymentConfirmed(context.Context, string) error { return nil }

func (s *stubMessaging) SendPaymentReminder(context.Context, string, string) error { return nil }

func postWebhook(t *testing.T, svc messaging.MessagingService) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.POST("/webhook", NewWebhookHandler(svc).HandleInbound)

	form := url.Values{
		"From":        {"whatsapp:+2348000000001"},
		"To":          {"whatsapp:+14155238886"},
		"Body":        {"hi"},
		"ProfileName": {"Ada"},
		"AccountSid":  {"AC1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhook_ParsesForm(t *testing.T) {
	svc := &stubMessaging{}
	w := postWebhook(t, svc)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	require.Len(t, svc.got, 1)
	assert.Equal(t, messaging.InboundMessage{
		From:        "whatsapp:+2348000000001",
		To:          "whatsapp:+14155238886",
		Body:        "hi",
		ProfileName: "Ada",
		AccountSid:  "AC1",
	}, svc.got[0])
}

func TestWebhook_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		svc  *stubMessaging
		want string
	}{
		{"unknown tenant", &stubMessaging{err: messaging.ErrUnknownTenant}, "OK"},
		{"rate limited", &stubMessaging{err: fmt.Errorf("wrapped: %w", messaging.ErrRateLimited)}, "OK"},
		{"store failure", &stubMessaging{err: errors.New("mongo unavailable")}, "Error"},
		{"panic", &stubMessaging{panicMsg: "boom"}, "Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postWebhook(t, tc.svc)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.want, w.Body.String())
		})
	}
}
