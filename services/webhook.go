package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/appointpass/backend-pass/models"
)

// RegistrationRegistry is the system of record for device push tokens. The
// production implementation is a spreadsheet-backed webhook; tests swap in a
// local double.
type RegistrationRegistry interface {
	RegisterDevice(ctx context.Context, reg models.DeviceRegistration) error
	Ping(ctx context.Context) (int, []byte, error)
}

// WebhookStatusError reports a non-2xx response from the registration webhook.
type WebhookStatusError struct {
	StatusCode int
}

func (e *WebhookStatusError) Error() string {
	return fmt.Sprintf("webhook responded with status %d", e.StatusCode)
}

// SheetWebhookClient forwards registration records to the external
// spreadsheet-backed webhook, authenticated by a shared-secret query
// parameter.
type SheetWebhookClient struct {
	URL    string
	Secret string
	Client *http.Client
}

func NewSheetWebhookClient(webhookURL, secret string) *SheetWebhookClient {
	return &SheetWebhookClient{
		URL:    webhookURL,
		Secret: secret,
		Client: &http.Client{},
	}
}

func (s *SheetWebhookClient) RegisterDevice(ctx context.Context, reg models.DeviceRegistration) error {
	body, err := json.Marshal(reg)
	if err != nil {
		return err
	}

	resp, err := s.post(ctx, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &WebhookStatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// Ping posts a canned record and returns the webhook's raw status and body,
// used by the manual smoke-test endpoint.
func (s *SheetWebhookClient) Ping(ctx context.Context) (int, []byte, error) {
	body, _ := json.Marshal(models.DeviceRegistration{
		SerialNumber:            "test-serial",
		DeviceLibraryIdentifier: "test-device",
		PushToken:               "test-push-token",
	})

	resp, err := s.post(ctx, body)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func (s *SheetWebhookClient) post(ctx context.Context, body []byte) (*http.Response, error) {
	endpoint := s.URL
	if s.Secret != "" {
		sep := "?"
		if u, err := url.Parse(s.URL); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		endpoint = s.URL + sep + "secret=" + url.QueryEscape(s.Secret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return s.Client.Do(req)
}
