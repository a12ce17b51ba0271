package services

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/appointpass/backend-pass/config"
)

const providerTokenTTL = 20 * time.Minute

// PushSender delivers an empty push to a device so the wallet refetches the
// pass.
type PushSender interface {
	Push(ctx context.Context, deviceToken string) error
}

// GatewayStatusError reports a non-2xx response from the push gateway.
type GatewayStatusError struct {
	StatusCode int
	Body       string
}

func (e *GatewayStatusError) Error() string {
	return fmt.Sprintf("push gateway responded with status %d: %s", e.StatusCode, e.Body)
}

// APNsClient mints short-lived ES256 provider tokens and posts push requests
// to the gateway, one per device token.
type APNsClient struct {
	gateway string
	topic   string
	teamID  string
	keyID   string
	key     *ecdsa.PrivateKey
	client  *http.Client
}

func NewAPNsClient(cfg *config.Config) (*APNsClient, error) {
	keyData, err := os.ReadFile(cfg.APNsKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read APNs key: %w", err)
	}
	key, err := jwt.ParseECPrivateKeyFromPEM(keyData)
	if err != nil {
		return nil, fmt.Errorf("parse APNs key: %w", err)
	}

	return &APNsClient{
		gateway: cfg.APNsGateway,
		topic:   cfg.PassTypeIdentifier,
		teamID:  cfg.APNsTeamID,
		keyID:   cfg.APNsKeyID,
		key:     key,
		client:  &http.Client{},
	}, nil
}

func (a *APNsClient) Push(ctx context.Context, deviceToken string) error {
	assertion, err := a.providerToken(time.Now())
	if err != nil {
		return fmt.Errorf("mint provider token: %w", err)
	}

	endpoint := fmt.Sprintf("%s/3/device/%s", a.gateway, deviceToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(`{"aps":{}}`))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "bearer "+assertion)
	req.Header.Set("apns-topic", a.topic)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &GatewayStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func (a *APNsClient) providerToken(now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": a.teamID,
		"iat": now.Unix(),
		"exp": now.Add(providerTokenTTL).Unix(),
	})
	token.Header["kid"] = a.keyID
	return token.SignedString(a.key)
}
