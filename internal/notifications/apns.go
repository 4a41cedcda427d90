package notifications

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// APNsConfig holds configuration for Apple Push Notification service
type APNsConfig struct {
	KeyPath    string // Path to .p8 key file
	KeyID      string // Key ID from Apple Developer Portal
	TeamID     string // Team ID from Apple Developer Portal
	BundleID   string // App bundle ID (e.g., ph.gabay.app)
	Production bool   // Use production environment
}

// APNsClient sends push notifications via Apple Push Notification service
type APNsClient struct {
	client   *apns2.Client
	bundleID string
	logger   *log.Logger
	mu       sync.Mutex
}

// NewAPNsClient creates a new APNs client
func NewAPNsClient(cfg APNsConfig, logger *log.Logger) (*APNsClient, error) {
	if cfg.KeyPath == "" || cfg.KeyID == "" || cfg.TeamID == "" || cfg.BundleID == "" {
		logger.Println("APNs: missing configuration, push notifications disabled")
		return nil, nil
	}

	keyBytes, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read APNs key file: %w", err)
	}

	block, _ := pem.Decode(keyBytes)
	if block == nil {
		return nil, fmt.Errorf("failed to decode APNs key PEM block")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse APNs key: %w", err)
	}

	ecdsaKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("APNs key is not an ECDSA private key")
	}

	authToken := &token.Token{
		AuthKey: ecdsaKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	}

	var client *apns2.Client
	if cfg.Production {
		client = apns2.NewTokenClient(authToken).Production()
	} else {
		client = apns2.NewTokenClient(authToken).Development()
	}

	logger.Printf("APNs: client initialized (production=%v, bundle=%s)", cfg.Production, cfg.BundleID)

	return &APNsClient{
		client:   client,
		bundleID: cfg.BundleID,
		logger:   logger,
	}, nil
}

// SecurityAlertType tells the app which security event happened.
type SecurityAlertType string

const (
	AlertVoiceEnrolled  SecurityAlertType = "voice_enrolled"
	AlertVerifyFailed   SecurityAlertType = "verify_failed"
	AlertProfileDeleted SecurityAlertType = "profile_deleted"
)

// SendSecurityAlert pushes a voice-profile security event to the user's
// device. Enrollment and deletion touch the account's authentication surface,
// so every registered device hears about them.
func (c *APNsClient) SendSecurityAlert(deviceToken string, alertType SecurityAlertType, voiceProfileID string) error {
	if c == nil || c.client == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var title, body string
	switch alertType {
	case AlertVoiceEnrolled:
		title = "New voice profile enrolled"
		body = "A new voice profile was added to your Gabay account. If this wasn't you, contact support immediately."
	case AlertVerifyFailed:
		title = "Voice verification failed"
		body = "A voice login attempt on your account did not match your enrolled voice."
	case AlertProfileDeleted:
		title = "Voice profile removed"
		body = "A voice profile was removed from your Gabay account."
	default:
		return nil
	}

	p := payload.NewPayload().
		AlertTitle(title).
		AlertBody(body).
		Sound("default").
		Custom("alert_type", string(alertType)).
		Custom("voice_profile_id", voiceProfileID)

	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       c.bundleID,
		Payload:     p,
		Expiration:  time.Now().Add(24 * time.Hour),
	}

	res, err := c.client.Push(notification)
	if err != nil {
		c.logger.Printf("APNs: failed to send security alert: %v", err)
		return err
	}

	if res.StatusCode != 200 {
		c.logger.Printf("APNs: security alert rejected (status=%d, reason=%s)", res.StatusCode, res.Reason)
		return fmt.Errorf("APNs rejected notification: %s", res.Reason)
	}

	c.logger.Printf("APNs: security alert sent successfully to %s...", tokenPrefix(deviceToken))
	return nil
}

// tokenPrefix truncates a device token for logging. Registration only
// requires the token to be non-empty, so short values must not panic here.
func tokenPrefix(token string) string {
	if len(token) <= 16 {
		return token
	}
	return token[:16]
}

// SendTestNotification sends a test notification
func (c *APNsClient) SendTestNotification(deviceToken, message string) error {
	if c == nil || c.client == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := payload.NewPayload().
		AlertTitle("Gabay Test").
		AlertBody(message).
		Sound("default")

	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       c.bundleID,
		Payload:     p,
		Expiration:  time.Now().Add(1 * time.Hour),
	}

	res, err := c.client.Push(notification)
	if err != nil {
		return err
	}

	if res.StatusCode != 200 {
		return fmt.Errorf("APNs rejected notification: %s", res.Reason)
	}

	return nil
}
