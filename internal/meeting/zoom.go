// Package meeting issues join URLs for virtual tutoring sessions.
package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Meeting defaults
const (
	DefaultTopic    = "Monitoria Acadêmica"
	DefaultDuration = 60 // minutes

	scheduledMeeting = 2
)

// ErrNotConfigured is returned when no provider credentials were supplied.
var ErrNotConfigured = errors.New("meeting provider not configured")

type ZoomConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	APIURL       string
	TokenURL     string
	Timeout      time.Duration
}

// Configured reports whether every credential is present.
func (c ZoomConfig) Configured() bool {
	return c.AccountID != "" && c.ClientID != "" && c.ClientSecret != ""
}

// ZoomProvider creates scheduled Zoom meetings with a server-to-server OAuth app.
type ZoomProvider struct {
	client  *http.Client
	apiURL  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewZoomProvider builds a provider whose HTTP client fetches and refreshes
// the account_credentials token on its own.
func NewZoomProvider(cfg ZoomConfig, logger *zap.Logger) *ZoomProvider {
	oauthCfg := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
		EndpointParams: url.Values{
			"grant_type": {"account_credentials"},
			"account_id": {cfg.AccountID},
		},
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})

	return &ZoomProvider{
		client:  oauthCfg.Client(tokenCtx),
		apiURL:  strings.TrimRight(cfg.APIURL, "/"),
		timeout: timeout,
		logger:  logger,
	}
}

type createMeetingRequest struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"`
	Duration  int             `json:"duration"`
	Settings  meetingSettings `json:"settings"`
}

type meetingSettings struct {
	HostVideo                         bool `json:"host_video"`
	ParticipantVideo                  bool `json:"participant_video"`
	JoinBeforeHost                    bool `json:"join_before_host"`
	MuteUponEntry                     bool `json:"mute_upon_entry"`
	AlternativeHostsEmailNotification bool `json:"alternative_hosts_email_notification"`
}

type createMeetingResponse struct {
	ID      int64  `json:"id"`
	JoinURL string `json:"join_url"`
}

// CreateMeeting schedules a meeting at startAt and returns its join URL
func (p *ZoomProvider) CreateMeeting(ctx context.Context, startAt time.Time) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	payload, err := json.Marshal(createMeetingRequest{
		Topic:     DefaultTopic,
		Type:      scheduledMeeting,
		StartTime: startAt.UTC().Format("2006-01-02T15:04:05Z"),
		Duration:  DefaultDuration,
		Settings: meetingSettings{
			HostVideo:        true,
			ParticipantVideo: true,
			JoinBeforeHost:   true,
			MuteUponEntry:    true,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal meeting request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+"/users/me/meetings", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build meeting request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create zoom meeting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		p.logger.Error("Zoom API error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return "", fmt.Errorf("zoom api returned %d", resp.StatusCode)
	}

	var created createMeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode zoom meeting: %w", err)
	}
	if created.JoinURL == "" {
		return "", errors.New("zoom meeting has no join url")
	}

	p.logger.Info("Zoom meeting created",
		zap.Int64("meeting_id", created.ID),
		zap.Time("start_at", startAt),
	)

	return created.JoinURL, nil
}

// Disabled is the provider used when no credentials are configured. Every
// virtual confirmation fails with an upstream error.
type Disabled struct{}

func (Disabled) CreateMeeting(context.Context, time.Time) (string, error) {
	return "", ErrNotConfigured
}
