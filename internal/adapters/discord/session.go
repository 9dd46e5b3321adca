// Package discord implements the chat platform port over the Discord REST
// API. The discordgo session is used for REST calls only; the gateway is
// never opened.
package discord

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/example/court/internal/core/courterr"
)

type options struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a session.
type Option func(*options)

// WithBaseURL sends API requests to another root (tests use httptest).
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.httpClient = h }
}

// NewSession creates a REST-only session authenticating with a bot token.
// Rate-limited requests are retried by the session's bucket limiter.
func NewSession(token string, logger *zap.SugaredLogger, opts ...Option) (*discordgo.Session, error) {
	o := options{httpClient: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.StateEnabled = false
	s.ShouldRetryOnRateLimit = true
	s.MaxRestRetries = 2
	s.LogLevel = discordgo.LogInformational

	client := *o.httpClient
	if o.baseURL != "" {
		base, err := url.Parse(o.baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid api base url: %w", err)
		}
		next := client.Transport
		if next == nil {
			next = http.DefaultTransport
		}
		client.Transport = rebaseTransport{base: base, next: next}
	}
	s.Client = &client

	routeLibraryLogs(logger)
	return s, nil
}

// rebaseTransport rewrites requests for the public API root onto base.
type rebaseTransport struct {
	base *url.URL
	next http.RoundTripper
}

func (t rebaseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rest, ok := strings.CutPrefix(req.URL.String(), discordgo.EndpointAPI)
	if !ok {
		return t.next.RoundTrip(req)
	}
	u, err := t.base.Parse(strings.TrimRight(t.base.Path, "/") + "/" + rest)
	if err != nil {
		return nil, err
	}
	out := req.Clone(req.Context())
	out.URL = u
	out.Host = u.Host
	return t.next.RoundTrip(out)
}

var routeOnce sync.Once

// routeLibraryLogs sends discordgo's own log lines to zap.
func routeLibraryLogs(logger *zap.SugaredLogger) {
	routeOnce.Do(func() {
		l := logger.Named("discordgo")
		discordgo.Logger = func(level, caller int, format string, a ...any) {
			msg := fmt.Sprintf(format, a...)
			switch level {
			case discordgo.LogError:
				l.Error(msg)
			case discordgo.LogWarning:
				l.Warn(msg)
			case discordgo.LogInformational:
				l.Info(msg)
			default:
				l.Debug(msg)
			}
		}
	})
}

// IsStatus reports whether err carries an API response with the given status.
func IsStatus(err error, status int) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == status
}

// wrap classifies a session error as external.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return courterr.External(op, err, "%s", describe(restErr.Response.StatusCode))
	}
	var rateErr *discordgo.RateLimitError
	if errors.As(err, &rateErr) {
		return courterr.External(op, err, "chat platform rate limit")
	}
	return courterr.External(op, err, "chat platform request failed")
}

func describe(status int) string {
	switch status {
	case http.StatusForbidden:
		return "the chat platform refused the request (missing access)"
	case http.StatusNotFound:
		return "the chat platform object no longer exists"
	case http.StatusTooManyRequests:
		return "chat platform rate limit"
	default:
		return "chat platform request failed"
	}
}

// snowflake converts a platform id string. Empty and malformed ids are 0.
func snowflake(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
