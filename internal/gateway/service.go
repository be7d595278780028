package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"model-gateway/internal/adapter"
	"model-gateway/internal/chat"
	"model-gateway/internal/credentials"
	apierrors "model-gateway/internal/errors"
	"model-gateway/internal/registry"
	"model-gateway/internal/upstream"
)

type contextKey string

const (
	contextKeyRequestID contextKey = "request_id"

	defaultTimeout      = 60 * time.Second
	defaultMaxBodyBytes = 1 << 20
	maxUpstreamBody     = 4 << 20
)

// Service dispatches canonical chat requests to provider adapters. It keeps
// no per-request state, so one Service serves any number of concurrent calls.
type Service struct {
	registry     *registry.Registry
	creds        credentials.Store
	client       *http.Client
	logger       *slog.Logger
	timeout      time.Duration
	temperature  float64
	maxBodyBytes int64
}

type Option func(*Service)

func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout bounds each upstream call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

func WithDefaultTemperature(t float64) Option {
	return func(s *Service) {
		s.temperature = t
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

func NewService(reg *registry.Registry, creds credentials.Store, logger *slog.Logger, opts ...Option) *Service {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	client := &http.Client{Transport: transport}

	s := &Service{
		registry:     reg,
		creds:        creds,
		client:       client,
		logger:       logger,
		timeout:      defaultTimeout,
		temperature:  chat.DefaultTemperature,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle runs one request through validation, registry lookup, credential
// resolution and a single upstream round trip. Every returned error is an
// *apierrors.Error.
func (s *Service) Handle(ctx context.Context, req chat.Request) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply = ""
			err = apierrors.Internal(fmt.Errorf("panic in dispatcher: %v", r))
		}
	}()

	if err := req.Validate(); err != nil {
		return "", apierrors.Validation(err.Error(), err)
	}

	cfg, err := s.registry.Lookup(req.ModelID)
	if err != nil {
		return "", apierrors.Validation("Unknown model: "+req.ModelID, err)
	}

	apiKey, err := s.creds.Lookup(ctx, cfg.CredentialVariable)
	if err != nil {
		if errors.Is(err, credentials.ErrNotFound) {
			msg := fmt.Sprintf("Missing API key for %s. Check %s in the server environment.", cfg.ModelID, cfg.CredentialVariable)
			return "", apierrors.Configuration(msg, err)
		}
		return "", apierrors.Internal(fmt.Errorf("resolve credential %s: %w", cfg.CredentialVariable, err))
	}

	ad, err := adapter.For(cfg.Kind)
	if err != nil {
		return "", apierrors.Internal(err)
	}

	return s.dispatch(ctx, cfg, ad, apiKey, req)
}

func (s *Service) dispatch(ctx context.Context, cfg registry.ProviderConfig, ad adapter.Adapter, apiKey string, req chat.Request) (string, error) {
	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	upReq, err := ad.BuildRequest(callCtx, cfg, apiKey, req)
	if err != nil {
		return "", apierrors.Internal(err)
	}

	resp, err := s.client.Do(upReq)
	if err != nil {
		return "", transportError(ctx, cfg.Provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody+1))
	if err != nil {
		if callCtx.Err() != nil {
			return "", transportError(ctx, cfg.Provider, callCtx.Err())
		}
		return "", apierrors.Upstream(cfg.Provider, cfg.Provider+" request failed: could not read response", redactURL(err))
	}
	if len(body) > maxUpstreamBody {
		return "", apierrors.Upstream(cfg.Provider, cfg.Provider+" returned an oversized response", fmt.Errorf("upstream body exceeds %d bytes", maxUpstreamBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := upstream.Translate(cfg.Provider, body)
		return "", apierrors.Upstream(cfg.Provider, msg, fmt.Errorf("upstream status %d", resp.StatusCode))
	}

	text, err := ad.ParseReply(body)
	if err != nil {
		if errors.Is(err, adapter.ErrNoText) {
			return "", apierrors.Upstream(cfg.Provider, cfg.Provider+" returned no text", err)
		}
		return "", apierrors.Upstream(cfg.Provider, cfg.Provider+" returned an unreadable response", err)
	}
	return text, nil
}

func transportError(ctx context.Context, provider string, err error) *apierrors.Error {
	err = redactURL(err)
	if errors.Is(ctx.Err(), context.Canceled) {
		return apierrors.Upstream(provider, provider+" request canceled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apierrors.Upstream(provider, provider+" request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apierrors.Upstream(provider, provider+" request timed out", err)
	}
	return apierrors.Upstream(provider, provider+" request failed: upstream unreachable", err)
}

// redactURL drops the query string from a *url.Error. Gemini carries the API
// key there and the error text ends up in logs.
func redactURL(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	redacted := &url.Error{Op: uerr.Op, Err: uerr.Err}
	if u, perr := url.Parse(uerr.URL); perr == nil {
		u.RawQuery = ""
		u.User = nil
		redacted.URL = u.String()
	}
	return redacted
}

func RequestIDFromContext(ctx context.Context) string {
	v := ctx.Value(contextKeyRequestID)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}
