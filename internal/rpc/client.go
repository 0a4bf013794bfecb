// Package rpc implements the submission RPC: a JSON POST to the driver's
// in-pod submission server, retried across every candidate endpoint
// EndpointDiscovery returned until one accepts the submission.
package rpc

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sparkctl/sparkctl/internal/submit"
	"github.com/sparkctl/sparkctl/internal/util/retry"
)

// ClientOptions configures the HTTP client used for the submission RPC.
type ClientOptions struct {
	// RetriesPerEndpoint is the number of retries made against a single
	// candidate endpoint after its first attempt, before moving on to the
	// next one (so RetriesPerEndpoint+1 attempts in all). Ingress-mode
	// endpoints get more retries than NodePort-mode ones, since an Ingress
	// controller can take longer to program a fresh route.
	RetriesPerEndpoint int
	ConnectTimeout     time.Duration
	InsecureSkipVerify bool
	Logger             *zap.Logger
}

// Client implements submit.RPCClient over HTTP(S).
type Client struct {
	opts       ClientOptions
	httpClient *http.Client
}

// NewClient builds a submission RPC client. The retry count should be
// submit.SubmissionClientRetriesIngress or
// submit.SubmissionClientRetriesNodePort depending on how the endpoints were
// discovered.
func NewClient(opts ClientOptions) *Client {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = submit.RPCConnectTimeout
	}
	if opts.RetriesPerEndpoint <= 0 {
		opts.RetriesPerEndpoint = submit.SubmissionClientRetriesNodePort
	}

	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.ConnectTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify}, //nolint:gosec
			},
		},
	}
}

// wireRequest is the JSON body POSTed to the driver's submission server.
type wireRequest struct {
	AppID           string            `json:"appId"`
	AppName         string            `json:"appName"`
	MainClass       string            `json:"mainClass"`
	AppResourceKind string            `json:"appResourceKind"`
	AppResourceURI  string            `json:"appResourceUri"`
	EncodedPayload  string            `json:"encodedPayload,omitempty"`
	AppArgs         []string          `json:"appArgs"`
	SparkProperties map[string]string `json:"sparkProperties"`
	Environment     map[string]string `json:"environment"`
	Secret          string            `json:"secret"`
	FilesBlob       string            `json:"filesBlob,omitempty"`
	JarsBlob        string            `json:"jarsBlob,omitempty"`
}

// Submit tries each candidate endpoint in order, retrying each one with
// exponential backoff, until one accepts the submission or every endpoint is
// exhausted.
func (c *Client) Submit(ctx context.Context, endpoints []submit.Endpoint, req submit.SubmissionRequest) error {
	if len(endpoints) == 0 {
		return fmt.Errorf("%w: no candidate endpoints", submit.ErrNoReachableEndpoint)
	}

	body, err := json.Marshal(toWireRequest(req))
	if err != nil {
		return fmt.Errorf("failed to marshal submission request: %w", err)
	}

	logger := c.opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for _, ep := range endpoints {
		url := ep.URL + "/" + submit.SubmissionCreatePathSuffix
		logger.Info("attempting submission", zap.String("endpoint", url))

		attemptErr := retry.WithExponentialBackoff(ctx, func() error {
			return c.post(ctx, url, body)
		}, retry.WithMaxRetries(c.opts.RetriesPerEndpoint))

		if attemptErr == nil {
			return nil
		}
		logger.Warn("submission attempt failed, trying next endpoint", zap.String("endpoint", url), zap.Error(attemptErr))
		lastErr = attemptErr
	}

	return fmt.Errorf("%w: %v", submit.ErrSubmissionRejected, lastErr)
}

// Ping checks that the driver's submission server is reachable, trying each
// candidate endpoint in order with the same per-endpoint retry policy as
// Submit. It is used as a final sanity check before the submission RPC, so
// a clearly unreachable driver fails fast with a distinct diagnostic rather
// than surfacing as a confusing submission rejection.
func (c *Client) Ping(ctx context.Context, endpoints []submit.Endpoint) error {
	if len(endpoints) == 0 {
		return fmt.Errorf("%w: no candidate endpoints", submit.ErrNoReachableEndpoint)
	}

	logger := c.opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for _, ep := range endpoints {
		url := ep.URL + "/" + submit.SubmissionPingPathSuffix
		logger.Info("pinging submission endpoint", zap.String("endpoint", url))

		attemptErr := retry.WithExponentialBackoff(ctx, func() error {
			return c.ping(ctx, url)
		}, retry.WithMaxRetries(c.opts.RetriesPerEndpoint))

		if attemptErr == nil {
			return nil
		}
		logger.Warn("ping attempt failed, trying next endpoint", zap.String("endpoint", url), zap.Error(attemptErr))
		lastErr = attemptErr
	}

	return fmt.Errorf("%w: %v", submit.ErrNoReachableEndpoint, lastErr)
}

func (c *Client) ping(ctx context.Context, url string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return retry.Fatal(fmt.Errorf("failed to build request: %w", err))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return retry.Fatal(fmt.Errorf("driver responded with status %d", resp.StatusCode))
	}
	return fmt.Errorf("driver responded with status %d", resp.StatusCode)
}

func (c *Client) post(ctx context.Context, url string, body []byte) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return retry.Fatal(fmt.Errorf("failed to build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return retry.Fatal(fmt.Errorf("driver responded with status %d", resp.StatusCode))
	}
	return fmt.Errorf("driver responded with status %d", resp.StatusCode)
}

func toWireRequest(req submit.SubmissionRequest) wireRequest {
	return wireRequest{
		AppID:           req.AppID,
		AppName:         req.AppName,
		MainClass:       req.MainClass,
		AppResourceKind: req.AppResource.Kind.String(),
		AppResourceURI:  req.AppResource.URI,
		EncodedPayload:  req.AppResource.EncodedPayload,
		AppArgs:         req.AppArgs,
		SparkProperties: req.SparkProperties,
		Environment:     req.Environment,
		Secret:          req.Secret,
		FilesBlob:       req.FilesBlob,
		JarsBlob:        req.JarsBlob,
	}
}
