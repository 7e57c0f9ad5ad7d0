// Package transfer holds the three fallible network primitives every other
// component is built from: an authenticated JSON request, a direct multipart
// upload to a capability URL, and a status notification for the resume
// service. Keeping them here lets the upload orchestrator be a plain sequence
// of calls with explicit failure points.
package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/JayWang0902/AI-job-matching/internal/logger"
)

const (
	userAgent = "jobmatch-cli"

	apiTimeout     = 15 * time.Second
	storageTimeout = 2 * time.Minute

	// Field name the storage policy expects the file payload under. It must
	// come after all presigned fields in the multipart body.
	fileFieldName = "file"

	maxLoggedBody = 512
)

// TokenSource provides the bearer credential attached to API requests.
// It must return ErrUnauthenticated when no credential is available.
type TokenSource interface {
	Token() (string, error)
}

type Client struct {
	api     *resty.Client
	storage *resty.Client
	creds   TokenSource
	logger  *zap.Logger
}

func New(baseURL string, creds TokenSource, log *zap.Logger) *Client {
	api := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(apiTimeout).
		SetHeader("User-Agent", userAgent)

	// Separate client for the storage target: no base URL, no credential,
	// and a longer timeout since it carries the file payload.
	storage := resty.New().
		SetTimeout(storageTimeout).
		SetHeader("User-Agent", userAgent)

	return &Client{
		api:     api,
		storage: storage,
		creds:   creds,
		logger:  log,
	}
}

// JSON performs an authenticated JSON request against the API. A missing
// credential fails fast with ErrUnauthenticated before anything is sent.
func (c *Client) JSON(ctx context.Context, method, path string, body any, query url.Values, out any) error {
	token, err := c.creds.Token()
	if err != nil {
		return err
	}

	req := c.api.R().SetContext(ctx).SetAuthToken(token)
	return c.execute(req, method, path, body, query, out)
}

// AnonymousJSON performs a JSON request without a credential. Only the
// identity endpoints (login, register) are reachable this way.
func (c *Client) AnonymousJSON(ctx context.Context, method, path string, body any, out any) error {
	req := c.api.R().SetContext(ctx)
	return c.execute(req, method, path, body, nil, out)
}

// NotifyStatus informs the resume service of a client-observed state change
// via PUT /api/resume/{id}/status. The status and optional progress travel as
// query parameters, per the backend contract. The idempotency key makes a
// retried confirmation safe to replay.
func (c *Client) NotifyStatus(ctx context.Context, resumeID, status string, progress *float64, idempotencyKey string, out any) error {
	token, err := c.creds.Token()
	if err != nil {
		return err
	}

	q := url.Values{}
	q.Set("status", status)
	if progress != nil {
		q.Set("progress", strconv.FormatFloat(*progress, 'f', -1, 64))
	}

	req := c.api.R().SetContext(ctx).SetAuthToken(token)
	if idempotencyKey != "" {
		req.SetHeader("Idempotency-Key", idempotencyKey)
	}

	path := fmt.Sprintf("/api/resume/%s/status", url.PathEscape(resumeID))
	return c.execute(req, http.MethodPut, path, nil, q, out)
}

// Upload posts the file to the capability URL with every server-issued field
// forwarded verbatim and the payload last under the fixed field name. The
// Content-Type header is left to the transport: storage signature validation
// is sensitive to exact multipart framing, so the boundary must be generated,
// never hand-set.
func (c *Client) Upload(ctx context.Context, destination string, fields map[string]string, fileName string, payload io.Reader) error {
	resp, err := c.storage.R().
		SetContext(ctx).
		SetFormData(fields).
		SetFileReader(fileFieldName, fileName, payload).
		Post(destination)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.IsError() {
		raw := resp.String()
		c.logger.Debug("storage rejected upload",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", logger.TruncateForLog(raw, maxLoggedBody)),
		)
		return &UploadError{Status: resp.StatusCode(), RawBody: raw}
	}

	c.logger.Debug("direct upload accepted", zap.Int("status", resp.StatusCode()))
	return nil
}

func (c *Client) execute(req *resty.Request, method, path string, body any, query url.Values, out any) error {
	if body != nil {
		req.SetBody(body)
	}
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if out != nil {
		req.SetResult(out)
	}

	c.logger.Debug("api request", zap.String("method", method), zap.String("path", path))

	resp, err := req.Execute(method, path)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.IsError() {
		if resp.StatusCode() == http.StatusUnauthorized && req.Header.Get("Authorization") != "" {
			return fmt.Errorf("%w: server rejected credential", ErrUnauthenticated)
		}
		return &HTTPError{Status: resp.StatusCode(), Body: resp.String()}
	}

	return nil
}
