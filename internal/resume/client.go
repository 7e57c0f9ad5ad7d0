// Package resume drives a user-selected document through the three-phase
// hand-off with the resume service and object storage, and reconciles the
// client's optimistic view with the authoritative server records.
package resume

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/JayWang0902/AI-job-matching/internal/transfer"
)

const (
	listPath         = "/api/resume/"
	uploadTargetPath = "/api/resume/upload-url"
)

// Client wraps the transfer primitives with the resume service's typed
// operations.
type Client struct {
	transfer *transfer.Client
	logger   *zap.Logger
}

func NewClient(t *transfer.Client, logger *zap.Logger) *Client {
	return &Client{transfer: t, logger: logger}
}

// CreateUploadTarget asks the server for a presigned destination. A response
// without a destination or without signed fields is rejected here, before any
// bytes move.
func (c *Client) CreateUploadTarget(ctx context.Context, filename string, size int64, contentType string) (*UploadTarget, error) {
	body := map[string]any{
		"filename":     filename,
		"file_size":    size,
		"content_type": contentType,
	}

	var target UploadTarget
	if err := c.transfer.JSON(ctx, http.MethodPost, uploadTargetPath, body, nil, &target); err != nil {
		return nil, err
	}

	if target.URL == "" || len(target.Fields) == 0 {
		return nil, ErrPresignMissing
	}

	c.logger.Debug("upload target issued",
		zap.String("resume_id", target.ResumeID),
		zap.Int("expires_in", target.ExpiresIn),
	)
	return &target, nil
}

// Upload transfers the file bytes straight to the capability URL.
func (c *Client) Upload(ctx context.Context, target *UploadTarget, fileName string, payload io.Reader) error {
	return c.transfer.Upload(ctx, target.URL, target.Fields, fileName, payload)
}

// UpdateStatus notifies the service of a client-observed transition.
func (c *Client) UpdateStatus(ctx context.Context, id string, status Status, progress *float64, idempotencyKey string) (*Record, error) {
	var rec Record
	if err := c.transfer.NotifyStatus(ctx, id, string(status), progress, idempotencyKey, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List fetches a page of the user's records, newest first.
func (c *Client) List(ctx context.Context, skip, limit int) (*ListResponse, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	var out ListResponse
	if err := c.transfer.JSON(ctx, http.MethodGet, listPath, nil, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Latest returns the most recent record, or nil when none exist.
func (c *Client) Latest(ctx context.Context) (*Record, error) {
	out, err := c.List(ctx, 0, 1)
	if err != nil {
		return nil, err
	}
	if len(out.Resumes) == 0 {
		return nil, nil
	}
	return out.Resumes[0], nil
}

// DownloadURL requests a short-lived download address for the record. An
// answer without an address is a hard failure, never a silent no-op.
func (c *Client) DownloadURL(ctx context.Context, id string) (string, error) {
	var out struct {
		URL       string `json:"download_url"`
		ExpiresIn int    `json:"expires_in"`
	}

	path := fmt.Sprintf("/api/resume/%s/download-url", url.PathEscape(id))
	if err := c.transfer.JSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return "", err
	}

	if out.URL == "" {
		return "", ErrDownloadUnavailable
	}
	return out.URL, nil
}

// Delete removes a record and its stored file.
func (c *Client) Delete(ctx context.Context, id string) error {
	path := fmt.Sprintf("/api/resume/%s", url.PathEscape(id))
	return c.transfer.JSON(ctx, http.MethodDelete, path, nil, nil, nil)
}
