// Package client is the HTTP client of the persistence API. It implements the
// interfaces consumed by the sync stages and maps envelope error codes back to
// the domain errors of the resume and share packages.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"resumeEditor/internal/errcode"
	"resumeEditor/internal/resume"
	"resumeEditor/internal/syncer"
)

var (
	// ErrNotFound 与服务端 NOT_FOUND 对应。
	ErrNotFound = resume.ErrNotFound
	// ErrTransient 标记网络失败、5xx 与限流，调用方可以稍后重试。
	ErrTransient    = errors.New("transient api failure")
	ErrUnauthorized = errors.New("api rejected credentials")
)

const defaultTimeout = 15 * time.Second

var (
	_ syncer.ResumeAPI = (*Client)(nil)
	_ syncer.ShareAPI  = (*Client)(nil)
)

// APIError 是服务端返回的失败信封。
type APIError struct {
	Status  int
	Code    errcode.Code
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap 让 errors.Is 能匹配领域错误或 ErrTransient。
func (e *APIError) Unwrap() error {
	if domain := e.Code.Err(); domain != nil {
		return domain
	}
	switch {
	case e.Code == errcode.Unauthorized:
		return ErrUnauthorized
	case e.Code == errcode.RateLimited, e.Status >= http.StatusInternalServerError:
		return ErrTransient
	}
	return nil
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   errcode.Code    `json:"error"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %v", ErrTransient, method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return &APIError{Status: resp.StatusCode, Code: errcode.Internal}
		}
		return fmt.Errorf("decode %s %s response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if !env.Success {
		return &APIError{Status: resp.StatusCode, Code: env.Error, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}
	return nil
}

func resumePath(id string, rest ...string) string {
	return "/v1/resumes/" + url.PathEscape(id) + strings.Join(rest, "")
}

// CreateResume 新建一份只含默认 Section 的简历。
func (c *Client) CreateResume(ctx context.Context, title string) (*resume.Resume, error) {
	var out resume.Resume
	if err := c.do(ctx, http.MethodPost, "/v1/resumes", nil, map[string]string{"title": title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListResumes(ctx context.Context, q resume.ListQuery) (*resume.ResumeList, error) {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.SortBy != "" {
		values.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		values.Set("sortOrder", q.SortOrder)
	}
	path := "/v1/resumes"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	var out resume.ResumeList
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetResume(ctx context.Context, id string) (*resume.Detail, error) {
	var out resume.Detail
	if err := c.do(ctx, http.MethodGet, resumePath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateResumeFull(ctx context.Context, id string, u resume.FullUpdate) (*resume.Resume, error) {
	var out resume.Resume
	if err := c.do(ctx, http.MethodPut, resumePath(id), nil, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateResumeMetadata(ctx context.Context, id string, u resume.MetadataUpdate) (*resume.Resume, error) {
	var out resume.Resume
	if err := c.do(ctx, http.MethodPatch, resumePath(id), nil, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReplaceSections(ctx context.Context, id string, sections []resume.Section) (*resume.Resume, error) {
	var out resume.Resume
	body := map[string][]resume.Section{"sections": sections}
	if err := c.do(ctx, http.MethodPut, resumePath(id, "/sections"), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteResume(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, resumePath(id), nil, nil, nil)
}

func (c *Client) CreateShareLink(ctx context.Context, resumeID string, opts resume.ShareOptions) (*resume.ShareLink, error) {
	var out resume.ShareLink
	if err := c.do(ctx, http.MethodPost, resumePath(resumeID, "/share"), nil, opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListShareLinks(ctx context.Context, resumeID string) ([]resume.ShareLink, error) {
	var out []resume.ShareLink
	if err := c.do(ctx, http.MethodGet, resumePath(resumeID, "/share"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeactivateShareLink(ctx context.Context, shareID string) (*resume.ShareLink, error) {
	var out resume.ShareLink
	if err := c.do(ctx, http.MethodDelete, "/v1/share/"+url.PathEscape(shareID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResolvePublic 访问公开分享页，password 为空时不发送密码头。
func (c *Client) ResolvePublic(ctx context.Context, slug, password string) (*resume.PublicView, error) {
	header := http.Header{}
	if password != "" {
		header.Set("X-Share-Password", password)
	}
	var out resume.PublicView
	if err := c.do(ctx, http.MethodGet, "/v1/public/"+url.PathEscape(slug), header, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportResume 请求一次后台 JSON 导出；服务端未配置对象存储时返回 404。
func (c *Client) ExportResume(ctx context.Context, id string) (*resume.ExportJob, error) {
	var out resume.ExportJob
	if err := c.do(ctx, http.MethodPost, resumePath(id, "/export"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListExports(ctx context.Context, id string) ([]resume.ExportFile, error) {
	var out []resume.ExportFile
	if err := c.do(ctx, http.MethodGet, resumePath(id, "/exports"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
