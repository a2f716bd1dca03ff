// Package githubfs implements a backend persisting the CSV record file in a
// GitHub repository through the contents API.
package githubfs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"bulktracker/internal/domain"
	"bulktracker/internal/rowcsv"
)

const defaultAPIBase = "https://api.github.com"

// Config describes the repository file backing the store.
type Config struct {
	Token    string // personal access token with contents:write
	Repo     string // "owner/name"
	FilePath string // e.g. "data.csv"
	Branch   string // empty means the default branch
	APIBase  string // override for tests; defaults to api.github.com
}

// Backend reads and writes one file in a GitHub repository. Every write is a
// full-content update carrying the blob SHA of the version it replaces.
type Backend struct {
	client  *http.Client
	apiBase string
	repo    string
	path    string
	branch  string
}

var _ domain.Backend = (*Backend)(nil)

// New creates a backend with an OAuth2-authenticated HTTP client.
func New(cfg Config) *Backend {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	base := cfg.APIBase
	if base == "" {
		base = defaultAPIBase
	}
	return &Backend{
		client:  oauth2.NewClient(context.Background(), src),
		apiBase: strings.TrimSuffix(base, "/"),
		repo:    cfg.Repo,
		path:    cfg.FilePath,
		branch:  cfg.Branch,
	}
}

// ReadAll fetches and decodes the file. A missing file is an empty store.
func (b *Backend) ReadAll(ctx context.Context) ([]domain.Row, error) {
	data, _, err := b.getFile(ctx)
	if err != nil {
		return nil, err
	}
	return rowcsv.Decode(data)
}

// WriteAll replaces the file contents in one update commit.
func (b *Backend) WriteAll(ctx context.Context, rows []domain.Row) error {
	data, err := rowcsv.Encode(rows)
	if err != nil {
		return err
	}
	_, sha, err := b.getFile(ctx)
	if err != nil {
		return err
	}
	return b.putFile(ctx, data, sha)
}

// Append is read-modify-write: the contents API has no native append. A file
// with an unusable schema is started over with just the new row.
func (b *Backend) Append(ctx context.Context, row domain.Row) error {
	data, sha, err := b.getFile(ctx)
	if err != nil {
		return err
	}
	rows, err := rowcsv.Decode(data)
	if err != nil && !errors.Is(err, domain.ErrMalformedSchema) {
		return err
	}
	out, err := rowcsv.Encode(append(rows, row))
	if err != nil {
		return err
	}
	return b.putFile(ctx, out, sha)
}

func (b *Backend) contentsURL() string {
	u := fmt.Sprintf("%s/repos/%s/contents/%s", b.apiBase, b.repo, b.path)
	if b.branch != "" {
		u += "?ref=" + b.branch
	}
	return u
}

// getFile returns the decoded file content and its blob SHA. A 404 yields
// empty content and an empty SHA.
func (b *Backend) getFile(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.contentsURL(), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: contents GET returned %s", domain.ErrStoreUnavailable, resp.Status)
	}

	var body struct {
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	// The API wraps base64 at 60 columns.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(body.Content, "\n", ""))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return raw, body.SHA, nil
}

// putFile creates or updates the file. sha is empty on create.
func (b *Backend) putFile(ctx context.Context, data []byte, sha string) error {
	payload := map[string]string{
		"message": "update " + b.path,
		"content": base64.StdEncoding.EncodeToString(data),
	}
	if sha != "" {
		payload["sha"] = sha
	}
	if b.branch != "" {
		payload["branch"] = b.branch
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/repos/%s/contents/%s", b.apiBase, b.repo, b.path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: contents PUT returned %s", domain.ErrStoreUnavailable, resp.Status)
	}
	return nil
}
