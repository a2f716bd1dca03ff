package githubfs_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bulktracker/internal/adapter/githubfs"
	"bulktracker/internal/domain"
)

// fakeContentsAPI emulates the two contents-API calls the backend makes.
type fakeContentsAPI struct {
	content []byte
	sha     int
	lastPut struct {
		sha    string
		branch string
	}
}

func (f *fakeContentsAPI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/tester/bulk-data/contents/data.csv" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			if f.content == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			// GitHub wraps the base64 text with newlines.
			enc := base64.StdEncoding.EncodeToString(f.content)
			if len(enc) > 4 {
				enc = enc[:4] + "\n" + enc[4:]
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"content": enc,
				"sha":     fmt.Sprintf("sha-%d", f.sha),
			})
		case http.MethodPut:
			var body struct {
				Content string `json:"content"`
				SHA     string `json:"sha"`
				Branch  string `json:"branch"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("bad PUT body: %v", err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			raw, err := base64.StdEncoding.DecodeString(body.Content)
			if err != nil {
				t.Errorf("PUT content not base64: %v", err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.lastPut.sha = body.SHA
			f.lastPut.branch = body.Branch
			created := f.content == nil
			f.content = raw
			f.sha++
			if created {
				w.WriteHeader(http.StatusCreated)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func newBackend(t *testing.T, api *fakeContentsAPI) (*githubfs.Backend, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	return githubfs.New(githubfs.Config{
		Token:    "test-token",
		Repo:     "tester/bulk-data",
		FilePath: "data.csv",
		APIBase:  srv.URL,
	}), srv
}

func TestReadAll_MissingFileIsEmpty(t *testing.T) {
	b, _ := newBackend(t, &fakeContentsAPI{})
	rows, err := b.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("404 should read as empty, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestWriteThenRead(t *testing.T) {
	api := &fakeContentsAPI{}
	b, _ := newBackend(t, api)
	ctx := context.Background()

	want := []domain.Row{
		{Date: "2024-01-01", Weight: "80", SMM: "35"},
		{Date: "2024-01-02", Weight: "80.4", SMM: "35.1"},
	}
	if err := b.WriteAll(ctx, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	// First write creates the file, so no SHA is sent.
	if api.lastPut.sha != "" {
		t.Errorf("create carried sha %q, want none", api.lastPut.sha)
	}

	got, err := b.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestWriteAll_CarriesBlobSHAOnUpdate(t *testing.T) {
	api := &fakeContentsAPI{}
	b, _ := newBackend(t, api)
	ctx := context.Background()

	if err := b.WriteAll(ctx, []domain.Row{{Date: "2024-01-01", Weight: "80", SMM: "35"}}); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteAll(ctx, []domain.Row{{Date: "2024-01-01", Weight: "81", SMM: "35"}}); err != nil {
		t.Fatal(err)
	}
	if api.lastPut.sha == "" {
		t.Error("update PUT did not carry the blob SHA")
	}
}

func TestAppend(t *testing.T) {
	api := &fakeContentsAPI{}
	b, _ := newBackend(t, api)
	ctx := context.Background()

	if err := b.Append(ctx, domain.Row{Date: "2024-01-01", Weight: "80", SMM: "35"}); err != nil {
		t.Fatal(err)
	}
	if err := b.Append(ctx, domain.Row{Date: "2024-01-02", Weight: "80.4", SMM: "35.1"}); err != nil {
		t.Fatal(err)
	}

	rows, err := b.ReadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1].Date != "2024-01-02" {
		t.Errorf("got %+v, want two appended rows", rows)
	}
}

func TestServerError_IsStoreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	b := githubfs.New(githubfs.Config{Token: "t", Repo: "tester/bulk-data", FilePath: "data.csv", APIBase: srv.URL})
	if _, err := b.ReadAll(context.Background()); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if err := b.Append(context.Background(), domain.Row{Date: "2024-01-01", Weight: "80", SMM: "35"}); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("append err = %v, want ErrStoreUnavailable", err)
	}
}
