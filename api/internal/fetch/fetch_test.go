package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"llm-relay/api/internal/apperr"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("hello"))
		case "/big":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := New(100*time.Millisecond, 32)

	tests := []struct {
		name      string
		url       string
		wantBody  string
		wantType  string
		wantErr   bool
		errSubstr string
	}{
		{name: "ok", url: srv.URL + "/ok", wantBody: "hello", wantType: "text/plain; charset=utf-8"},
		{name: "not found", url: srv.URL + "/missing", wantErr: true, errSubstr: "404"},
		{name: "too big", url: srv.URL + "/big", wantErr: true, errSubstr: "exceeds 32 bytes"},
		{name: "timeout", url: srv.URL + "/slow", wantErr: true},
		{name: "no scheme", url: "example.com/a.png", wantErr: true, errSubstr: "unsupported url"},
		{name: "ftp", url: "ftp://example.com/a.png", wantErr: true, errSubstr: "unsupported url"},
		{name: "empty", url: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.Fetch(context.Background(), tc.url)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if apperr.KindOf(err) != apperr.Fetch {
					t.Fatalf("kind = %v, want fetch", apperr.KindOf(err))
				}
				if tc.errSubstr != "" && !strings.Contains(err.Error(), tc.errSubstr) {
					t.Fatalf("expected error containing %q, got %q", tc.errSubstr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got.Body) != tc.wantBody {
				t.Fatalf("body = %q, want %q", got.Body, tc.wantBody)
			}
			if got.ContentType != tc.wantType {
				t.Fatalf("content type = %q, want %q", got.ContentType, tc.wantType)
			}
		})
	}
}

func TestFetchSendsUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.UserAgent()
	}))
	defer srv.Close()

	if _, err := New(0, 0).Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ua != userAgent {
		t.Fatalf("user agent = %q, want %q", ua, userAgent)
	}
}
