package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mahaveer86619/trailstory-go/pkg/session"
)

// authServer is a minimal token-issuing API: /protected accepts only the
// current access token, /auth/refresh rotates the token pair.
type authServer struct {
	mu             sync.Mutex
	accessToken    string
	refreshToken   string
	refreshCalls   int32
	protectedCalls int32
	refreshDelay   time.Duration
	refreshStatus  int
}

func (a *authServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&a.protectedCalls, 1)
		a.mu.Lock()
		expect := "Bearer " + a.accessToken
		a.mu.Unlock()

		if r.Header.Get("Authorization") != expect {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"status_code":401,"message":"token expired"}`)
			return
		}
		fmt.Fprint(w, `{"status_code":200,"data":{"ok":true},"message":""}`)
	})

	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&a.refreshCalls, 1)
		if a.refreshDelay > 0 {
			time.Sleep(a.refreshDelay)
		}
		if a.refreshStatus != 0 {
			w.WriteHeader(a.refreshStatus)
			fmt.Fprint(w, `{"status_code":401,"message":"invalid refresh token"}`)
			return
		}

		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		a.mu.Lock()
		if body.RefreshToken != a.refreshToken {
			a.mu.Unlock()
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"status_code":401,"message":"invalid refresh token"}`)
			return
		}
		a.accessToken = a.accessToken + "-rotated"
		a.refreshToken = a.refreshToken + "-rotated"
		access, refresh := a.accessToken, a.refreshToken
		a.mu.Unlock()

		fmt.Fprintf(w, `{"status_code":200,"data":{"token":%q,"refresh_token":%q,"user":{"id":"user-1","display_name":"Ada","email":"ada@example.com"}},"message":""}`,
			access, refresh)
	})

	return mux
}

func newTestPipeline(t *testing.T, api *authServer) (*Pipeline, *session.MemoryStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	return New(srv.URL, store, srv.Client(), zerolog.Nop()), store, srv
}

func seed(t *testing.T, store session.Store, access, refresh string) {
	t.Helper()
	err := store.Save(context.Background(), session.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         session.UserProfile{ID: "user-1"},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSendAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"status_code":200,"data":null,"message":""}`)
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	p := New(srv.URL, store, srv.Client(), zerolog.Nop())
	ctx := context.Background()

	t.Run("token present", func(t *testing.T) {
		seed(t, store, "tok-123", "ref-123")
		if _, err := p.Send(ctx, Request{Method: http.MethodGet, Path: "/anything"}); err != nil {
			t.Fatal(err)
		}
		if gotAuth != "Bearer tok-123" {
			t.Errorf("Got Authorization %q, want Bearer tok-123", gotAuth)
		}
	})

	t.Run("token absent", func(t *testing.T) {
		if err := store.Clear(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := p.Send(ctx, Request{Method: http.MethodGet, Path: "/anything"}); err != nil {
			t.Fatal(err)
		}
		if gotAuth != "" {
			t.Errorf("Expected no Authorization header, got %q", gotAuth)
		}
	})
}

func TestSendPassesThroughNon401(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"success", http.StatusOK, `{"status_code":200,"data":{"id":"j1"},"message":""}`},
		{"validation failure", http.StatusBadRequest, `{"status_code":400,"message":"title cannot be empty"}`},
		{"not found", http.StatusNotFound, `{"status_code":404,"message":"journey not found"}`},
		{"server failure", http.StatusInternalServerError, `{"status_code":500,"message":"boom"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			p := New(srv.URL, session.NewMemoryStore(), srv.Client(), zerolog.Nop())
			resp, err := p.Send(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
			if err != nil {
				t.Fatalf("Send returned error: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("Got status %d, want %d", resp.StatusCode, tt.status)
			}
			if string(resp.Body) != tt.body {
				t.Errorf("Got body %s, want %s", resp.Body, tt.body)
			}
		})
	}
}

func TestSendRefreshesOn401(t *testing.T) {
	api := &authServer{accessToken: "good", refreshToken: "ref"}
	p, store, _ := newTestPipeline(t, api)
	ctx := context.Background()

	seed(t, store, "stale", "ref")

	resp, err := p.Send(ctx, Request{Method: http.MethodGet, Path: "/protected"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Got status %d, want 200 after refresh and retry", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&api.refreshCalls); got != 1 {
		t.Errorf("Got %d refresh calls, want 1", got)
	}

	s, ok := store.Load(ctx)
	if !ok {
		t.Fatal("Expected session to remain after refresh")
	}
	if s.AccessToken != "good-rotated" {
		t.Errorf("Got access token %q, want good-rotated", s.AccessToken)
	}
	if s.RefreshToken != "ref-rotated" {
		t.Errorf("Got refresh token %q, want ref-rotated", s.RefreshToken)
	}
	if s.User.DisplayName != "Ada" {
		t.Errorf("Expected refreshed profile to be stored, got %+v", s.User)
	}
}

func TestSendWithoutRefreshTokenSignsOut(t *testing.T) {
	api := &authServer{accessToken: "good", refreshToken: "ref"}
	p, store, _ := newTestPipeline(t, api)
	ctx := context.Background()

	seed(t, store, "stale", "")

	_, err := p.Send(ctx, Request{Method: http.MethodGet, Path: "/protected"})
	if !IsAuthExpired(err) {
		t.Fatalf("Got error %v, want auth expired", err)
	}
	if _, ok := store.Load(ctx); ok {
		t.Error("Expected session to be cleared")
	}
	if got := atomic.LoadInt32(&api.refreshCalls); got != 0 {
		t.Errorf("Got %d refresh calls, want 0", got)
	}
}

func TestSendWithRejectedRefreshSignsOut(t *testing.T) {
	api := &authServer{accessToken: "good", refreshToken: "ref", refreshStatus: http.StatusUnauthorized}
	p, store, _ := newTestPipeline(t, api)
	ctx := context.Background()

	seed(t, store, "stale", "ref")

	_, err := p.Send(ctx, Request{Method: http.MethodGet, Path: "/protected"})
	if !IsAuthExpired(err) {
		t.Fatalf("Got error %v, want auth expired", err)
	}
	if _, ok := store.Load(ctx); ok {
		t.Error("Expected session to be cleared")
	}
}

func TestSendNeverRetriesTwice(t *testing.T) {
	// The server rejects every /protected call, even with the refreshed token.
	srvCalls := int32(0)
	refreshCalls := int32(0)
	mux := http.NewServeMux()
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&srvCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"status_code":401,"message":"token expired"}`)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		fmt.Fprint(w, `{"status_code":200,"data":{"token":"new","refresh_token":"new-ref","user":{"id":"user-1"}},"message":""}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := session.NewMemoryStore()
	p := New(srv.URL, store, srv.Client(), zerolog.Nop())
	ctx := context.Background()
	seed(t, store, "stale", "ref")

	resp, err := p.Send(ctx, Request{Method: http.MethodGet, Path: "/protected"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Got status %d, want the retried 401 returned as-is", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&srvCalls); got != 2 {
		t.Errorf("Got %d protected calls, want exactly 2 (original plus one retry)", got)
	}
	if got := atomic.LoadInt32(&refreshCalls); got != 1 {
		t.Errorf("Got %d refresh calls, want 1", got)
	}
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	api := &authServer{accessToken: "good", refreshToken: "ref", refreshDelay: 100 * time.Millisecond}
	p, store, _ := newTestPipeline(t, api)
	ctx := context.Background()

	seed(t, store, "stale", "ref")

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	statuses := make([]int, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := p.Send(ctx, Request{Method: http.MethodGet, Path: "/protected"})
			errs[i] = err
			if resp != nil {
				statuses[i] = resp.StatusCode
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Errorf("Caller %d got error: %v", i, errs[i])
		} else if statuses[i] != http.StatusOK {
			t.Errorf("Caller %d got status %d, want 200", i, statuses[i])
		}
	}
	if got := atomic.LoadInt32(&api.refreshCalls); got != 1 {
		t.Errorf("Got %d refresh calls, want a single coalesced refresh", got)
	}
}

func TestRefreshSurvivesStartingCallerCancellation(t *testing.T) {
	api := &authServer{accessToken: "good", refreshToken: "ref", refreshDelay: 200 * time.Millisecond}
	p, store, _ := newTestPipeline(t, api)

	seed(t, store, "stale", "ref")

	firstCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// The first caller hits the 401 and starts the refresh; its context dies
	// while the refresh is still in flight.
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = p.Send(firstCtx, Request{Method: http.MethodGet, Path: "/protected"})
	}()
	time.Sleep(50 * time.Millisecond)

	// A second caller joins the same in-flight refresh.
	var resp *Response
	var err error
	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, err = p.Send(context.Background(), Request{Method: http.MethodGet, Path: "/protected"})
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	wg.Wait()

	if err != nil {
		t.Fatalf("Second caller failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Second caller got status %d, want 200", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&api.refreshCalls); got != 1 {
		t.Errorf("Got %d refresh calls, want 1", got)
	}

	s, ok := store.Load(context.Background())
	if !ok {
		t.Fatal("Expected the refreshed session to be stored, not cleared")
	}
	if s.AccessToken != "good-rotated" {
		t.Errorf("Got access token %q, want good-rotated", s.AccessToken)
	}
}

func TestSendReportsNetworkErrors(t *testing.T) {
	// Port reserved then closed, so nothing is listening.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := New(url, session.NewMemoryStore(), nil, zerolog.Nop())
	_, err := p.Send(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	if !IsNetwork(err) {
		t.Fatalf("Got error %v, want network kind", err)
	}
}
