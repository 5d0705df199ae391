package httpx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(okHandler(), mark("a"), nil, mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Join(order, ",") != "a,b" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestBodyLimitAndSecurityHeaders(t *testing.T) {
	var parseErr error
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parseErr = r.ParseForm()
	}), WithSecurityHeaders, WithBodyLimit(8))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("client_name=much-too-long"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if parseErr == nil {
		t.Fatal("expected form parsing to fail past the body limit")
	}
	if rw.Header().Get("X-Frame-Options") != "DENY" || rw.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing security headers: %v", rw.Header())
	}

	parseErr = nil
	unlimited := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parseErr = r.ParseForm()
	}), WithBodyLimit(0), WithTimeout(0))
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("client_name=much-too-long"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	unlimited.ServeHTTP(httptest.NewRecorder(), req)
	if parseErr != nil {
		t.Fatalf("zero limit should disable the cap: %v", parseErr)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected incoming id to propagate, got %q", seen)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || seen == "abc-123" {
		t.Fatalf("expected a generated id, got %q", seen)
	}
}

func TestMemoryRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	h := RateLimit(rl, nil, false, http.MethodPost)(okHandler())
	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/accounts/login/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if post() != http.StatusOK || post() != http.StatusOK {
		t.Fatal("first two requests should pass")
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}

	get := httptest.NewRequest(http.MethodGet, "/accounts/login/", nil)
	get.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, get)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET should not be limited, got %d", rec.Code)
	}

	now = now.Add(2 * time.Minute)
	if post() != http.StatusOK {
		t.Fatal("window reset should allow requests again")
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}
func (failingLimiter) Window() time.Duration { return time.Minute }

func TestRateLimitFailOpen(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rec := httptest.NewRecorder()
	RateLimit(failingLimiter{}, logger, true)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("fail-open should pass request, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	RateLimit(failingLimiter{}, logger, false)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("fail-closed should reject request, got %d", rec.Code)
	}
}

func TestAccessLogAndRecover(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), WithRequestID, WithAccessLog(logger), WithRecover(logger))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/explode", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	out := buf.String()
	if !strings.Contains(out, `"panic":"boom"`) || !strings.Contains(out, `"status":500`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

// fakeScripter counts script runs per key the way the fixed-window script does.
type fakeScripter struct {
	counts map[string]int64
	err    error
}

func (f *fakeScripter) run(ctx context.Context, keys []string) *redis.Cmd {
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.counts[keys[0]]++
	cmd.SetVal(f.counts[keys[0]])
	return cmd
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeScripter) EvalSha(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeScripter) EvalRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeScripter) EvalShaRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeScripter) ScriptExists(ctx context.Context, _ ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceCmd(ctx)
}

func (f *fakeScripter) ScriptLoad(ctx context.Context, _ string) *redis.StringCmd {
	return redis.NewStringCmd(ctx)
}

func TestRedisRateLimiter(t *testing.T) {
	ctx := context.Background()
	fake := &fakeScripter{counts: map[string]int64{}}
	rl := NewRedisRateLimiter(fake, 2, 0, " ")
	if rl.Window() != time.Minute {
		t.Fatalf("expected default window, got %s", rl.Window())
	}

	for i, want := range []bool{true, true, false} {
		ok, err := rl.Allow(ctx, "10.0.0.1|/book/1/")
		if err != nil || ok != want {
			t.Fatalf("call %d: got %v (err=%v), want %v", i, ok, err, want)
		}
	}
	if fake.counts["rl:10.0.0.1|/book/1/"] != 3 {
		t.Fatalf("expected prefixed key, got %v", fake.counts)
	}
	if ok, _ := rl.Allow(ctx, "10.0.0.2|/book/1/"); !ok {
		t.Fatal("other clients have their own window")
	}

	fake.err = errors.New("redis down")
	if _, err := rl.Allow(ctx, "10.0.0.1|/book/1/"); err == nil {
		t.Fatal("expected redis error to surface")
	}
}
