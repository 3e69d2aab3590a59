package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeProvider returns a canned answer or error and counts calls
type fakeProvider struct {
	name string
	out  string
	err  error

	mu      sync.Mutex
	calls   int
	pingErr error
	pings   int
	lastReq CompletionRequest
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastReq = req
	return f.out, f.err
}

func (f *fakeProvider) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return f.pingErr
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestFallbackChain(t *testing.T) {
	t.Parallel()

	errCloud := errors.New("quota exceeded")
	errLocal := errors.New("connection refused")

	tests := []struct {
		name      string
		providers []*fakeProvider
		wantOut   string
		wantErrs  []error
		wantCalls []int
	}{
		{
			name:      "first provider answers",
			providers: []*fakeProvider{{name: "gemini", out: "cloud"}, {name: "ollama", out: "local"}},
			wantOut:   "cloud",
			wantCalls: []int{1, 0},
		},
		{
			name:      "falls through to the next provider",
			providers: []*fakeProvider{{name: "gemini", err: errCloud}, {name: "ollama", out: "local"}},
			wantOut:   "local",
			wantCalls: []int{1, 1},
		},
		{
			name:      "all providers fail",
			providers: []*fakeProvider{{name: "gemini", err: errCloud}, {name: "ollama", err: errLocal}},
			wantErrs:  []error{ErrNoProviderAvailable, errCloud, errLocal},
			wantCalls: []int{1, 1},
		},
		{
			name:     "empty chain",
			wantErrs: []error{ErrNoProviderAvailable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			providers := make([]Provider, 0, len(tt.providers))
			for _, p := range tt.providers {
				providers = append(providers, p)
			}
			chain := NewFallbackChain(providers)

			out, err := Generate(context.Background(), chain, "summarize", "text")
			if len(tt.wantErrs) == 0 && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.wantErrs {
				if !errors.Is(err, want) {
					t.Errorf("error %v does not wrap %v", err, want)
				}
			}
			if out != tt.wantOut {
				t.Errorf("out = %q, want %q", out, tt.wantOut)
			}
			for i, p := range tt.providers {
				if got := p.callCount(); got != tt.wantCalls[i] {
					t.Errorf("provider %s called %d times, want %d", p.name, got, tt.wantCalls[i])
				}
			}
		})
	}

	if got := NewFallbackChain(nil).Name(); got != ProviderAuto {
		t.Errorf("chain name = %q, want %q", got, ProviderAuto)
	}
}

func TestProbedProvider_CachesProbe(t *testing.T) {
	t.Parallel()

	inner := &fakeProvider{name: ProviderOllama, out: "ok"}
	p := NewProbedProvider(inner, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := Generate(context.Background(), p, "summarize", "x"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if inner.pings != 1 {
		t.Errorf("probed %d times, want 1 within the TTL", inner.pings)
	}
	if inner.callCount() != 3 {
		t.Errorf("forwarded %d calls, want 3", inner.callCount())
	}
	if p.Name() != ProviderOllama {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestProbedProvider_Unreachable(t *testing.T) {
	t.Parallel()

	inner := &fakeProvider{name: ProviderOllama, out: "never", pingErr: errors.New("dial tcp: refused")}
	p := NewProbedProvider(inner, 0)

	_, err := Generate(context.Background(), p, "chat", "x")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("error = %v, want ErrProviderUnavailable", err)
	}
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Provider != ProviderOllama || pe.Op != "chat" {
		t.Errorf("error = %#v", err)
	}
	if inner.callCount() != 0 {
		t.Error("an unreachable provider must not be called")
	}
	if p.Available(context.Background()) {
		t.Error("cached probe result should still be unavailable")
	}
	if inner.pings != 1 {
		t.Errorf("probed %d times, want 1", inner.pings)
	}
}

func TestRouter_For(t *testing.T) {
	t.Parallel()

	cloud := &fakeProvider{name: ProviderGemini, out: "cloud"}
	local := &fakeProvider{name: ProviderOllama, out: "local"}

	withCloud := NewRouter(cloud, local, local)
	noCloud := NewRouter(nil, local, local)

	tests := []struct {
		name   string
		router *Router
		pref   string
		want   string
	}{
		{"explicit gemini", withCloud, "gemini", ProviderGemini},
		{"explicit gemini is case insensitive", withCloud, " Gemini ", ProviderGemini},
		{"explicit ollama", withCloud, "ollama", ProviderOllama},
		{"auto", withCloud, "auto", ProviderAuto},
		{"missing header", withCloud, "", ProviderAuto},
		{"unknown value", withCloud, "claude", ProviderAuto},
		{"gemini without key falls back to auto", noCloud, "gemini", ProviderAuto},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.router.For(tt.pref).Name(); got != tt.want {
				t.Errorf("For(%q) = %s, want %s", tt.pref, got, tt.want)
			}
		})
	}
}

func TestRouter_AutoOrder(t *testing.T) {
	t.Parallel()

	cloud := &fakeProvider{name: ProviderGemini, err: errors.New("500")}
	local := &fakeProvider{name: ProviderOllama, out: "local answer"}
	r := NewRouter(cloud, local, local)

	out, err := Generate(context.Background(), r.Auto(), "summarize", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "local answer" {
		t.Errorf("out = %q", out)
	}
	if cloud.callCount() != 1 || local.callCount() != 1 {
		t.Errorf("calls cloud=%d local=%d, want 1/1", cloud.callCount(), local.callCount())
	}

	_, err = Generate(context.Background(), NewRouter(nil, nil, nil).Auto(), "summarize", "x")
	if !errors.Is(err, ErrNoProviderAvailable) {
		t.Errorf("error = %v, want ErrNoProviderAvailable", err)
	}
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	limited := &ProviderError{Provider: ProviderGemini, Op: "chat", StatusCode: 429, Err: errors.New("x")}
	denied := &ProviderError{Provider: ProviderGemini, Op: "chat", StatusCode: 403, Err: errors.New("x")}
	other := &ProviderError{Provider: ProviderOllama, Op: "chat", Err: errors.New("x")}

	tests := []struct {
		name          string
		err           error
		wantRateLimit bool
		wantAuth      bool
	}{
		{"nil", nil, false, false},
		{"rate limited", limited, true, false},
		{"forbidden", denied, false, true},
		{"plain", other, false, false},
		{"rate limit text", errors.New("Rate limit reached"), true, false},
		{"joined chain", errors.Join(other, denied), false, true},
		{"wrapped join", errors.Join(errors.New("a"), errors.Join(limited)), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRateLimitError(tt.err); got != tt.wantRateLimit {
				t.Errorf("IsRateLimitError() = %v, want %v", got, tt.wantRateLimit)
			}
			if got := IsAuthError(tt.err); got != tt.wantAuth {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.wantAuth)
			}
		})
	}

	if got := limited.Error(); got != "gemini chat failed (status 429): x" {
		t.Errorf("Error() = %q", got)
	}
}
