package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codesmith-ai/codesmith/pkg/utils"
)

type stubGenerator struct {
	name     string
	response string
	err      error
	calls    int
	lastReq  GenerateRequest
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) Generate(_ context.Context, req GenerateRequest) (string, error) {
	s.calls++
	s.lastReq = req
	return s.response, s.err
}

func TestFallbackChain_PrimarySuccessSkipsFallback(t *testing.T) {
	primary := &stubGenerator{name: "p", response: "content"}
	fallback := &stubGenerator{name: "f", response: "other"}
	chain := NewFallbackChain(time.Minute, utils.GetLogger(true), primary, fallback)

	got, err := chain.Generate(context.Background(), GenerateRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "content" {
		t.Fatalf("unexpected response: %q", got)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback was called %d times on primary success", fallback.calls)
	}
}

func TestFallbackChain_SingleSubstitutionWithIdenticalRequest(t *testing.T) {
	primary := &stubGenerator{name: "p", err: errors.New("boom")}
	fallback := &stubGenerator{name: "f", response: "rescued"}
	chain := NewFallbackChain(time.Minute, utils.GetLogger(true), primary, fallback)

	req := GenerateRequest{Prompt: "generate index.html", Temperature: 0.2, MaxOutputTokens: 4096}
	got, err := chain.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "rescued" {
		t.Fatalf("unexpected response: %q", got)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Fatalf("expected one call each, got primary=%d fallback=%d", primary.calls, fallback.calls)
	}
	if fallback.lastReq != req {
		t.Fatalf("fallback did not receive identical request: %+v", fallback.lastReq)
	}
}

func TestFallbackChain_BothFailPropagates(t *testing.T) {
	primary := &stubGenerator{name: "p", err: errors.New("primary down")}
	fallback := &stubGenerator{name: "f", err: errors.New("fallback down")}
	chain := NewFallbackChain(time.Minute, utils.GetLogger(true), primary, fallback)

	_, err := chain.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	if err == nil {
		t.Fatalf("expected error when both providers fail")
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Fatalf("expected exactly one call per provider, got primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestFallbackChain_NilFallbackIsSkipped(t *testing.T) {
	primary := &stubGenerator{name: "p", response: "ok"}
	chain := NewFallbackChain(time.Minute, utils.GetLogger(true), primary, nil)
	got, err := chain.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	if err != nil || got != "ok" {
		t.Fatalf("unexpected result: %q, %v", got, err)
	}
}
