package rlm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dgallion1/rlmproc/internal/oracle"
)

// fakeOracle records every request and answers via the reply func,
// defaulting to "ok". Safe for concurrent use.
type fakeOracle struct {
	mu    sync.Mutex
	calls []oracle.Request
	reply func(req oracle.Request) (string, error)
}

func (f *fakeOracle) Query(ctx context.Context, req oracle.Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.reply == nil {
		return "ok", nil
	}
	return f.reply(req)
}

func (f *fakeOracle) recorded() []oracle.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]oracle.Request, len(f.calls))
	copy(out, f.calls)
	return out
}

func TestProcessChunkReturnsTrimmedExtraction(t *testing.T) {
	fake := &fakeOracle{reply: func(oracle.Request) (string, error) {
		return "  the relay fails above 80C  \n", nil
	}}
	p := New(fake, nil)

	ext, outcome := p.ProcessChunk(context.Background(), "relay spec text", 3, 9, "relay limits", Options{})
	if ext == nil {
		t.Fatalf("expected an extraction, got nil")
	}
	if ext.Text != "the relay fails above 80C" {
		t.Errorf("extraction text = %q, want trimmed reply", ext.Text)
	}
	if ext.Index != 3 {
		t.Errorf("extraction index = %d, want 3", ext.Index)
	}
	if outcome.Status != StatusExtracted {
		t.Errorf("outcome status = %q, want %q", outcome.Status, StatusExtracted)
	}

	calls := fake.recorded()
	if len(calls) != 1 {
		t.Fatalf("expected 1 oracle call, got %d", len(calls))
	}
	req := calls[0]
	if !strings.Contains(req.Prompt, "chunk 4 of 9") {
		t.Errorf("prompt missing positional header: %q", req.Prompt)
	}
	if !strings.Contains(req.Prompt, "relay limits") || !strings.Contains(req.Prompt, "relay spec text") {
		t.Errorf("prompt missing query or chunk content: %q", req.Prompt)
	}
	if !strings.Contains(req.Prompt, NoInfoSentinel) {
		t.Errorf("prompt missing sentinel instruction")
	}
	if req.MaxTokens != ExtractMaxTokens {
		t.Errorf("max tokens = %d, want %d", req.MaxTokens, ExtractMaxTokens)
	}
}

func TestProcessChunkSentinelReplyYieldsNoInfo(t *testing.T) {
	fake := &fakeOracle{reply: func(oracle.Request) (string, error) {
		return "NO_RELEVANT_INFO", nil
	}}
	p := New(fake, nil)

	ext, outcome := p.ProcessChunk(context.Background(), "unrelated text", 0, 2, "q", Options{})
	if ext != nil {
		t.Errorf("expected nil extraction for sentinel reply, got %+v", ext)
	}
	if outcome.Status != StatusNoInfo {
		t.Errorf("outcome status = %q, want %q", outcome.Status, StatusNoInfo)
	}
}

func TestProcessChunkFailureRecordsError(t *testing.T) {
	fake := &fakeOracle{reply: func(oracle.Request) (string, error) {
		return "", errors.New("rate limited")
	}}
	p := New(fake, nil)

	ext, outcome := p.ProcessChunk(context.Background(), "text", 5, 8, "q", Options{})
	if ext != nil {
		t.Errorf("expected nil extraction on failure, got %+v", ext)
	}
	if outcome.Status != StatusFailed {
		t.Errorf("outcome status = %q, want %q", outcome.Status, StatusFailed)
	}
	if outcome.Index != 5 {
		t.Errorf("outcome index = %d, want 5", outcome.Index)
	}
	if !strings.Contains(outcome.Err, "rate limited") {
		t.Errorf("outcome error = %q, want the oracle error", outcome.Err)
	}
}

func TestProcessChunkFastHintPropagates(t *testing.T) {
	fake := &fakeOracle{}
	p := New(fake, nil)

	p.ProcessChunk(context.Background(), "text", 0, 1, "q", Options{Fast: true})
	calls := fake.recorded()
	if len(calls) != 1 || !calls[0].Fast {
		t.Errorf("expected fast hint on the oracle request")
	}
}
