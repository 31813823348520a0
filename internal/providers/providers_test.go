package providers

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMockClient(t *testing.T) {
	t.Run("generate", func(t *testing.T) {
		c := NewMockClient()
		c.ResponseText = `{"title":"Meet & Greet"}`

		text, err := c.Generate(context.Background(), &Request{
			Document: &Blob{MIMEType: "application/pdf", Data: []byte("%PDF")},
			Prompt:   "extract",
		})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if text != c.ResponseText {
			t.Errorf("text = %q, want %q", text, c.ResponseText)
		}
		if c.RequestCount() != 1 {
			t.Errorf("RequestCount = %d, want 1", c.RequestCount())
		}
		reqs := c.Requests()
		if len(reqs) != 1 || reqs[0].Prompt != "extract" || reqs[0].Document.MIMEType != "application/pdf" {
			t.Errorf("recorded requests = %+v", reqs)
		}
	})

	t.Run("should fail", func(t *testing.T) {
		c := NewMockClient()
		c.ShouldFail = true

		if _, err := c.Generate(context.Background(), &Request{Prompt: "x"}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("custom error", func(t *testing.T) {
		want := errors.New("quota exceeded")
		c := NewMockClient()
		c.FailOn = []int{2}
		c.Err = want

		if _, err := c.Generate(context.Background(), &Request{}); err != nil {
			t.Fatalf("first request error = %v", err)
		}
		if _, err := c.Generate(context.Background(), &Request{}); !errors.Is(err, want) {
			t.Errorf("second request error = %v, want %v", err, want)
		}
		if _, err := c.Generate(context.Background(), &Request{}); err != nil {
			t.Errorf("third request error = %v", err)
		}
	})

	t.Run("fail after", func(t *testing.T) {
		c := NewMockClient()
		c.FailAfter = 1

		if _, err := c.Generate(context.Background(), &Request{}); err != nil {
			t.Fatalf("first request error = %v", err)
		}
		if _, err := c.Generate(context.Background(), &Request{}); err == nil {
			t.Error("expected second request to fail")
		}
	})

	t.Run("respects context during latency", func(t *testing.T) {
		c := NewMockClient()
		c.Latency = time.Second

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := c.Generate(ctx, &Request{}); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})

	t.Run("respond func", func(t *testing.T) {
		c := NewMockClient()
		c.Respond = func(req *Request) string { return req.Prompt + "!" }
		text, _ := c.Generate(context.Background(), &Request{Prompt: "hi"})
		if text != "hi!" {
			t.Errorf("text = %q", text)
		}
	})

	t.Run("reset", func(t *testing.T) {
		c := NewMockClient()
		_, _ = c.Generate(context.Background(), &Request{})
		c.Reset()
		if c.RequestCount() != 0 || len(c.Requests()) != 0 {
			t.Error("Reset() did not clear state")
		}
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("mock", func(t *testing.T) {
		gen, err := New(ctx, Config{Type: MockClientName, Model: "offline"})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if gen.Name() != MockClientName || gen.Model() != "offline" {
			t.Errorf("got %s/%s", gen.Name(), gen.Model())
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		gen, err := New(ctx, Config{Type: MockClientName, RPM: 30})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		limited, ok := gen.(*RateLimited)
		if !ok {
			t.Fatalf("New() = %T, want *RateLimited", gen)
		}
		if got := limited.Limiter().Status().TokensLimit; got != 30 {
			t.Errorf("TokensLimit = %d, want 30", got)
		}
	})

	t.Run("openai", func(t *testing.T) {
		gen, err := New(ctx, Config{Type: OpenAIName, APIKey: "test-key"})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if gen.Model() != OpenAIDefaultModel {
			t.Errorf("Model() = %q, want %q", gen.Model(), OpenAIDefaultModel)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := New(ctx, Config{Type: "carrier-pigeon"})
		if !errors.Is(err, ErrUnknownProvider) {
			t.Errorf("error = %v, want ErrUnknownProvider", err)
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		for _, typ := range []string{GeminiName, OpenAIName} {
			_, err := New(ctx, Config{Type: typ})
			if !errors.Is(err, ErrMissingAPIKey) {
				t.Errorf("%s: error = %v, want ErrMissingAPIKey", typ, err)
			}
		}
	})
}

func TestRateLimiter(t *testing.T) {
	t.Run("bucket starts full", func(t *testing.T) {
		r := NewRateLimiter(3)
		for i := 0; i < 3; i++ {
			if err := r.Wait(context.Background()); err != nil {
				t.Fatalf("Wait() %d error = %v", i, err)
			}
		}
		st := r.Status()
		if st.TotalConsumed != 3 || st.TokensLimit != 3 {
			t.Errorf("Status() = %+v", st)
		}
		if st.TimeUntilToken <= 0 {
			t.Errorf("TimeUntilToken = %v, want positive on an empty bucket", st.TimeUntilToken)
		}
	})

	t.Run("wait honors context", func(t *testing.T) {
		r := NewRateLimiter(1)
		if err := r.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := r.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Wait() error = %v, want deadline exceeded", err)
		}
	})
}

func TestRateLimited(t *testing.T) {
	mock := NewMockClient()
	gen := NewRateLimited(mock, 1)

	if gen.Name() != MockClientName || gen.Model() != "mock-model" {
		t.Errorf("identity = %s/%s, want the wrapped client's", gen.Name(), gen.Model())
	}
	if _, err := gen.Generate(context.Background(), &Request{Prompt: "x"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := gen.Generate(ctx, &Request{Prompt: "y"}); err == nil {
		t.Error("second Generate() should wait past the deadline")
	}
	if mock.RequestCount() != 1 {
		t.Errorf("RequestCount() = %d, want 1", mock.RequestCount())
	}
	if err := gen.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
