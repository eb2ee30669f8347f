package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/breeze-rmm/deskmirror/internal/stl"
)

func waitResults(t *testing.T, l *Loader, n int) []Result {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var got []Result
	for len(got) < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out with %d of %d results", len(got), n)
		}
		got = append(got, l.Poll()...)
		time.Sleep(time.Millisecond)
	}
	return got
}

func shutdown(t *testing.T, l *Loader) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSubmitParsesRealFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.stl")
	src := "solid t\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nvertex 0 1 0\nendloop\nendfacet\nendsolid t\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	l := New(1, 4, nil)
	defer shutdown(t, l)
	if !l.Submit(path) {
		t.Fatal("Submit failed")
	}
	res := waitResults(t, l, 1)[0]
	if res.Err != nil {
		t.Fatalf("parse error: %v", res.Err)
	}
	if res.Path != path || res.File == nil || len(res.File.Facets) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if l.Pending() != 0 {
		t.Fatalf("pending = %d after poll", l.Pending())
	}
}

func TestParseErrorIsWrapped(t *testing.T) {
	l := New(2, 4, func(string) (*stl.File, error) { return nil, stl.ErrNoFacets })
	defer shutdown(t, l)
	l.Submit("empty.stl")

	res := waitResults(t, l, 1)[0]
	if !errors.Is(res.Err, stl.ErrNoFacets) {
		t.Fatalf("err = %v, want ErrNoFacets", res.Err)
	}
	if !strings.Contains(res.Err.Error(), "empty.stl") {
		t.Fatalf("error %q should name the path", res.Err)
	}
}

func TestPollDoesNotBlock(t *testing.T) {
	block := make(chan struct{})
	l := New(1, 2, func(string) (*stl.File, error) {
		<-block
		return &stl.File{}, nil
	})
	l.Submit("slow.stl")

	done := make(chan []Result)
	go func() { done <- l.Poll() }()
	select {
	case r := <-done:
		if len(r) != 0 {
			t.Fatalf("Poll returned %d results before parse finished", len(r))
		}
	case <-time.After(time.Second):
		t.Fatal("Poll blocked")
	}

	close(block)
	waitResults(t, l, 1)
	shutdown(t, l)
}

func TestSubmitRefusedWhenOutstandingFull(t *testing.T) {
	block := make(chan struct{})
	l := New(1, 2, func(string) (*stl.File, error) {
		<-block
		return &stl.File{}, nil
	})

	if !l.Submit("a") || !l.Submit("b") {
		t.Fatal("first two submits should succeed")
	}
	if l.Submit("c") {
		t.Fatal("Submit should fail once every result slot is reserved")
	}

	close(block)
	waitResults(t, l, 2)
	if !l.Submit("d") {
		t.Fatal("Submit should succeed again after results are polled")
	}
	waitResults(t, l, 1)
	shutdown(t, l)
}

func TestSubmitAfterCloseReturnsFalse(t *testing.T) {
	l := New(1, 1, nil)
	shutdown(t, l)
	if l.Submit("x.stl") {
		t.Fatal("Submit after Close should return false")
	}
	// Second close is a no-op.
	shutdown(t, l)
}

func TestCloseRespectsContextDeadline(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	l := New(1, 1, func(string) (*stl.File, error) {
		<-block
		return nil, nil
	})
	l.Submit("stuck.stl")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := l.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Close err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Close should give up near the deadline, took %v", elapsed)
	}
}

func TestPanicRecovery(t *testing.T) {
	l := New(1, 4, func(path string) (*stl.File, error) {
		if path == "bad.stl" {
			panic("corrupt")
		}
		return &stl.File{Name: path}, nil
	})
	defer shutdown(t, l)

	l.Submit("bad.stl")
	l.Submit("good.stl")
	results := waitResults(t, l, 2)

	byPath := map[string]Result{}
	for _, r := range results {
		byPath[r.Path] = r
	}
	if bad := byPath["bad.stl"]; bad.Err == nil || bad.File != nil {
		t.Fatalf("panicking parse should yield an error, got %+v", bad)
	}
	if good := byPath["good.stl"]; good.Err != nil || good.File == nil {
		t.Fatalf("parse after panic should succeed, got %+v", good)
	}
}
