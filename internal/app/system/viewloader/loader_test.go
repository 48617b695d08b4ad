package viewloader_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dalemusser/bubblemap/internal/app/system/viewloader"
	"go.uber.org/zap"
)

type textView string

func (v textView) Render(w io.Writer, _ any) error {
	_, err := io.WriteString(w, string(v))
	return err
}

func TestResolve_UnknownView(t *testing.T) {
	l := viewloader.New(zap.NewNop())

	_, err := l.Resolve(context.Background(), "nope")
	if !errors.Is(err, viewloader.ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}
}

func TestResolve_LazyAndMemoized(t *testing.T) {
	l := viewloader.New(zap.NewNop())
	var calls atomic.Int32
	l.Register("map", func(ctx context.Context) (viewloader.View, error) {
		calls.Add(1)
		return textView("map"), nil
	})

	if calls.Load() != 0 {
		t.Fatal("factory ran at registration")
	}
	if l.Loaded("map") {
		t.Fatal("view reported loaded before first resolve")
	}

	for i := 0; i < 5; i++ {
		v, err := l.Resolve(context.Background(), "map")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if v != textView("map") {
			t.Errorf("got view %v", v)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("factory calls: got %d, want 1", got)
	}
	if !l.Loaded("map") {
		t.Error("expected view to be loaded")
	}
}

func TestResolve_ConcurrentFirstCallsShareOneLoad(t *testing.T) {
	l := viewloader.New(zap.NewNop())
	var calls atomic.Int32
	release := make(chan struct{})
	l.Register("login", func(ctx context.Context) (viewloader.View, error) {
		calls.Add(1)
		<-release
		return textView("login"), nil
	})

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Resolve(context.Background(), "login")
			errs <- err
		}()
	}
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Resolve: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("factory calls: got %d, want 1", got)
	}
}

func TestResolve_FailureIsRetried(t *testing.T) {
	l := viewloader.New(zap.NewNop())
	boom := errors.New("boom")
	var calls atomic.Int32
	l.Register("map", func(ctx context.Context) (viewloader.View, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return textView("map"), nil
	})

	if _, err := l.Resolve(context.Background(), "map"); !errors.Is(err, boom) {
		t.Fatalf("first Resolve: expected boom, got %v", err)
	}
	if l.Loaded("map") {
		t.Fatal("failed view must not be memoized")
	}

	if _, err := l.Resolve(context.Background(), "map"); err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("factory calls: got %d, want 2", got)
	}
}

func TestResolve_NilViewIsAnError(t *testing.T) {
	l := viewloader.New(zap.NewNop())
	l.Register("empty", func(ctx context.Context) (viewloader.View, error) {
		return nil, nil
	})

	if _, err := l.Resolve(context.Background(), "empty"); !errors.Is(err, viewloader.ErrNilView) {
		t.Fatalf("expected ErrNilView, got %v", err)
	}
}

func TestRegister_ReplacesBuiltView(t *testing.T) {
	l := viewloader.New(zap.NewNop())
	l.Register("map", func(ctx context.Context) (viewloader.View, error) {
		return textView("old"), nil
	})
	if _, err := l.Resolve(context.Background(), "map"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	l.Register("map", func(ctx context.Context) (viewloader.View, error) {
		return textView("new"), nil
	})
	if l.Loaded("map") {
		t.Fatal("re-register should drop the built view")
	}

	v, err := l.Resolve(context.Background(), "map")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != textView("new") {
		t.Errorf("got %v, want new", v)
	}
}

func TestRegister_DuringLoadDiscardsOldBuild(t *testing.T) {
	l := viewloader.New(zap.NewNop())
	started := make(chan struct{})
	release := make(chan struct{})
	l.Register("map", func(ctx context.Context) (viewloader.View, error) {
		close(started)
		<-release
		return textView("old"), nil
	})

	type result struct {
		v   viewloader.View
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := l.Resolve(context.Background(), "map")
		done <- result{v, err}
	}()
	<-started

	var newCalls atomic.Int32
	l.Register("map", func(ctx context.Context) (viewloader.View, error) {
		newCalls.Add(1)
		return textView("new"), nil
	})
	close(release)

	res := <-done
	if res.err != nil {
		t.Fatalf("in-flight Resolve: %v", res.err)
	}
	if res.v != textView("old") {
		t.Errorf("in-flight Resolve got %v, want old", res.v)
	}
	if l.Loaded("map") {
		t.Fatal("a build from the replaced factory should not be kept")
	}

	v, err := l.Resolve(context.Background(), "map")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != textView("new") || newCalls.Load() != 1 {
		t.Errorf("got %v after %d new builds, want new after 1", v, newCalls.Load())
	}
	if !l.Loaded("map") {
		t.Error("view from the current factory should be kept")
	}
}
