package submit

import (
	"context"
	"errors"
	"testing"
)

func TestResourceRegistry_DeleteAll_Empty(t *testing.T) {
	reg := NewResourceRegistry()
	if err := reg.DeleteAll(context.Background()); err != nil {
		t.Fatalf("expected nil error for empty registry, got %v", err)
	}
}

func TestResourceRegistry_DeleteAll_CallsEveryDeleteFunc(t *testing.T) {
	reg := NewResourceRegistry()
	var deleted []string

	reg.RegisterSecret("sec", func(ctx context.Context) error {
		deleted = append(deleted, "sec")
		return nil
	})
	reg.RegisterPod("pod", func(ctx context.Context) error {
		deleted = append(deleted, "pod")
		return nil
	})

	if err := reg.DeleteAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("expected 2 deletions, got %v", deleted)
	}
}

func TestResourceRegistry_DeleteAll_JoinsFailures(t *testing.T) {
	reg := NewResourceRegistry()
	errA := errors.New("boom a")
	errB := errors.New("boom b")

	reg.RegisterSecret("sec", func(ctx context.Context) error { return errA })
	reg.RegisterPod("pod", func(ctx context.Context) error { return errB })

	err := reg.DeleteAll(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var cleanupErr *CleanupError
	if !errors.As(err, &cleanupErr) {
		t.Fatalf("expected *CleanupError, got %T", err)
	}
	if len(cleanupErr.Errs) != 2 {
		t.Fatalf("expected 2 joined errors, got %d", len(cleanupErr.Errs))
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Error("expected both original errors reachable via errors.Is")
	}
}

func TestResourceRegistry_Unregister_SkipsDeletion(t *testing.T) {
	reg := NewResourceRegistry()
	called := false
	reg.RegisterPod("pod", func(ctx context.Context) error {
		called = true
		return nil
	})
	reg.Unregister(resourceKindPod, "pod")

	if err := reg.DeleteAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("expected unregistered resource to be skipped")
	}
}

func TestResourceRegistry_RegisterTwice_ReplacesDeleteFunc(t *testing.T) {
	reg := NewResourceRegistry()
	firstCalled, secondCalled := false, false

	reg.RegisterSecret("sec", func(ctx context.Context) error {
		firstCalled = true
		return nil
	})
	reg.RegisterSecret("sec", func(ctx context.Context) error {
		secondCalled = true
		return nil
	})

	if err := reg.DeleteAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if firstCalled {
		t.Error("expected first delete func to be replaced, not called")
	}
	if !secondCalled {
		t.Error("expected second delete func to be called")
	}
}
