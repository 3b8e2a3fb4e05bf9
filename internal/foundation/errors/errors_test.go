package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "eradio.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		file, exists := err.Context().GetString("file")
		if !exists || file != "eradio.yaml" {
			t.Errorf("expected context file=eradio.yaml, got %v", file)
		}
	})

	t.Run("Wrapped detection", func(t *testing.T) {
		inner := SitemapError("station without slug").Build()
		wrapped := fmt.Errorf("build: %w", inner)

		if !IsClassified(wrapped) {
			t.Fatal("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategorySitemap) {
			t.Error("expected sitemap category")
		}
		if inner.CanRetry() {
			t.Error("sitemap errors must not be retryable")
		}
		if !inner.IsFatal() {
			t.Error("sitemap errors are fatal")
		}
	})

	t.Run("WithContext does not mutate original", func(t *testing.T) {
		base := DatasetError("bad dataset").Build()
		derived := base.WithContext("path", "x.json")
		if _, ok := base.Context().Get("path"); ok {
			t.Error("original context mutated")
		}
		if p, _ := derived.Context().GetString("path"); p != "x.json" {
			t.Errorf("expected derived context, got %q", p)
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := stderrors.New("connection reset")
	err := WrapError(originalErr, CategoryNetwork, "fetch failed").
		Warning().
		RateLimit().
		WithContext("host", "de1.api.radio-browser.info").
		Build()

	if err.RetryStrategy() != RetryRateLimit {
		t.Errorf("expected %s, got %s", RetryRateLimit, err.RetryStrategy())
	}
	if !stderrors.Is(err, originalErr) {
		t.Error("expected error to wrap original error")
	}
	if !IsTransient(err) {
		t.Error("rate limited errors are transient")
	}
	if IsTransient(originalErr) {
		t.Error("unclassified errors are not transient")
	}
	if GetCategory(originalErr) != CategoryInternal {
		t.Error("unclassified errors default to internal")
	}
}
