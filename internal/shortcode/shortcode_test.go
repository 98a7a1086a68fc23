package shortcode

import (
	"context"
	"strings"
	"testing"
)

// checkerFunc adapts a function to the CodeChecker interface.
type checkerFunc func(ctx context.Context, code string) (bool, error)

func (f checkerFunc) CodeExists(ctx context.Context, code string) (bool, error) {
	return f(ctx, code)
}

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := Generate()
		if len(code) != Length {
			t.Fatalf("Generate() length = %d, want %d", len(code), Length)
		}
		for _, ch := range code {
			if !strings.ContainsRune(alphabet, ch) {
				t.Fatalf("Generate() = %q contains %q outside the alphabet", code, ch)
			}
		}
		seen[code] = true
	}
	// 62^7 codes; 1000 draws colliding would indicate a broken source.
	if len(seen) < 990 {
		t.Errorf("Generate() produced only %d distinct codes out of 1000", len(seen))
	}
}

func TestGenerateUnique_FirstTry(t *testing.T) {
	calls := 0
	store := checkerFunc(func(ctx context.Context, code string) (bool, error) {
		calls++
		return false, nil
	})

	code, err := GenerateUnique(context.Background(), store)
	if err != nil {
		t.Fatalf("GenerateUnique() error = %v", err)
	}
	if len(code) != Length {
		t.Errorf("GenerateUnique() length = %d, want %d", len(code), Length)
	}
	if calls != 1 {
		t.Errorf("store checked %d times, want 1", calls)
	}
}

func TestGenerateUnique_RetriesOnCollision(t *testing.T) {
	calls := 0
	store := checkerFunc(func(ctx context.Context, code string) (bool, error) {
		calls++
		return calls < 3, nil // first two candidates collide
	})

	code, err := GenerateUnique(context.Background(), store)
	if err != nil {
		t.Fatalf("GenerateUnique() error = %v", err)
	}
	if code == "" {
		t.Error("GenerateUnique() returned empty code")
	}
	if calls != 3 {
		t.Errorf("store checked %d times, want 3", calls)
	}
}

func TestGenerateUnique_ExhaustionKeepsLastCandidate(t *testing.T) {
	calls := 0
	store := checkerFunc(func(ctx context.Context, code string) (bool, error) {
		calls++
		return true, nil // every candidate collides
	})

	code, err := GenerateUnique(context.Background(), store)
	if err != nil {
		t.Fatalf("GenerateUnique() error = %v", err)
	}
	if len(code) != Length {
		t.Errorf("GenerateUnique() length = %d, want %d", len(code), Length)
	}
	if calls != maxAttempts {
		t.Errorf("store checked %d times, want %d", calls, maxAttempts)
	}
}

func TestGenerateUnique_StoreError(t *testing.T) {
	store := checkerFunc(func(ctx context.Context, code string) (bool, error) {
		return false, context.DeadlineExceeded
	})

	if _, err := GenerateUnique(context.Background(), store); err == nil {
		t.Error("GenerateUnique() succeeded, want store error")
	}
}
