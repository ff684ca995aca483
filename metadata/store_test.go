package metadata

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	Name   string   `cbor:"name"`
	Count  int      `cbor:"count"`
	Passes []string `cbor:"passes"`
}

func stores(t *testing.T) map[string]func() Store {
	t.Helper()
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"sqlite": func() Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "snap.db"), "")
			if err != nil {
				t.Fatalf("OpenSQLite failed: %v", err)
			}
			return s
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()

			want := sample{Name: "sweep", Count: 3, Passes: []string{"merge-inc", "clear-loop"}}
			if err := s.Insert(1, want); err != nil {
				t.Fatalf("Insert failed: %v", err)
			}

			got, err := Load[sample](s, 1)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got == nil {
				t.Fatal("Load returned nil for a stored iteration")
			}
			if diff := cmp.Diff(want, *got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStoreMissingIteration(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()

			var out sample
			ok, err := s.Get(7, &out)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if ok {
				t.Error("Get reported a value for an empty iteration")
			}

			got, err := Load[sample](s, 7)
			if err != nil || got != nil {
				t.Errorf("Load = %v, %v; want nil, nil", got, err)
			}
		})
	}
}

func TestStoreInsertReplaces(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()

			if err := s.Insert(2, sample{Count: 1}); err != nil {
				t.Fatal(err)
			}
			if err := s.Insert(2, sample{Count: 2}); err != nil {
				t.Fatal(err)
			}
			got, err := Load[sample](s, 2)
			if err != nil {
				t.Fatal(err)
			}
			if got.Count != 2 {
				t.Errorf("count = %d, want 2", got.Count)
			}
		})
	}
}

func TestStoreClosed(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			if err := s.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			err := s.Insert(1, sample{})
			if !errors.Is(err, ErrClosed) {
				t.Errorf("Insert after Close = %v, want ErrClosed", err)
			}
			var se *StoreError
			if !errors.As(err, &se) {
				t.Fatalf("Insert error %T is not a *StoreError", err)
			}
			if se.Op != "insert" || se.Iteration != 1 {
				t.Errorf("StoreError = %+v, want op insert iteration 1", se)
			}

			if _, err := s.Get(1, &sample{}); !errors.Is(err, ErrClosed) {
				t.Errorf("Get after Close = %v, want ErrClosed", err)
			}
		})
	}
}

func TestStoreDecodeError(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Insert(1, "not a struct"); err != nil {
		t.Fatal(err)
	}
	var out sample
	_, err := s.Get(1, &out)
	var se *StoreError
	if !errors.As(err, &se) || se.Op != "get" {
		t.Errorf("Get = %v, want a get StoreError", err)
	}
}

func TestCanonicalEncoding(t *testing.T) {
	a, err := Marshal(map[string]int{"b": 2, "a": 1, "c": 3})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(map[string]int{"c": 3, "a": 1, "b": 2})
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(a, b) {
		t.Errorf("canonical encodings differ: %x vs %x", a, b)
	}
}

func TestSQLiteRunsAreSeparate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")

	first, err := OpenSQLite(path, "run-a")
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()
	second, err := OpenSQLite(path, "run-b")
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	if err := first.Insert(1, sample{Name: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := first.Insert(3, sample{Name: "a3"}); err != nil {
		t.Fatal(err)
	}

	if got, err := Load[sample](second, 1); err != nil || got != nil {
		t.Errorf("other run sees iteration 1: %v, %v", got, err)
	}

	its, err := first.Iterations()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 3}, its); diff != "" {
		t.Errorf("iterations mismatch (-want +got):\n%s", diff)
	}
	if first.RunID() != "run-a" {
		t.Errorf("run id = %q, want run-a", first.RunID())
	}
}

func TestSQLiteGeneratesRunID(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "snap.db"), "")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if len(s.RunID()) != 36 {
		t.Errorf("run id = %q, want a uuid", s.RunID())
	}
}
