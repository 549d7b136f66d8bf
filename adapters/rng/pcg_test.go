package rng

import (
	"testing"
)

func TestSeededStreamIsReproducible(t *testing.T) {
	a, err := New().SeededStream("sampler", 42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New().SeededStream("sampler", 42)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatalf("streams diverged at draw %d", i)
		}
	}
}

func TestSeededStreamNameSeparatesStreams(t *testing.T) {
	a, _ := New().SeededStream("sampler", 42)
	b, _ := New().SeededStream("other", 42)
	same := true
	for i := 0; i < 10; i++ {
		if a.Uint64() != b.Uint64() {
			same = false
		}
	}
	if same {
		t.Fatal("differently named streams should not coincide")
	}
}
