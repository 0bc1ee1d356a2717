package cache

import (
	"testing"

	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/genome"
)

func TestSaveLoadSQLiteRoundTrip(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	c := New(6)
	sigs := []genome.Signature{{10, 20}, {30, 40}}
	for i, s := range sigs {
		c.Insert(s, fitness.Vector{float64(i), float64(i) + 0.5})
	}
	c.Clear() // bump seal, so the saved rows carry a non-zero seal
	for i, s := range sigs {
		c.Insert(s, fitness.Vector{float64(i), float64(i) + 0.5})
	}

	if err := c.SaveSQLite(db); err != nil {
		t.Fatalf("SaveSQLite: %v", err)
	}

	loaded := New(6)
	if err := loaded.LoadSQLite(db); err != nil {
		t.Fatalf("LoadSQLite: %v", err)
	}
	for i, s := range sigs {
		f, ok := loaded.Find(s)
		if !ok {
			t.Fatalf("expected signature %v present after LoadSQLite", s)
		}
		if f[0] != float64(i) || f[1] != float64(i)+0.5 {
			t.Fatalf("unexpected fitness after LoadSQLite: %v", f)
		}
	}
}

func TestLoadSQLiteRehashesIntoDifferentSize(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	c := New(2)
	sig := genome.Signature{1, 2}
	c.Insert(sig, fitness.Vector{7})
	if err := c.SaveSQLite(db); err != nil {
		t.Fatalf("SaveSQLite: %v", err)
	}

	bigger := New(10)
	if err := bigger.LoadSQLite(db); err != nil {
		t.Fatalf("LoadSQLite: %v", err)
	}
	f, ok := bigger.Find(sig)
	if !ok || f[0] != 7 {
		t.Fatalf("expected rehashed entry, got %v ok=%v", f, ok)
	}
}
