// Package cache implements the fitness transposition table: a direct-mapped,
// signature-indexed hash table with O(1) bulk invalidation via a generation
// seal, guarded by a shared/exclusive mutex so readers never block readers.
package cache

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/genome"
)

type slot struct {
	sig   genome.Signature
	fit   fitness.Vector
	seal  uint64
	valid bool
}

// Cache is a 2^bits-slot direct-mapped table keyed on the low bits of a
// genome's signature. Collisions are expected and are not errors: they
// trade cache accuracy for speed, evicting whatever was there before.
type Cache struct {
	mu    sync.RWMutex
	bits  uint
	mask  uint64
	slots []slot
	seal  uint64

	// Debug, when true, makes FindChecked re-run the supplied evaluator on
	// every hit and compare the first fitness component only (tolerating
	// ties on secondary components), per spec §4.5's debug-mode
	// cross-check. Find ignores it.
	Debug bool
}

// New creates an empty cache with 2^bits slots.
func New(bits uint) *Cache {
	n := uint64(1) << bits
	return &Cache{bits: bits, mask: n - 1, slots: make([]slot, n)}
}

// index is the low bits-many bits of the signature's first word, matching
// vita::ttable's h.data[0] & k_mask (original_source/kernel/ttable.cc).
func (c *Cache) index(sig genome.Signature) uint64 {
	return sig[0] & c.mask
}

// Find returns the cached fitness for sig, if the slot is live and its
// signature matches (a mismatch is a collision, reported as a miss, not an
// error).
func (c *Cache) Find(sig genome.Signature) (fitness.Vector, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.slots[c.index(sig)]
	if !s.valid || s.seal != c.seal || s.sig != sig {
		return nil, false
	}
	return s.fit.Clone(), true
}

// FindChecked behaves like Find, but when Debug is set and the lookup
// hits, it also invokes eval and compares the cached and freshly computed
// first fitness component, invoking onMismatch if they disagree. It never
// mutates the cache.
func (c *Cache) FindChecked(sig genome.Signature, eval func() fitness.Vector, onMismatch func(cached, fresh fitness.Vector)) (fitness.Vector, bool) {
	f, ok := c.Find(sig)
	if ok && c.Debug && eval != nil {
		fresh := eval()
		if len(f) > 0 && len(fresh) > 0 && f[0] != fresh[0] && onMismatch != nil {
			onMismatch(f, fresh)
		}
	}
	return f, ok
}

// Insert unconditionally writes fitness for sig, evicting whatever
// occupied that slot.
func (c *Cache) Insert(sig genome.Signature, f fitness.Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots[c.index(sig)] = slot{sig: sig, fit: f.Clone(), seal: c.seal, valid: true}
}

// Clear invalidates every slot in O(1) by bumping the generation seal.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seal++
}

// ClearSignature invalidates only the slot sig maps to.
func (c *Cache) ClearSignature(sig genome.Signature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots[c.index(sig)].valid = false
}

// Bits returns log2 of the slot count.
func (c *Cache) Bits() uint { return c.bits }

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, s := range c.slots {
		if s.valid && s.seal == c.seal {
			n++
		}
	}
	return n
}

// Save writes the textual serialization of spec §6: seal, count, then
// count (signature, fitness) line pairs.
func (c *Cache) Save(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bw := bufio.NewWriter(w)
	live := make([]slot, 0, len(c.slots))
	for _, s := range c.slots {
		if s.valid && s.seal == c.seal {
			live = append(live, s)
		}
	}
	if _, err := fmt.Fprintf(bw, "%d\n%d\n", c.seal, len(live)); err != nil {
		return err
	}
	for _, s := range live {
		if _, err := fmt.Fprintf(bw, "%d %d\n", s.sig[0], s.sig[1]); err != nil {
			return err
		}
		if err := writeFitnessLine(bw, s.fit); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeFitnessLine(w io.Writer, f fitness.Vector) error {
	for i, v := range f {
		sep := " "
		if i == 0 {
			sep = ""
		}
		if _, err := fmt.Fprintf(w, "%s%g", sep, v); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// Load replaces the cache's contents from the textual serialization
// produced by Save. Load is transactional: it parses into a scratch table
// and only commits once the entire stream has been read successfully,
// leaving the receiver unchanged on any error. A different table size
// (Bits) than the one the data was saved with is acceptable; entries are
// re-hashed into the current index.
func (c *Cache) Load(r io.Reader) error {
	br := bufio.NewScanner(r)
	br.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	readLine := func() (string, error) {
		if !br.Scan() {
			if err := br.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return br.Text(), nil
	}

	var seal uint64
	var count int
	line, err := readLine()
	if err != nil {
		return fmt.Errorf("cache: load seal: %w", err)
	}
	if _, err := fmt.Sscanf(line, "%d", &seal); err != nil {
		return fmt.Errorf("cache: load seal: %w", err)
	}
	line, err = readLine()
	if err != nil {
		return fmt.Errorf("cache: load count: %w", err)
	}
	if _, err := fmt.Sscanf(line, "%d", &count); err != nil {
		return fmt.Errorf("cache: load count: %w", err)
	}

	scratch := make([]slot, len(c.slots))
	for i := 0; i < count; i++ {
		sigLine, err := readLine()
		if err != nil {
			return fmt.Errorf("cache: load entry %d signature: %w", i, err)
		}
		var hi, lo uint64
		if _, err := fmt.Sscanf(sigLine, "%d %d", &hi, &lo); err != nil {
			return fmt.Errorf("cache: load entry %d signature: %w", i, err)
		}
		fitLine, err := readLine()
		if err != nil {
			return fmt.Errorf("cache: load entry %d fitness: %w", i, err)
		}
		f, err := parseFitnessLine(fitLine)
		if err != nil {
			return fmt.Errorf("cache: load entry %d fitness: %w", i, err)
		}
		sig := genome.Signature{hi, lo}
		idx := sig[0] & c.mask
		scratch[idx] = slot{sig: sig, fit: f, seal: seal, valid: true}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = scratch
	c.seal = seal
	return nil
}

func parseFitnessLine(line string) (fitness.Vector, error) {
	if line == "" {
		return fitness.Vector{}, nil
	}
	var f fitness.Vector
	for _, field := range strings.Fields(line) {
		var v float64
		if _, err := fmt.Sscan(field, &v); err != nil {
			return nil, err
		}
		f = append(f, v)
	}
	return f, nil
}
