// Package population implements the age-layered container ALPS runs over:
// a stack of layers, each a fixed-capacity slice of genomes, each with its
// own maximum age before an individual is considered aged out.
package population

import (
	"fmt"

	"github.com/morinim/vita-sub001/genome"
)

// MaxAge returns the maximum age an individual may reach while remaining in
// layer l of ageGap-generation-wide layers, per the polynomial schedule:
// layer 0 gets age_gap, layer 1 gets 2*age_gap, layer k>1 gets k^2*age_gap,
// and the top layer (layer == topLayer) is unbounded.
func MaxAge(layer, topLayer, ageGap uint) uint {
	if layer == topLayer {
		return ^uint(0)
	}
	switch layer {
	case 0:
		return ageGap
	case 1:
		return 2 * ageGap
	default:
		return layer * layer * ageGap
	}
}

// Population is a vector of age layers, each a vector of individuals.
type Population struct {
	layers  [][]*genome.Genome
	allowed []uint
	ageGap  uint
}

// New creates a population with a single empty layer of the given capacity.
func New(capacity uint, ageGap uint) *Population {
	return &Population{
		layers:  [][]*genome.Genome{make([]*genome.Genome, 0, capacity)},
		allowed: []uint{capacity},
		ageGap:  ageGap,
	}
}

// Layers returns the number of age layers.
func (p *Population) Layers() int { return len(p.layers) }

// LayerSize returns the number of individuals currently in layer l.
func (p *Population) LayerSize(l int) int { return len(p.layers[l]) }

// LayerCapacity returns the configured capacity of layer l.
func (p *Population) LayerCapacity(l int) uint { return p.allowed[l] }

// Individuals returns the total population size across all layers.
func (p *Population) Individuals() int {
	n := 0
	for _, layer := range p.layers {
		n += len(layer)
	}
	return n
}

// At returns the i-th individual of layer l.
func (p *Population) At(l, i int) (*genome.Genome, error) {
	if l < 0 || l >= len(p.layers) || i < 0 || i >= len(p.layers[l]) {
		return nil, fmt.Errorf("population: index (%d,%d) out of range", l, i)
	}
	return p.layers[l][i], nil
}

// Set overwrites the i-th individual of layer l.
func (p *Population) Set(l, i int, g *genome.Genome) error {
	if l < 0 || l >= len(p.layers) || i < 0 || i >= len(p.layers[l]) {
		return fmt.Errorf("population: index (%d,%d) out of range", l, i)
	}
	p.layers[l][i] = g
	return nil
}

// InitLayer replaces the contents of layer l with the given individuals;
// the slice is stored as is.
func (p *Population) InitLayer(l int, individuals []*genome.Genome) error {
	if l < 0 || l >= len(p.layers) {
		return fmt.Errorf("population: layer %d out of range", l)
	}
	p.layers[l] = individuals
	return nil
}

// AddLayer pushes a new, empty top layer with the given capacity,
// returning its index. As the top layer it has no age ceiling (see
// MaxAge); the previous top layer gets the bounded max age of its index.
func (p *Population) AddLayer(capacity uint) int {
	p.layers = append(p.layers, make([]*genome.Genome, 0, capacity))
	p.allowed = append(p.allowed, capacity)
	return len(p.layers) - 1
}

// Append adds g to the end of layer l, so long as it has spare capacity.
func (p *Population) Append(l int, g *genome.Genome) error {
	if l < 0 || l >= len(p.layers) {
		return fmt.Errorf("population: layer %d out of range", l)
	}
	if uint(len(p.layers[l])) >= p.allowed[l] {
		return fmt.Errorf("population: layer %d is full (capacity %d)", l, p.allowed[l])
	}
	p.layers[l] = append(p.layers[l], g)
	return nil
}

// RemoveAt deletes the i-th individual of layer l.
func (p *Population) RemoveAt(l, i int) error {
	if l < 0 || l >= len(p.layers) || i < 0 || i >= len(p.layers[l]) {
		return fmt.Errorf("population: index (%d,%d) out of range", l, i)
	}
	layer := p.layers[l]
	p.layers[l] = append(layer[:i], layer[i+1:]...)
	return nil
}

// IncAge increments the age of every individual in every layer by one
// generation.
func (p *Population) IncAge() {
	for _, layer := range p.layers {
		for _, ind := range layer {
			ind.IncAge()
		}
	}
}

// IsAgedOut reports whether ind exceeds the max age allowed in layer l.
func (p *Population) IsAgedOut(l int, ind *genome.Genome) bool {
	return uint(ind.Age()) > MaxAge(uint(l), uint(len(p.layers)-1), p.ageGap)
}

// MaxAgeOf is a convenience wrapper around MaxAge for layer l of this
// population.
func (p *Population) MaxAgeOf(l int) uint {
	return MaxAge(uint(l), uint(len(p.layers)-1), p.ageGap)
}
