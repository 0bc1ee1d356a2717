// Package env holds the evolutionary engine's configuration: the
// recognised options of spec §6, their defaults, and validation.
package env

import (
	"fmt"
	"os"
	"strconv"

	"github.com/morinim/vita-sub001/fitness"
)

// Tri is a tri-state boolean: unset, or explicitly yes/no. It models
// options like Elitism whose default depends on other settings and must
// be distinguishable from an explicit false.
type Tri int

const (
	Auto Tri = iota
	Yes
	No
)

func (t Tri) Bool(def bool) bool {
	switch t {
	case Yes:
		return true
	case No:
		return false
	default:
		return def
	}
}

// ALPS bundles the age-layering specific knobs.
type ALPS struct {
	AgeGap     uint
	PSameLayer float64
}

// Environment is the engine's configuration. Zero-valued fields are
// "unset"; Default fills them in, and Validate refuses to start a run
// whose settings are contradictory.
type Environment struct {
	CodeLength   uint
	PatchLength  uint
	Layers       uint
	Individuals  uint
	Elitism      Tri
	PMutation    float64
	PCross       float64
	Brood        uint
	TournamentSize uint
	MateZone     uint
	Generations  uint
	MaxStuckTime uint
	CacheBits    uint
	ALPS         ALPS
	ValidationPercentage uint
	DSS          uint
	FThreshold   fitness.Vector
}

// Default returns an Environment with every unset (zero) option filled in
// with a sensible default, mirroring environment::init autofilling unset
// options in the source design.
func Default() Environment {
	return Environment{
		CodeLength:     100,
		PatchLength:    10,
		Layers:         1,
		Individuals:    100,
		Elitism:        Auto,
		PMutation:      0.04,
		PCross:         0.9,
		Brood:          0,
		TournamentSize: 5,
		MateZone:       20,
		Generations:    100,
		MaxStuckTime:   0,
		CacheBits:      16,
		ALPS:           ALPS{AgeGap: 20, PSameLayer: 0.75},
		ValidationPercentage: 0,
		DSS:            0,
	}
}

// WithDefaults returns a copy of e with every zero-valued field replaced by
// Default()'s value, leaving explicitly-set fields untouched.
func (e Environment) WithDefaults() Environment {
	d := Default()
	if e.CodeLength == 0 {
		e.CodeLength = d.CodeLength
	}
	if e.PatchLength == 0 {
		e.PatchLength = d.PatchLength
	}
	if e.Layers == 0 {
		e.Layers = d.Layers
	}
	if e.Individuals == 0 {
		e.Individuals = d.Individuals
	}
	if e.PMutation == 0 {
		e.PMutation = d.PMutation
	}
	if e.PCross == 0 {
		e.PCross = d.PCross
	}
	if e.TournamentSize == 0 {
		e.TournamentSize = d.TournamentSize
	}
	if e.MateZone == 0 {
		e.MateZone = d.MateZone
	}
	if e.Generations == 0 {
		e.Generations = d.Generations
	}
	if e.CacheBits == 0 {
		e.CacheBits = d.CacheBits
	}
	if e.ALPS.AgeGap == 0 {
		e.ALPS.AgeGap = d.ALPS.AgeGap
	}
	if e.ALPS.PSameLayer == 0 {
		e.ALPS.PSameLayer = d.ALPS.PSameLayer
	}
	return e
}

// Validate checks the configuration for contradictions, per spec §7's
// "environment::is_valid(force_defined=true)". It returns the first
// violated constraint wrapped in a descriptive error, and the caller must
// refuse to start a run when it is non-nil.
func (e Environment) Validate(forceDefined bool) error {
	if forceDefined {
		if e.CodeLength == 0 {
			return fmt.Errorf("env: code_length must be set")
		}
		if e.Individuals == 0 {
			return fmt.Errorf("env: individuals must be set")
		}
		if e.Generations == 0 {
			return fmt.Errorf("env: generations must be set")
		}
	}
	if e.PatchLength >= e.CodeLength {
		return fmt.Errorf("env: patch_length (%d) must be < code_length (%d)", e.PatchLength, e.CodeLength)
	}
	if e.Layers == 0 {
		return fmt.Errorf("env: layers must be >= 1")
	}
	if e.PMutation < 0 || e.PMutation > 1 {
		return fmt.Errorf("env: p_mutation must be in [0,1], got %f", e.PMutation)
	}
	if e.PCross < 0 || e.PCross > 1 {
		return fmt.Errorf("env: p_cross must be in [0,1], got %f", e.PCross)
	}
	if e.TournamentSize == 0 {
		return fmt.Errorf("env: tournament_size must be positive")
	}
	if e.TournamentSize > e.Individuals {
		return fmt.Errorf("env: tournament_size (%d) must not exceed individuals (%d)", e.TournamentSize, e.Individuals)
	}
	if e.MateZone != 0 && e.TournamentSize > e.MateZone {
		return fmt.Errorf("env: tournament_size (%d) must not exceed mate_zone (%d)", e.TournamentSize, e.MateZone)
	}
	if e.ALPS.PSameLayer < 0 || e.ALPS.PSameLayer > 1 {
		return fmt.Errorf("env: alps.p_same_layer must be in [0,1], got %f", e.ALPS.PSameLayer)
	}
	if e.ValidationPercentage >= 100 {
		return fmt.Errorf("env: validation_percentage must be < 100, got %d", e.ValidationPercentage)
	}
	return nil
}

// LoadFromEnv overlays process environment variables (MEP_CODE_LENGTH,
// MEP_PATCH_LENGTH, MEP_LAYERS, MEP_INDIVIDUALS, MEP_P_MUTATION,
// MEP_P_CROSS, MEP_TOURNAMENT_SIZE, MEP_MATE_ZONE, MEP_GENERATIONS,
// MEP_CACHE_BITS, MEP_ALPS_AGE_GAP, MEP_ALPS_P_SAME_LAYER) onto base. This
// is a host convenience; the core itself never reads the environment.
func LoadFromEnv(base Environment) Environment {
	e := base
	parseUint("MEP_CODE_LENGTH", &e.CodeLength)
	parseUint("MEP_PATCH_LENGTH", &e.PatchLength)
	parseUint("MEP_LAYERS", &e.Layers)
	parseUint("MEP_INDIVIDUALS", &e.Individuals)
	parseFloat("MEP_P_MUTATION", &e.PMutation)
	parseFloat("MEP_P_CROSS", &e.PCross)
	parseUint("MEP_TOURNAMENT_SIZE", &e.TournamentSize)
	parseUint("MEP_MATE_ZONE", &e.MateZone)
	parseUint("MEP_GENERATIONS", &e.Generations)
	parseUint("MEP_CACHE_BITS", &e.CacheBits)
	parseUint("MEP_ALPS_AGE_GAP", &e.ALPS.AgeGap)
	parseFloat("MEP_ALPS_P_SAME_LAYER", &e.ALPS.PSameLayer)
	return e
}

func parseUint(key string, dst *uint) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = uint(n)
		}
	}
}

func parseFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
