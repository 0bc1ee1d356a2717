// Command mep-demo drives the MEP/ALPS engine end-to-end over the
// symbols/arith demonstration primitive set, the way the spec's §8
// scenarios are meant to be read: register symbols, build a population,
// run a few generations, inspect the best individual.
package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/mitchellh/colorstring"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/morinim/vita-sub001/cache"
	"github.com/morinim/vita-sub001/env"
	"github.com/morinim/vita-sub001/fitness"
	"github.com/morinim/vita-sub001/genome"
	"github.com/morinim/vita-sub001/internal/xrand"
	"github.com/morinim/vita-sub001/interp"
	"github.com/morinim/vita-sub001/population"
	"github.com/morinim/vita-sub001/strategy"
	"github.com/morinim/vita-sub001/symbol"
	"github.com/morinim/vita-sub001/symbols/arith"
	"github.com/morinim/vita-sub001/variation"
)

func main() {
	cmd := &cli.Command{
		Name:  "mep-demo",
		Usage: "Multi-Expression Programming / ALPS engine demonstration harness",
		Commands: []*cli.Command{
			runCommand(),
			scenariosCommand(),
			cacheInspectCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, colorstring.Color("[red]Error:[reset] "+err.Error()))
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "evolve a population against a symbolic-regression target",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "generations", Value: 100, Usage: "maximum number of generations"},
			&cli.UintFlag{Name: "individuals", Value: 100, Usage: "population size per layer"},
			&cli.UintFlag{Name: "layers", Value: 3, Usage: "number of ALPS age layers"},
			&cli.UintFlag{Name: "cache-bits", Value: 14, Usage: "log2 of the fitness cache size"},
			&cli.Float64Flag{Name: "target", Value: 3.0, Usage: "constant target value the evolved program's output should approach"},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	e := env.Default()
	e.Generations = uint(cmd.Uint("generations"))
	e.Individuals = uint(cmd.Uint("individuals"))
	e.Layers = uint(cmd.Uint("layers"))
	e.CacheBits = uint(cmd.Uint("cache-bits"))
	if err := e.Validate(false); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ss := symbol.New()
	arith.Register(ss, 10, 5)

	target := cmd.Float64("target")
	r := xrand.New()
	fc := cache.New(uint(e.CacheBits))
	ev := &demoEvaluator{ss: ss, cache: fc, target: target}

	pop := population.New(e.Individuals, e.ALPS.AgeGap)
	for l := 1; l < int(e.Layers); l++ {
		pop.AddLayer(e.Individuals)
	}
	for l := 0; l < pop.Layers(); l++ {
		individuals := make([]*genome.Genome, 0, e.Individuals)
		for uint(len(individuals)) < e.Individuals {
			g, err := genome.NewRandom(int(e.CodeLength), int(e.PatchLength), ss, r)
			if err != nil {
				return fmt.Errorf("seeding layer %d: %w", l, err)
			}
			individuals = append(individuals, g)
		}
		if err := pop.InitLayer(l, individuals); err != nil {
			return err
		}
	}

	driver := &strategy.Driver{
		Pop:         pop,
		Symbols:     ss,
		Eval:        ev,
		Select:      strategy.ALPSSelector{Inner: strategy.TournamentSelector{Size: int(e.TournamentSize), MateZone: int(e.MateZone)}, PSameLayer: e.ALPS.PSameLayer},
		Recombine:   strategy.BaseRecombiner{Kind: variation.TwoPoint, PCross: e.PCross, PMutation: e.PMutation, ActiveOnly: true, Repulsion: true},
		Replace:     strategy.ALPSReplacer{},
		Rand:        r,
		AgeGap:      e.ALPS.AgeGap,
		CodeLength:  int(e.CodeLength),
		PatchLength: int(e.PatchLength),
		Elitism:     e.Elitism.Bool(true),
		Stop:        []strategy.StopCondition{strategy.MaxGenerations(int(e.Generations))},
	}

	bar := progressbar.Default(int64(e.Generations), "evolving")
	for driver.Generation < int(e.Generations) {
		driver.Step()
		bar.Add(1)
	}

	fmt.Println()
	fmt.Println(colorstring.Color(fmt.Sprintf("[green]Done.[reset] generations=%d mutations=%d crossovers=%d best=%v",
		driver.Generation, driver.Mutations, driver.Crossovers, driver.Best)))
	return nil
}

// demoEvaluator maximises -|result - target|: the closer a genome's output
// to target, the higher (less negative) its fitness.
type demoEvaluator struct {
	ss     *symbol.Set
	cache  *cache.Cache
	target float64
}

func (e *demoEvaluator) Evaluate(g *genome.Genome) fitness.Vector {
	sig := g.Signature()
	if f, ok := e.cache.Find(sig); ok {
		return f
	}
	f := e.score(g)
	e.cache.Insert(sig, f)
	return f
}

func (e *demoEvaluator) Fast(g *genome.Genome) fitness.Vector {
	return e.Evaluate(g)
}

func (e *demoEvaluator) Clear() {
	e.cache.Clear()
}

func (e *demoEvaluator) score(g *genome.Genome) fitness.Vector {
	v := interp.New(g).Run()
	if !v.Ok {
		return fitness.Vector{math.Inf(-1)}
	}
	diff := v.Data - e.target
	if diff < 0 {
		diff = -diff
	}
	return fitness.Vector{-diff}
}

func scenariosCommand() *cli.Command {
	return &cli.Command{
		Name:  "scenarios",
		Usage: "register the ABS/ADD/DIV/CONST demonstration primitives and print the category count",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ss := symbol.New()
			arith.Register(ss, 10, 5)
			fmt.Println("demonstration primitives registered:", ss.Categories(), "categories")
			return nil
		},
	}
}

func cacheInspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "inspect a saved fitness cache",
		Commands: []*cli.Command{
			{
				Name:  "inspect",
				Usage: "print the live entry count of a saved cache file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Required: true},
					&cli.UintFlag{Name: "bits", Value: 14},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					f, err := os.Open(cmd.String("file"))
					if err != nil {
						return err
					}
					defer f.Close()
					c := cache.New(uint(cmd.Uint("bits")))
					if err := c.Load(f); err != nil {
						return err
					}
					fmt.Printf("entries: %d\n", c.Len())
					return nil
				},
			},
		},
	}
}

