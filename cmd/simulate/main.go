// Command simulate runs a table headless for a number of frames and prints
// the events each frame drains.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/playmatatu/pinball/internal/config"
	"github.com/playmatatu/pinball/internal/game"
	"github.com/playmatatu/pinball/internal/logger"
	"github.com/playmatatu/pinball/internal/table"
)

type options struct {
	frames    int
	balls     int
	flipEvery int // pulse both flippers every n frames; 0 never
	asJSON    bool
}

func main() {
	var opts options
	layoutPath := flag.String("layout", "", "table layout JSON (default: built-in demo)")
	flag.IntVar(&opts.frames, "frames", 1000, "frames to simulate")
	flag.IntVar(&opts.balls, "balls", 1, "balls to launch from the plunger")
	flag.IntVar(&opts.flipEvery, "flip", 0, "pulse the flippers every n frames")
	flag.BoolVar(&opts.asJSON, "json", false, "print frames as JSON lines")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(logger.Config{Environment: cfg.Environment, LogLevel: cfg.LogLevel, ServiceName: "pinball-simulate"})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	l := table.Demo()
	if *layoutPath != "" {
		data, err := os.ReadFile(*layoutPath)
		if err != nil {
			log.Fatal("failed to read layout", zap.Error(err))
		}
		if l, err = table.Parse(data); err != nil {
			log.Fatal("invalid layout", zap.Error(err))
		}
	}

	gopts := game.OptionsFromConfig(cfg)
	gopts.FrameRate = 0
	gopts.MaxSessions = 1
	if err := simulate(os.Stdout, l, gopts, opts, log); err != nil {
		log.Fatal("simulation failed", zap.Error(err))
	}
}

func simulate(w io.Writer, l *table.Layout, gopts game.Options, opts options, log *zap.Logger) error {
	ctx := context.Background()
	m := game.NewManager(gopts, log, nil, nil, nil)
	s, err := m.Create(ctx, l, 0)
	if err != nil {
		return err
	}
	defer m.Close(ctx, s.ID)

	for range opts.balls {
		if _, err := s.SpawnBall(nil, nil); err != nil {
			return err
		}
	}
	flippers := flipperNames(l)

	enc := json.NewEncoder(w)
	var events, drained int
	for i := 1; i <= opts.frames; i++ {
		if opts.flipEvery > 0 && i%opts.flipEvery == 0 {
			on := (i/opts.flipEvery)%2 == 1
			for _, name := range flippers {
				if _, err := s.Actuate(game.Actuation{Action: game.ActionFlipper, Item: name, On: on}); err != nil {
					return err
				}
			}
		}
		f := s.Tick()
		events += len(f.Events)
		drained += len(f.Drained)
		if opts.asJSON {
			if err := enc.Encode(f); err != nil {
				return err
			}
			continue
		}
		for _, e := range f.Events {
			fmt.Fprintf(w, "frame=%d kind=%s item=%s ball=%d speed=%.3f\n", e.Frame, e.Kind, e.ItemName, e.Ball, e.Speed)
		}
		for _, id := range f.Drained {
			fmt.Fprintf(w, "frame=%d drained ball=%d\n", f.Frame, id)
		}
	}
	if !opts.asJSON {
		fmt.Fprintf(w, "frames=%d events=%d drained=%d balls_in_play=%d\n", opts.frames, events, drained, len(s.Snapshot().Balls))
	}
	return nil
}

func flipperNames(l *table.Layout) []string {
	var names []string
	for _, it := range l.Items {
		if it.Type == "flipper" {
			names = append(names, it.Name)
		}
	}
	return names
}
