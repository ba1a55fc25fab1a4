package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/goarena/environment/envconfig"
	"github.com/samuelfneumann/goarena/experiment"
	"github.com/samuelfneumann/goarena/experiment/recorder"
	"github.com/samuelfneumann/goarena/experiment/tracker"
	ts "github.com/samuelfneumann/goarena/timestep"
	"github.com/samuelfneumann/goarena/utils/progressbar"
)

// progress displays a progress bar as steps are tracked
type progress struct {
	bar   *progressbar.ManualProgressBar
	steps int
}

func (p *progress) Track(step ts.TimeStep) {
	if step.First() {
		return
	}
	p.bar.Increment()
	p.steps++
	if p.steps%100 == 0 {
		p.bar.Display()
	}
}

func (p *progress) Save() error {
	p.bar.Display()
	p.bar.Close()
	return nil
}

func main() {
	configPath := flag.String("config", "", "JSON configuration file, "+
		"environment variables are used if empty")
	steps := flag.Uint("steps", 10_000, "number of steps to run")
	seed := flag.Uint64("seed", 192382, "seed of the random policy")
	out := flag.String("out", "data", "directory to save tracked data to")
	record := flag.String("record", "", "directory to record episodes to, "+
		"episodes are not recorded if empty")
	flag.Parse()

	var (
		conf envconfig.Config
		err  error
	)
	if *configPath != "" {
		conf, err = envconfig.Load(*configPath)
	} else {
		conf, err = envconfig.FromEnv()
	}
	if err != nil {
		log.Fatal(err)
	}

	env, err := conf.Create()
	if err != nil {
		log.Fatalf("could not create environment: %v", err)
	}
	if *record != "" {
		env, err = recorder.New(env, *record, 4)
		if err != nil {
			log.Fatalf("could not record episodes: %v", err)
		}
	}
	log.Println(env)

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal(err)
	}
	ret := tracker.NewReturn(filepath.Join(*out, "return.bin"))
	length := tracker.NewEpisodeLength(filepath.Join(*out, "length.bin"))
	boundaries := tracker.NewBoundaries(filepath.Join(*out, "boundaries.bin"))
	bar := &progress{bar: progressbar.NewManualProgressBar(os.Stdout, 40,
		int(*steps))}

	e := experiment.NewOnline(env, experiment.NewRandom(env.Context(), *seed),
		*steps, ret, length, boundaries, bar)
	runErr := e.Run()
	if err := e.Save(); err != nil {
		log.Printf("could not save data: %v", err)
	}
	if err := env.Close(); err != nil {
		log.Printf("could not close environment: %v", err)
	}
	if runErr != nil {
		log.Fatalf("experiment failed: %v", runErr)
	}

	returns := ret.Returns()
	log.Printf("episodes: %v", len(returns))
	if n := len(returns); n > 0 {
		last := boundaries.Episodes()[n-1]
		log.Printf("last episode: return %.2f, frames %v, rounds %v, "+
			"stages %v", returns[n-1], length.Lengths()[n-1], last.Rounds,
			last.Stages)
	}
}
