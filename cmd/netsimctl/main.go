// Command netsimctl is a scripted driver over a netsim.Network: it loads a
// scenario file (or a directory of them), replays its sends against
// AdvanceWith on a fixed step, and optionally serves live stats while it
// runs. It is not itself part of the simulator core; it exists so the
// netsim/scenario/recorder packages are runnable end-to-end.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	"github.com/teris-io/shortid"
	"golang.org/x/sync/errgroup"

	"github.com/netsim-project/netsim/netsim"
	"github.com/netsim-project/netsim/payload"
	"github.com/netsim-project/netsim/recorder"
	"github.com/netsim-project/netsim/scenario"
)

func main() {
	var (
		path     = flag.String("scenario", "", "path to a scenario JSON file")
		dir      = flag.String("dir", "", "directory of scenario JSON files to run in sequence")
		storeAt  = flag.String("store", ":memory:", "buntdb path for scenario/run-log persistence, or :memory:")
		httpAddr = flag.String("http", "", "if set, serve live stats at this address (e.g. :8089) while the one -scenario run drives")
	)
	flag.Parse()

	if *path == "" && *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: netsimctl -scenario <file> [-http addr] | -dir <dir>")
		os.Exit(2)
	}

	store, err := scenario.OpenStore(*storeAt)
	if err != nil {
		logErrorf("open store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	if *dir != "" {
		if err := runAll(*dir, store); err != nil {
			logErrorf("run-all: %v", err)
			os.Exit(1)
		}
		return
	}

	raw, err := os.ReadFile(*path)
	if err != nil {
		logErrorf("read scenario: %v", err)
		os.Exit(1)
	}
	if err := runOne(*path, raw, store, *httpAddr); err != nil {
		logErrorf("run: %v", err)
		os.Exit(1)
	}
}

// runAll walks dir for *.json scenario files and runs each one in turn,
// without a stats server (batch mode has no single Network to watch live).
func runAll(dir string, store *scenario.Store) error {
	var files []string
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() && strings.HasSuffix(path, ".json") {
				files = append(files, path)
			}
			return nil
		},
		Unsorted: false,
	})
	if err != nil {
		return errors.Wrapf(err, "walk %s", dir)
	}

	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return errors.Wrapf(err, "read %s", f)
		}
		if err := runOne(f, raw, store, ""); err != nil {
			return errors.Wrapf(err, "run %s", f)
		}
	}
	return nil
}

// runOne loads, builds, and drives a single scenario to completion (every
// scripted send offered to Send, with rejections logged and skipped, then
// AdvanceWith called Rounds times), recording
// every delivery and persisting both the scenario and its compressed run
// log under a shortid-tagged run name.
func runOne(path string, raw []byte, store *scenario.Store, httpAddr string) error {
	runID, err := shortid.Generate()
	if err != nil {
		return errors.Wrap(err, "generate run id")
	}
	runName := fmt.Sprintf("netsim-run-%s", runID)
	logInfof("%s: loading %s", runName, filepath.Base(path))

	s, err := scenario.Decode(raw)
	if err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	built, err := scenario.Build(s)
	if err != nil {
		return errors.Wrapf(err, "build %s", path)
	}
	if err := store.SaveScenario(runName, raw); err != nil {
		return errors.Wrap(err, "persist scenario")
	}

	rec := recorder.New(built.Net.Round)
	stats := newStatsServer(built.Net)

	sink := func(p netsim.Packet[payload.Sized]) {
		rec.Observe(p.ID, p.From, p.To, p.TotalBytes)
		stats.onDelivered()
	}
	built.Net.OnDrop(func(netsim.Packet[payload.Sized]) { stats.onDropped() })

	drive := func(ctx context.Context) error {
		for _, pkt := range built.Sends {
			if err := built.Net.Send(pkt); err != nil {
				logWarnf("%s: send %s rejected: %v", runName, pkt.ID, err)
			}
		}
		for round := uint64(0); round < s.Rounds; round++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := stats.advance(s.Step(), sink); err != nil {
				return errors.Wrap(err, "advance_with")
			}
		}
		return nil
	}

	if httpAddr == "" {
		if err := drive(context.Background()); err != nil {
			return err
		}
	} else {
		ctx, cancel := context.WithCancel(context.Background())
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return stats.run(gctx, httpAddr) })
		g.Go(func() error {
			defer cancel() // drive finishing, one way or another, shuts the stats server down
			return drive(gctx)
		})
		if err := g.Wait(); err != nil {
			return errors.Wrap(err, "run")
		}
	}

	if err := store.SaveLog(runName, rec.Log()); err != nil {
		return errors.Wrap(err, "persist run log")
	}
	logInfof("%s: done, %d frames recorded", runName, len(rec.Log()))
	return nil
}
