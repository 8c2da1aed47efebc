package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// reporter dumps the go-metrics registry as JSON on a fixed interval.
type reporter struct {
	out  io.Writer
	reg  gometrics.Registry
	tick time.Duration
}

var metrics = &reporter{
	out:  os.Stderr,
	reg:  gometrics.DefaultRegistry,
	tick: 60 * time.Second,
}

func init() {
	flag.DurationVar(&metrics.tick, "metrics.tick", metrics.tick, "metrics: duration between reports on stderr")
}

// run reports until ctx is done, then reports a last time.
func (r *reporter) run(ctx context.Context) {
	t := time.NewTicker(r.tick)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			r.dump(r.out)
		case <-ctx.Done():
			r.dump(r.out)
			return
		}
	}
}

func (r *reporter) dump(w io.Writer) {
	gometrics.WriteJSONOnce(r.reg, w)
}

func (r *reporter) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	r.dump(w)
}

func incr(name string, i int64) {
	gometrics.GetOrRegisterCounter(name, metrics.reg).Inc(i)
}

func decr(name string, i int64) {
	gometrics.GetOrRegisterCounter(name, metrics.reg).Dec(i)
}

func count(name string) int64 {
	return gometrics.GetOrRegisterCounter(name, metrics.reg).Count()
}

// timeSince records the time elapsed since start in the named timer.
func timeSince(name string, start time.Time) {
	gometrics.GetOrRegisterTimer(name, metrics.reg).UpdateSince(start)
}
