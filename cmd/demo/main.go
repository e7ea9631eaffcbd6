// Command demo wires the source drivers in this module together into
// a small pipeline and, optionally, exposes its live shape over the
// graph-introspection debug server.
//
// Grounded on the teacher's cmd/tck/main.go flag-driven main shape;
// the RSocket TCK content it drove is gone, replaced by this
// pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reactivego/streams/pkg/debug"
	"github.com/reactivego/streams/pkg/introspect"
	"github.com/reactivego/streams/pkg/reactive"
	"github.com/reactivego/streams/pkg/sources"
	"github.com/reactivego/streams/pkg/timer"
)

var (
	debugAddr string
	count     int
	period    time.Duration
)

func init() {
	flag.StringVar(&debugAddr, "debug", "", "address to serve live graph introspection on, e.g. :4567 (disabled if empty)")
	flag.IntVar(&count, "count", 20, "number of primary values to emit")
	flag.DurationVar(&period, "period", 500*time.Millisecond, "interval source tick period")
}

func main() {
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runID := uuid.New()
	log.Info("starting demo pipeline", zap.String("run_id", runID.String()), zap.Int("count", count))

	values := make([]int64, count)
	for i := range values {
		values[i] = int64(i + 1)
	}

	wallClock := timer.NewWallClock()
	primary := sources.FromSlice(values)
	other := sources.FromInterval(wallClock, 0, period)

	combined := sources.WithLatestFrom[int64, int64, int64](primary, other, func(p, o int64) (int64, error) {
		return p*100 + o, nil
	})

	var latestSub atomic.Value // reactive.Subscription

	group, gctx := errgroup.WithContext(ctx)

	if debugAddr != "" {
		snapshot := func() *introspect.Graph {
			v := latestSub.Load()
			if v == nil {
				return nil
			}
			return introspect.Scan(v.(reactive.Subscription))
		}
		srv, err := debug.Listen(debugAddr, snapshot, time.Second, log)
		if err != nil {
			log.Fatal("failed to start debug server", zap.Error(err))
		}
		log.Info("serving graph introspection", zap.String("addr", srv.ListenAddr()))
		group.Go(srv.Serve)
		group.Go(func() error {
			<-gctx.Done()
			srv.Shutdown()
			return nil
		})
	}

	group.Go(func() error {
		subscriber := &reactive.SubscriberFuncs[int64]{
			Log: log,
			OnSubscribeFunc: func(s reactive.Subscription) {
				latestSub.Store(s)
				s.Request(reactive.Unbounded)
			},
			OnNextFunc: func(v int64) {
				log.Info("value", zap.Int64("value", v))
			},
			OnErrorFunc: func(err error) {
				log.Error("pipeline failed", zap.Error(err))
			},
			OnCompleteFunc: func() {
				log.Info("pipeline complete")
				stop()
			},
		}
		combined.Subscribe(subscriber.Build())
		return nil
	})

	if err := group.Wait(); err != nil {
		log.Fatal("demo exited with error", zap.Error(err))
	}
}
