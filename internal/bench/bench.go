// Package `bench` runs the amortized cost experiment: a long random sequence
// of enqueues and dequeues on a Fibonacci heap, checked step by step against
// a binary heap, counting the links consolidation performs.
package bench

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/lambdcalculus/fibq/pkg/fibheap"
	"github.com/lambdcalculus/fibq/pkg/logger"
	"github.com/lambdcalculus/fibq/pkg/minheap"
)

// ErrMismatch means the Fibonacci heap and the reference heap disagreed.
var ErrMismatch = errors.New("bench: heaps disagree")

type Config struct {
	Ops  int
	Seed int64
	// Probability that an operation is an enqueue. Dequeues on an empty
	// heap become enqueues.
	EnqueueBias float64
	// Keys are drawn from [0, KeyRange). 0 means the full int64 range.
	KeyRange int64
}

func ConfigDefault() Config {
	return Config{
		Ops:         100000,
		Seed:        1,
		EnqueueBias: 0.5,
	}
}

type Result struct {
	Seed     int64
	Ops      int
	Enqueues int
	Dequeues int
	Links    int
	Peak     uint
	// m·log₂(m) for m = Ops.
	Bound   float64
	Elapsed time.Duration
}

// Ratio returns links per unit of the bound.
func (r Result) Ratio() float64 {
	if r.Bound == 0 {
		return 0
	}
	return float64(r.Links) / r.Bound
}

func (r Result) String() string {
	return fmt.Sprintf("seed %v: %v ops (%v enqueues, %v dequeues), %v links, bound %.0f (ratio %.4f), peak size %v, took %v",
		r.Seed, r.Ops, r.Enqueues, r.Dequeues, r.Links, r.Bound, r.Ratio(), r.Peak, r.Elapsed)
}

// Bound returns m·log₂(m), the shape total work must stay under.
func Bound(m int) float64 {
	if m < 2 {
		return 0
	}
	return float64(m) * math.Log2(float64(m))
}

// Runs the experiment. Fails with [ErrMismatch] as soon as the heaps
// return different minimums or sizes.
func Run(cfg Config) (Result, error) {
	if cfg.Ops < 0 {
		return Result{}, fmt.Errorf("bench: Negative operation count %v.", cfg.Ops)
	}
	if cfg.EnqueueBias < 0 || cfg.EnqueueBias > 1 {
		return Result{}, fmt.Errorf("bench: Enqueue bias %v out of [0, 1].", cfg.EnqueueBias)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	key := func() int64 {
		if cfg.KeyRange > 0 {
			return rng.Int63n(cfg.KeyRange)
		}
		return rng.Int63()
	}

	fib := fibheap.NewOrdered[int64]()
	ref := minheap.NewOrdered[int64](nil)
	res := Result{Seed: cfg.Seed, Ops: cfg.Ops, Bound: Bound(cfg.Ops)}

	start := time.Now()
	for i := 0; i < cfg.Ops; i++ {
		if fib.Empty() || rng.Float64() < cfg.EnqueueBias {
			k := key()
			fib.Enqueue(k)
			ref.Enqueue(k)
			res.Enqueues++
		} else {
			got, err := fib.DequeueMin()
			if err != nil {
				return res, fmt.Errorf("bench: Dequeue %v failed (%w).", i, err)
			}
			want, _ := ref.DequeueMin()
			if got != want {
				return res, fmt.Errorf("%w: operation %v dequeued %v, expected %v", ErrMismatch, i, got, want)
			}
			res.Dequeues++
		}
		if fib.Size() != ref.Size() {
			return res, fmt.Errorf("%w: operation %v left size %v, expected %v", ErrMismatch, i, fib.Size(), ref.Size())
		}
		if fib.Size() > res.Peak {
			res.Peak = fib.Size()
		}
	}
	res.Elapsed = time.Since(start)
	res.Links = fib.Links()

	logger.Debugf("bench: %v", res)
	if res.Bound > 0 && float64(res.Links) > res.Bound {
		logger.Warnf("bench: Links (%v) exceed the m·log₂(m) bound (%.0f).", res.Links, res.Bound)
	}
	return res, nil
}
