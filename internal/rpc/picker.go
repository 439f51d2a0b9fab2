package rpc

import (
	"context"
	"errors"
	"time"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"golang.org/x/sync/errgroup"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest  Algorithm = "fastest"
	AlgorithmFailover Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
	pingTimeout         = 5 * time.Second
)

// Endpoint represents a single RPC endpoint with its measured attributes.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool
}

// Pinger measures one endpoint. chain.EVMClient satisfies it.
type Pinger interface {
	Ping(ctx context.Context) (time.Duration, uint64, error)
}

// Dialer builds a Pinger for url.
type Dialer func(url string) Pinger

func defaultDialer(url string) Pinger { return chain.NewEVMClient(url) }

// Benchmark pings every URL concurrently. Results keep the input order.
func Benchmark(ctx context.Context, urls []string, dial Dialer) []Endpoint {
	if dial == nil {
		dial = defaultDialer
	}
	out := make([]Endpoint, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, pingTimeout)
			defer cancel()
			latency, block, err := dial(u).Ping(pctx)
			out[i] = Endpoint{URL: u, Latency: latency, BlockNumber: block, Healthy: err == nil}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Pick selects an endpoint from measured endpoints according to algo.
func Pick(endpoints []Endpoint, algo Algorithm) (*Endpoint, error) {
	if algo == AlgorithmFailover {
		for i := range endpoints {
			if endpoints[i].Healthy {
				return &endpoints[i], nil
			}
		}
		return nil, ErrNoHealthyRPC
	}

	var bestBlock uint64
	for _, e := range endpoints {
		if e.Healthy && e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var winner *Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Healthy || bestBlock-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if winner == nil || e.Latency < winner.Latency {
			winner = e
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}
	return winner, nil
}

// SelectBest picks the best RPC URL from urls. A single URL is returned
// without probing. An empty algorithm defaults to "fastest".
func SelectBest(ctx context.Context, urls []string, algorithm string, dial Dialer) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	if len(urls) == 1 {
		return urls[0], nil
	}
	algo := Algorithm(algorithm)
	if algo == "" {
		algo = AlgorithmFastest
	}
	winner, err := Pick(Benchmark(ctx, urls, dial), algo)
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
