// Package `server` serves one shared priority queue over RPC and WebSockets.
package server

import (
	"fmt"
	"sync"

	"github.com/lambdcalculus/fibq/internal/config"
	"github.com/lambdcalculus/fibq/internal/uid"
	"github.com/lambdcalculus/fibq/pkg/fibheap"
	"github.com/lambdcalculus/fibq/pkg/logger"
	"github.com/lambdcalculus/fibq/pkg/pqueue"
)

type QueueServer struct {
	config *config.Server

	// The heap isn't goroutine-safe; every access holds mu.
	mu    sync.Mutex
	queue *fibheap.Heap[int64]

	sessions *uid.UIDHeap

	fatal chan error

	logger *logger.Logger
}

// Tries to create and prepare the server. May fail if the config is not set appropriately.
func MakeServer(conf *config.Server, log *logger.Logger) (*QueueServer, error) {
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("server: Couldn't configure server (%w).", err)
	}

	less := pqueue.Natural[int64]()
	if conf.Order == config.OrderMax {
		less = pqueue.Reverse(less)
	}

	srv := &QueueServer{
		config:   conf,
		queue:    fibheap.New(less),
		sessions: uid.CreateHeap(conf.MaxClients),
		fatal:    make(chan error, 2),
		logger:   log,
	}
	srv.logger.Debugf("Successfully loaded server configuration: %#v", conf)
	return srv, nil
}

// Starts and runs the server. Returns when a listener stops.
func (srv *QueueServer) Run() error {
	srv.logger.Infof("Starting %v (%v-queue).", srv.config.Name, srv.config.Order)
	if srv.config.PortWS <= 0 && srv.config.PortRPC <= 0 {
		return fmt.Errorf("server: No listeners configured.")
	}
	if srv.config.PortWS > 0 {
		go srv.listenWS()
	}
	if srv.config.PortRPC > 0 {
		go srv.listenRPC()
	}
	return <-srv.fatal
}

// Adds values to the queue, returning its new size.
func (srv *QueueServer) Enqueue(values []int64) uint {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	for _, v := range values {
		srv.queue.Enqueue(v)
	}
	srv.logger.Tracef("Enqueued %v value(s), size is now %v.", len(values), srv.queue.Size())
	return srv.queue.Size()
}

// Removes the smallest value, returning it and the size left.
func (srv *QueueServer) DequeueMin() (int64, uint, error) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	v, err := srv.queue.DequeueMin()
	if err != nil {
		return 0, 0, err
	}
	srv.logger.Tracef("Dequeued %v, size is now %v (%v links so far).", v, srv.queue.Size(), srv.queue.Links())
	return v, srv.queue.Size(), nil
}

// Returns the smallest value and the size.
func (srv *QueueServer) GetMin() (int64, uint, error) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	v, err := srv.queue.GetMin()
	if err != nil {
		return 0, 0, err
	}
	return v, srv.queue.Size(), nil
}

// Returns the number of values in the queue.
func (srv *QueueServer) Size() uint {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.queue.Size()
}
