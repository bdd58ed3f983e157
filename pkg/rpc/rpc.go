// Package `rpc` exports methods to interface with the queue over RPC.
//
// This separation allows RPC clients to not require importing the `server`
// package, which makes them a lot lighter.
package rpc

import (
	"fmt"
	"net/http"
	"net/rpc"
	"time"

	"github.com/lambdcalculus/fibq/pkg/pqueue"
)

// Arguments for the Enqueue operation.
type EnqueueArgs struct {
	Values []int64
}

// Argument for operations that take none. Gob can't encode empty structs.
type NoArgs int

// Reply for DequeueMin and GetMin.
type ValueReply struct {
	Value int64
	Size  uint
}

// Handler is the internal implementation of each operation, provided by the server.
type Handler interface {
	Enqueue(values []int64) (size uint)
	DequeueMin() (int64, uint, error)
	GetMin() (int64, uint, error)
	Size() uint
}

// The receiver for the exported RPC methods.
type Queue struct {
	h Handler
}

// Returns an [http.Handler] serving the queue's RPC methods on any path.
func NewHandler(h Handler) (http.Handler, error) {
	s := rpc.NewServer()
	if err := s.RegisterName("Queue", &Queue{h: h}); err != nil {
		return nil, err
	}
	return s, nil
}

// Returns an HTTP server that serves RPC in the passed port.
// If there is an issue setting up the server, returns an error.
func NewServer(h Handler, port int, timeout time.Duration) (*http.Server, error) {
	s, err := NewHandler(h)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:           fmt.Sprintf("localhost:%v", port),
		Handler:        s,
		ReadTimeout:    timeout,
		WriteTimeout:   timeout,
		MaxHeaderBytes: 1 << 20,
	}, nil
}

// Adds values to the queue. Replies with the new size.
func (q *Queue) Enqueue(args *EnqueueArgs, reply *uint) error {
	*reply = q.h.Enqueue(args.Values)
	return nil
}

// Removes and replies with the smallest value.
func (q *Queue) DequeueMin(_ *NoArgs, reply *ValueReply) error {
	v, size, err := q.h.DequeueMin()
	if err != nil {
		return err
	}
	*reply = ValueReply{Value: v, Size: size}
	return nil
}

// Replies with the smallest value without removing it.
func (q *Queue) GetMin(_ *NoArgs, reply *ValueReply) error {
	v, size, err := q.h.GetMin()
	if err != nil {
		return err
	}
	*reply = ValueReply{Value: v, Size: size}
	return nil
}

// Replies with the number of values in the queue.
func (q *Queue) Size(_ *NoArgs, reply *uint) error {
	*reply = q.h.Size()
	return nil
}

// Errors lose their identity on the wire, so an empty queue is recognized
// by its message.
func IsEmpty(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(rpc.ServerError); ok {
		return string(se) == pqueue.ErrEmptyHeap.Error()
	}
	return err == pqueue.ErrEmptyHeap
}

// Client wraps an RPC connection to the queue.
type Client struct {
	c *rpc.Client
}

// Dials the queue's RPC server at `addr` (host:port).
func Dial(addr string) (*Client, error) {
	c, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("rpc: Couldn't dial %v (%w).", addr, err)
	}
	return &Client{c: c}, nil
}

// Enqueues values, returning the queue's new size.
func (c *Client) Enqueue(values ...int64) (uint, error) {
	var size uint
	err := c.c.Call("Queue.Enqueue", &EnqueueArgs{Values: values}, &size)
	return size, err
}

// Dequeues the smallest value. Fails with [pqueue.ErrEmptyHeap] if the queue is empty.
func (c *Client) DequeueMin() (ValueReply, error) {
	return c.value("Queue.DequeueMin")
}

// Gets the smallest value. Fails with [pqueue.ErrEmptyHeap] if the queue is empty.
func (c *Client) GetMin() (ValueReply, error) {
	return c.value("Queue.GetMin")
}

func (c *Client) value(method string) (ValueReply, error) {
	var reply ValueReply
	if err := c.c.Call(method, NoArgs(0), &reply); err != nil {
		if IsEmpty(err) {
			return reply, pqueue.ErrEmptyHeap
		}
		return reply, err
	}
	return reply, nil
}

// Gets the number of values in the queue.
func (c *Client) Size() (uint, error) {
	var size uint
	err := c.c.Call("Queue.Size", NoArgs(0), &size)
	return size, err
}

func (c *Client) Close() error {
	return c.c.Close()
}
