package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lambdcalculus/fibq/internal/config"
	"github.com/lambdcalculus/fibq/pkg/logger"
	"github.com/lambdcalculus/fibq/pkg/packets"
	"github.com/lambdcalculus/fibq/pkg/pqueue"
	"github.com/lambdcalculus/fibq/pkg/rpc"
)

func newTestServer(t *testing.T, order string, maxClients int) *QueueServer {
	t.Helper()
	conf := config.ServerDefault()
	conf.Order = order
	conf.MaxClients = maxClients
	srv, err := MakeServer(conf, logger.NewLogger(nil, logger.LevelTrace, io.Discard))
	require.NoError(t, err)
	return srv
}

func TestMakeServerBadConfig(t *testing.T) {
	conf := config.ServerDefault()
	conf.Order = "random"
	_, err := MakeServer(conf, logger.NewLogger(nil, logger.LevelInfo, io.Discard))
	require.Error(t, err)
}

func TestRunWithoutListeners(t *testing.T) {
	conf := config.ServerDefault()
	conf.PortRPC, conf.PortWS = 0, 0
	srv, err := MakeServer(conf, logger.NewLogger(nil, logger.LevelInfo, io.Discard))
	require.NoError(t, err)
	require.Error(t, srv.Run())
}

func TestQueueOperations(t *testing.T) {
	srv := newTestServer(t, config.OrderMin, 1)
	_, _, err := srv.GetMin()
	require.ErrorIs(t, err, pqueue.ErrEmptyHeap)

	require.Equal(t, uint(5), srv.Enqueue([]int64{5, 3, 8, 1, 9}))
	v, size, err := srv.GetMin()
	require.NoError(t, err)
	require.Equal(t, int64(1), v)
	require.Equal(t, uint(5), size)

	for _, want := range []int64{1, 3, 5, 8, 9} {
		v, _, err := srv.DequeueMin()
		require.NoError(t, err)
		require.Equal(t, want, v)
	}
	_, _, err = srv.DequeueMin()
	require.ErrorIs(t, err, pqueue.ErrEmptyHeap)
}

func TestConcurrentClients(t *testing.T) {
	srv := newTestServer(t, config.OrderMin, 1)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				srv.Enqueue([]int64{int64(g*100 + i)})
			}
		}(g)
	}
	wg.Wait()
	require.Equal(t, uint(800), srv.Size())

	prev := int64(-1)
	for srv.Size() > 0 {
		v, _, err := srv.DequeueMin()
		require.NoError(t, err)
		require.Greater(t, v, prev)
		prev = v
	}
}

func TestRPC(t *testing.T) {
	srv := newTestServer(t, config.OrderMax, 1)
	h, err := rpc.NewHandler(srv)
	require.NoError(t, err)
	ts := httptest.NewServer(h)
	defer ts.Close()

	c, err := rpc.Dial(strings.TrimPrefix(ts.URL, "http://"))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.DequeueMin()
	require.ErrorIs(t, err, pqueue.ErrEmptyHeap)
	_, err = c.GetMin()
	require.ErrorIs(t, err, pqueue.ErrEmptyHeap)

	size, err := c.Enqueue(4, 10, -2)
	require.NoError(t, err)
	require.Equal(t, uint(3), size)

	reply, err := c.GetMin()
	require.NoError(t, err)
	require.Equal(t, rpc.ValueReply{Value: 10, Size: 3}, reply)

	reply, err = c.DequeueMin()
	require.NoError(t, err)
	require.Equal(t, rpc.ValueReply{Value: 10, Size: 2}, reply)

	size, err = c.Size()
	require.NoError(t, err)
	require.Equal(t, uint(2), size)
}

func dialWS(t *testing.T, ts *httptest.Server) (*websocket.Conn, packets.DataHello) {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)

	var p packets.Packet
	require.NoError(t, ws.ReadJSON(&p))
	require.Equal(t, packets.HeaderHello, p.Header)
	var hello packets.DataHello
	require.NoError(t, json.Unmarshal(p.Data, &hello))
	return ws, hello
}

func request(t *testing.T, ws *websocket.Conn, header string, data any) packets.Packet {
	t.Helper()
	p := packets.Packet{Header: header}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		p.Data = raw
	}
	require.NoError(t, ws.WriteJSON(p))
	var reply packets.Packet
	require.NoError(t, ws.ReadJSON(&reply))
	return reply
}

func TestWebSocket(t *testing.T) {
	srv := newTestServer(t, config.OrderMin, 2)
	ts := httptest.NewServer(srv.HandlerWS())
	defer ts.Close()

	ws, hello := dialWS(t, ts)
	defer ws.Close()
	require.Equal(t, 1, hello.Session)
	require.Equal(t, config.OrderMin, hello.Order)
	require.Equal(t, uint(0), hello.Size)

	reply := request(t, ws, packets.HeaderDequeue, nil)
	require.Equal(t, packets.HeaderError, reply.Header)
	var dataErr packets.DataError
	require.NoError(t, json.Unmarshal(reply.Data, &dataErr))
	require.True(t, dataErr.Empty)
	require.Equal(t, packets.HeaderDequeue, dataErr.Request)

	reply = request(t, ws, packets.HeaderEnqueue, packets.DataEnqueue{Values: []int64{7, 2, 9}})
	require.Equal(t, packets.HeaderValue, reply.Header)
	var val packets.DataValue
	require.NoError(t, json.Unmarshal(reply.Data, &val))
	require.Nil(t, val.Value)
	require.Equal(t, uint(3), val.Size)

	reply = request(t, ws, packets.HeaderMin, nil)
	val = packets.DataValue{}
	require.NoError(t, json.Unmarshal(reply.Data, &val))
	require.Equal(t, int64(2), *val.Value)

	reply = request(t, ws, packets.HeaderDequeue, nil)
	val = packets.DataValue{}
	require.NoError(t, json.Unmarshal(reply.Data, &val))
	require.Equal(t, int64(2), *val.Value)
	require.Equal(t, uint(2), val.Size)

	reply = request(t, ws, packets.HeaderSize, nil)
	val = packets.DataValue{}
	require.NoError(t, json.Unmarshal(reply.Data, &val))
	require.Equal(t, uint(2), val.Size)

	// A second session sees the same queue.
	ws2, hello2 := dialWS(t, ts)
	require.Equal(t, 2, hello2.Session)
	require.Equal(t, uint(2), hello2.Size)
	ws2.Close()
}

func TestWebSocketBadRequests(t *testing.T) {
	srv := newTestServer(t, config.OrderMin, 1)
	ts := httptest.NewServer(srv.HandlerWS())
	defer ts.Close()

	ws, _ := dialWS(t, ts)
	defer ws.Close()

	reply := request(t, ws, "SHUFFLE", nil)
	require.Equal(t, packets.HeaderError, reply.Header)

	reply = request(t, ws, packets.HeaderEnqueue, "not a list")
	require.Equal(t, packets.HeaderError, reply.Header)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{oops")))
	var p packets.Packet
	require.NoError(t, ws.ReadJSON(&p))
	require.Equal(t, packets.HeaderError, p.Header)

	// the session survives all of the above
	reply = request(t, ws, packets.HeaderSize, nil)
	require.Equal(t, packets.HeaderValue, reply.Header)
}

func TestWebSocketFull(t *testing.T) {
	srv := newTestServer(t, config.OrderMin, 1)
	ts := httptest.NewServer(srv.HandlerWS())
	defer ts.Close()

	ws, _ := dialWS(t, ts)
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.Error(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// Closing frees the UID for the next session.
	ws.Close()
	require.Eventually(t, func() bool { return srv.sessions.InUse() == 0 }, time.Second, 10*time.Millisecond)
	ws, hello := dialWS(t, ts)
	defer ws.Close()
	require.Equal(t, 1, hello.Session)
}
