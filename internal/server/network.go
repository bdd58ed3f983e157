package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lambdcalculus/fibq/internal/uid"
	"github.com/lambdcalculus/fibq/pkg/packets"
	"github.com/lambdcalculus/fibq/pkg/pqueue"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// TODO: actually check the origin once there is a browser client.
		CheckOrigin: func(r *http.Request) bool { return true },
	}
)

// Returns the handler for the WebSocket endpoint.
func (srv *QueueServer) HandlerWS() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.wsEndpoint)
	return mux
}

func (srv *QueueServer) listenWS() {
	wsServer := &http.Server{
		Addr:           fmt.Sprintf(":%v", srv.config.PortWS),
		Handler:        srv.HandlerWS(),
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	srv.logger.Infof("Listening WS on port %v.", srv.config.PortWS)
	err := wsServer.ListenAndServe()
	srv.logger.Errorf("Stopped serving WS: %v.", err)
	srv.fatal <- fmt.Errorf("server: WS listener stopped (%w).", err)
}

// The handler for the '/' endpoint. Every connection is a session with its own UID.
func (srv *QueueServer) wsEndpoint(w http.ResponseWriter, r *http.Request) {
	id, err := srv.sessions.Take()
	if err != nil {
		srv.logger.Warnf("WS: Refusing connection from %v (%v).", r.RemoteAddr, err)
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		srv.sessions.Free(id)
		srv.logger.Debugf("WS: Couldn't upgrade connection from %v (%v).", r.RemoteAddr, err)
		return // bad request
	}
	srv.logger.Debugf("New WS session %v from %v.", id, r.RemoteAddr)

	srv.handleSession(&session{id: id, ws: ws})
}

type session struct {
	id int
	ws *websocket.Conn
}

func (s *session) write(header string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.ws.WriteJSON(packets.Packet{Header: header, Data: raw})
}

// Greets the session and serves its requests until it disconnects.
func (srv *QueueServer) handleSession(s *session) {
	defer func() {
		s.ws.Close()
		srv.sessions.Free(s.id)
		s.id = uid.Unassigned
	}()

	hello := packets.DataHello{
		Name:    srv.config.Name,
		Order:   srv.config.Order,
		Session: s.id,
		Size:    srv.Size(),
	}
	if err := s.write(packets.HeaderHello, hello); err != nil {
		srv.logger.Debugf("Couldn't greet session %v (%v).", s.id, err)
		return
	}

	for {
		_, raw, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				srv.logger.Debugf("Session %v closed.", s.id)
			} else {
				srv.logger.Debugf("Error in session %v (%v).", s.id, err)
			}
			return
		}
		p, err := packets.MakePacket(raw)
		if err != nil {
			srv.logger.Debugf("Bad JSON by session %v (%v).", s.id, err)
			if err := s.write(packets.HeaderError, packets.DataError{Message: "malformed packet"}); err != nil {
				return
			}
			continue
		}
		srv.logger.Tracef("Received packet from session %v: %s", s.id, raw)
		if err := srv.handlePacket(s, p); err != nil {
			srv.logger.Debugf("Couldn't reply to session %v (%v).", s.id, err)
			return
		}
	}
}

type handleFunc func(srv *QueueServer, s *session, data json.RawMessage) error

var handlerMap = map[string]handleFunc{
	packets.HeaderEnqueue: (*QueueServer).handleEnqueue,
	packets.HeaderDequeue: (*QueueServer).handleDequeue,
	packets.HeaderMin:     (*QueueServer).handleMin,
	packets.HeaderSize:    (*QueueServer).handleSize,
}

func (srv *QueueServer) handlePacket(s *session, p packets.Packet) error {
	handler := handlerMap[p.Header]
	if handler == nil {
		return s.write(packets.HeaderError, packets.DataError{
			Request: p.Header,
			Message: "unknown header",
		})
	}
	return handler(srv, s, p.Data)
}

func (srv *QueueServer) handleEnqueue(s *session, data json.RawMessage) error {
	var args packets.DataEnqueue
	if err := json.Unmarshal(data, &args); err != nil {
		return s.write(packets.HeaderError, packets.DataError{
			Request: packets.HeaderEnqueue,
			Message: fmt.Sprintf("bad data: %v", err),
		})
	}
	return s.write(packets.HeaderValue, packets.DataValue{Size: srv.Enqueue(args.Values)})
}

func (srv *QueueServer) handleDequeue(s *session, _ json.RawMessage) error {
	return srv.replyValue(s, packets.HeaderDequeue, srv.DequeueMin)
}

func (srv *QueueServer) handleMin(s *session, _ json.RawMessage) error {
	return srv.replyValue(s, packets.HeaderMin, srv.GetMin)
}

func (srv *QueueServer) handleSize(s *session, _ json.RawMessage) error {
	return s.write(packets.HeaderValue, packets.DataValue{Size: srv.Size()})
}

func (srv *QueueServer) replyValue(s *session, request string, get func() (int64, uint, error)) error {
	v, size, err := get()
	if err != nil {
		return s.write(packets.HeaderError, packets.DataError{
			Request: request,
			Message: err.Error(),
			Empty:   errors.Is(err, pqueue.ErrEmptyHeap),
		})
	}
	return s.write(packets.HeaderValue, packets.DataValue{Value: &v, Size: size})
}
