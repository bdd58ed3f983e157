package server

import (
	"fmt"

	"github.com/lambdcalculus/fibq/pkg/rpc"
)

var _ rpc.Handler = (*QueueServer)(nil)

// Listens for local RPC connections, for usage with fibqctl.
func (srv *QueueServer) listenRPC() {
	s, err := rpc.NewServer(srv, srv.config.PortRPC, srv.config.RPCTimeout)
	if err != nil {
		srv.logger.Errorf("Couldn't create RPC server (%s).", err)
		srv.fatal <- fmt.Errorf("server: Couldn't create RPC server (%w).", err)
		return
	}

	srv.logger.Infof("Listening RPC on port %v.", srv.config.PortRPC)
	err = s.ListenAndServe()
	srv.logger.Errorf("Stopped serving RPC (%v).", err)
	srv.fatal <- fmt.Errorf("server: RPC listener stopped (%w).", err)
}
