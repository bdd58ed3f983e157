// fibqd serves a shared priority queue over RPC and WebSockets.
package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/lambdcalculus/fibq/internal/config"
	"github.com/lambdcalculus/fibq/internal/server"
	"github.com/lambdcalculus/fibq/pkg/logger"
)

func main() {
	var dir string
	pflag.StringVarP(&dir, "dir", "d", "", "directory holding config/config.toml (defaults to the executable's)")
	pflag.Parse()

	if dir == "" {
		execDir, err := config.ExecDir()
		if err != nil {
			logger.Fatalf("Couldn't find executable location (%v).", err)
			os.Exit(1)
		}
		dir = execDir
	}

	conf, err := config.ReadServer(dir)
	if err != nil {
		logger.Warnf("%v Using defaults where needed.", err)
		if err := conf.Validate(); err != nil {
			logger.Fatalf("%v", err)
			os.Exit(1)
		}
	}

	log := logger.NewLoggerOutputs(conf.Level(), nil, dir, conf.LogOutputs...)
	logger.SetLogger(log)

	serv, err := server.MakeServer(conf, log)
	if err != nil {
		log.Fatalf("Couldn't make server (%v).", err)
		os.Exit(1)
	}
	log.Fatalf("Server stopped running: %s", serv.Run())
	os.Exit(1)
}
