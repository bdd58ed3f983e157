package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lambdcalculus/fibq/pkg/logger"
)

// Orderings the queue can be served with.
const (
	OrderMin = "min"
	OrderMax = "max"
)

type Server struct {
	Name       string        `toml:"name"`
	Order      string        `toml:"order"`
	PortRPC    int           `toml:"rpc_port"`
	PortWS     int           `toml:"ws_port"`
	MaxClients int           `toml:"max_clients"`
	RPCTimeout time.Duration `toml:"rpc_timeout"`

	LevelString string   `toml:"log_level"`
	LogOutputs  []string `toml:"log_outputs"`
}

func ServerDefault() *Server {
	return &Server{
		Name:        "fibq",
		Order:       OrderMin,
		PortRPC:     8082,
		PortWS:      8080,
		MaxClients:  100,
		RPCTimeout:  10 * time.Second,
		LevelString: "info",
		LogOutputs:  []string{"stdout"},
	}
}

// Checks that the settings make sense together.
func (s *Server) Validate() error {
	if s.Order != OrderMin && s.Order != OrderMax {
		return fmt.Errorf("config: Order must be '%v' or '%v', not '%v'.", OrderMin, OrderMax, s.Order)
	}
	if s.PortWS > 0 && s.MaxClients <= 0 {
		return fmt.Errorf("config: max_clients must be positive when serving WS.")
	}
	if s.RPCTimeout < 0 {
		return fmt.Errorf("config: rpc_timeout can't be negative.")
	}
	if _, err := logger.ParseLevel(s.LevelString); err != nil {
		return fmt.Errorf("config: Bad log level (%w).", err)
	}
	return nil
}

// Returns the configured log level, or info if it is invalid.
func (s *Server) Level() logger.LogLevel {
	lvl, _ := logger.ParseLevel(s.LevelString)
	return lvl
}

// Attempts to read server configuration from `<dir>/config/config.toml`.
// Returns default server settings (overridden by whatever could be read)
// alongside any error.
func ReadServer(dir string) (*Server, error) {
	srvConfig := ServerDefault()
	file := path.Join(dir, "config", "config.toml")
	if _, err := toml.DecodeFile(file, srvConfig); err != nil {
		return srvConfig, fmt.Errorf("config: Couldn't read server config (%w).", err)
	}
	if err := srvConfig.Validate(); err != nil {
		return srvConfig, err
	}
	return srvConfig, nil
}

// Returns the absolute path to the executable's directory, if it doesn't fail.
func ExecDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return path.Dir(execPath), nil
}
