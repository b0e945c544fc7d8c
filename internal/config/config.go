package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type RedisConfig struct {
	Addr         string `json:"addr"`
	Password     string `json:"password"`
	DB           int    `json:"db"`
	PoolSize     int    `json:"pool_size"`
	MinIdleConns int    `json:"min_idle_conns"`
	TTLSec       int    `json:"ttl_sec"`
}

type SolverConfig struct {
	// Method selects the optimization engine ("lbfgs", "bfgs", "cg", "neldermead").
	Method        string  `json:"method"`
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`
}

type ServerConfig struct {
	UDPAddr string `json:"udp_addr"`
	TCPAddr string `json:"tcp_addr"`
	WSAddr  string `json:"ws_addr"`

	// NP is the expected parameter-vector length for this solver instance,
	// NU the decision-vector length. Both are fixed per instance.
	NP int `json:"np"`
	NU int `json:"nu"`

	// MaxDatagramSize bounds the UDP receive buffer. Requests larger than
	// this are truncated by the transport and will fail to decode.
	MaxDatagramSize int `json:"max_datagram_size"`

	// WarmStart seeds the decision vector from the solution cache (or the
	// request's initial guess) instead of zeroing it on every request.
	WarmStart bool `json:"warm_start"`

	Solver SolverConfig `json:"solver"`
	Redis  *RedisConfig `json:"redis,omitempty"`
}

const (
	defaultMaxDatagramSize = 64 * 1024
	defaultMaxIterations   = 500
)

func Load(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate fills defaults and rejects configurations the solver
// instance cannot serve.
func (c *ServerConfig) Validate() error {
	if c.NP <= 0 {
		return fmt.Errorf("np must be positive, got %d", c.NP)
	}
	if c.NU <= 0 {
		return fmt.Errorf("nu must be positive, got %d", c.NU)
	}
	if c.MaxDatagramSize <= 0 {
		c.MaxDatagramSize = defaultMaxDatagramSize
	}
	if c.Solver.Method == "" {
		c.Solver.Method = "lbfgs"
	}
	if c.Solver.MaxIterations <= 0 {
		c.Solver.MaxIterations = defaultMaxIterations
	}
	return nil
}
