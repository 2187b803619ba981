package main

import (
	"testing"

	"github.com/prism-labs/prism/pkg/logger"
)

func TestVerbosityToLevel(t *testing.T) {
	cases := []struct {
		verbosity int
		want      logger.Level
	}{
		{0, logger.INFO},
		{1, logger.DEBUG},
		{3, logger.DEBUG},
	}
	for _, c := range cases {
		if got := verbosityToLevel(c.verbosity); got != c.want {
			t.Errorf("verbosityToLevel(%d) = %v, want %v", c.verbosity, got, c.want)
		}
	}
}

func TestAPIPortParsesTrailingPort(t *testing.T) {
	cases := []struct {
		addr string
		want int
	}{
		{"127.0.0.1:7000", 7000},
		{"0.0.0.0:9999", 9999},
		{"no-port-here", 7000},
		{"", 7000},
	}
	for _, c := range cases {
		if got := apiPort(c.addr); got != c.want {
			t.Errorf("apiPort(%q) = %d, want %d", c.addr, got, c.want)
		}
	}
}
