// config.go: optional mitscript.toml defaults.
//
// Explicit flags always win; the file only supplies defaults for the memory
// limit and the REPL history location.
package main

import (
	"os"

	"github.com/pelletier/go-toml"
)

const configFileName = "mitscript.toml"

type config struct {
	Run struct {
		MemMB int `toml:"mem_mb"`
	} `toml:"run"`
	Repl struct {
		History string `toml:"history"`
	} `toml:"repl"`
}

// loadConfig reads mitscript.toml from the working directory when present.
// A missing or unreadable file yields zero defaults; a malformed one is
// ignored the same way rather than blocking the run.
func loadConfig() config {
	var c config
	buf, err := os.ReadFile(configFileName)
	if err != nil {
		return c
	}
	if err := toml.Unmarshal(buf, &c); err != nil {
		return config{}
	}
	return c
}
