package main

import (
	"time"

	"newsbrief/pkg/config"
	"newsbrief/pkg/pipeline"
)

// configAdapter exposes the loaded configuration through the server's
// provider interface.
type configAdapter struct {
	cfg *config.Config
}

// GetServerConfig returns the listen address and timeout.
func (a *configAdapter) GetServerConfig() (listen string, timeout time.Duration) {
	return a.cfg.GetServerConfig()
}

// PipelineDefaults returns the configured run options used as the base for
// every request.
func (a *configAdapter) PipelineDefaults() pipeline.Options {
	return pipelineOptions(a.cfg)
}
