package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	InputPath  string // XDSL document to convert
	OutputPath string // script destination; empty means the app's output writer

	// CheckOnly validates the document and reports instead of generating.
	CheckOnly bool

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
