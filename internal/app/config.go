package app

import "errors"

// Config holds everything an App instance needs to run one invocation.
type Config struct {
	InputPath    string // the System Description File to process
	PlatformPath string // optional HCL platform description

	OutputC         string // requested C header output path, empty if not requested
	OutputInterface string // requested interface output path
	OutputModule    string // requested module output path
	Target          string // protection domain to generate an API for

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
