package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/comas/mantletool/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("mantletool", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
mantletool - interface generator for system description files.

Usage:
  mantletool [options] INPUT_FILE

Arguments:
  INPUT_FILE
    Path to the System Description File (SDF) to check and generate from.

Options:
`)
		flagSet.PrintDefaults()
	}

	outputCFlag := flagSet.String("c", "", "Output file for the generated C header.")
	outputIFlag := flagSet.String("i", "", "Output file for the generated interface.")
	outputMFlag := flagSet.String("m", "", "Output file for the generated module.")
	targetFlag := flagSet.String("g", "", "Generate an API for the given protection domain.")
	platformFlag := flagSet.String("platform", "", "Path to an HCL platform description. Defaults to the built-in platform.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "expected exactly one input file"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		InputPath:       flagSet.Arg(0),
		PlatformPath:    *platformFlag,
		OutputC:         *outputCFlag,
		OutputInterface: *outputIFlag,
		OutputModule:    *outputMFlag,
		Target:          *targetFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
