// Package app owns the application lifecycle: it wires the parsing,
// validation and generation stages together and renders their results the
// way the command line presents them.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/comas/mantletool/internal/codegen"
	"github.com/comas/mantletool/internal/ctxlog"
	"github.com/comas/mantletool/internal/platform"
	"github.com/comas/mantletool/internal/registry"
	"github.com/comas/mantletool/internal/sdf"
)

// ErrReported signals that the failure has already been rendered for the
// user and the caller should only select the exit code.
var ErrReported = errors.New("errors already reported")

// App encapsulates the application's dependencies and configuration.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp is the constructor for the main application. Diagnostics and logs
// go to errW; outW is reserved for requested output.
func NewApp(outW, errW io.Writer, config *Config) *App {
	return &App{
		outW:   outW,
		errW:   errW,
		logger: newLogger(config.LogLevel, config.LogFormat, errW),
		config: config,
	}
}

// Run executes one invocation: load the platform, parse and validate the
// system description, and, if a target was requested, generate and write its
// API artifacts.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	plat := platform.Default()
	if a.config.PlatformPath != "" {
		var err error
		if plat, err = platform.Load(a.config.PlatformPath); err != nil {
			return err
		}
	}
	a.logger.Debug("Platform description resolved.", "platform", plat.Name, "page_sizes", plat.PageSizes)

	reg, errs := sdf.LoadRegistry(ctx, a.config.InputPath, plat)
	if len(errs) > 0 {
		a.reportErrors(errs)
		return ErrReported
	}
	a.logger.Debug("Registry built and validated.", "registry", reg.DebugString())

	if a.config.Target == "" {
		// Nothing to generate: the invocation was an error check, and the
		// description passed.
		a.logger.Info("System description is valid.", "input", a.config.InputPath)
		return nil
	}

	target, err := reg.FindDomain(a.config.Target)
	if err != nil {
		var notFound *registry.DomainNotFoundError
		if errors.As(err, &notFound) {
			a.reportTargetNotFound(notFound)
			return ErrReported
		}
		return err
	}

	api := codegen.Generate(reg, target)

	if a.config.OutputC == "" && a.config.OutputInterface == "" && a.config.OutputModule == "" {
		fmt.Fprintln(a.errW, "[WARN] An API was generated but no output was requested.")
		return nil
	}

	outputs := []struct {
		path  string
		lines []string
	}{
		{a.config.OutputC, api.CLines},
		{a.config.OutputInterface, api.InterfaceLines},
		{a.config.OutputModule, api.ModuleLines},
	}
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		if err := writeLines(out.path, out.lines); err != nil {
			return err
		}
		a.logger.Debug("Wrote output file.", "path", out.path, "lines", len(out.lines))
	}
	return nil
}

// reportErrors renders a non-empty error list: the first error in full,
// then one-line summaries of the rest.
func (a *App) reportErrors(errs []sdf.Error) {
	fmt.Fprintln(a.errW, errs[0].Detail())
	others := errs[1:]
	switch {
	case len(others) > 1:
		fmt.Fprintln(a.errW, "Other errors were encountered:")
	case len(others) == 1:
		fmt.Fprintln(a.errW, "One other error was encountered:")
	}
	for _, e := range others {
		fmt.Fprintln(a.errW, "  "+e.Short())
	}
}

func (a *App) reportTargetNotFound(notFound *registry.DomainNotFoundError) {
	fmt.Fprintf(a.errW, "[ERROR] Target protection domain not found: '%s'.\n", notFound.Name)
	fmt.Fprintln(a.errW)
	fmt.Fprintln(a.errW, "The given SDF does not have a protection domain with this name.")
	quoted := make([]string, len(notFound.Suggestions))
	for i, s := range notFound.Suggestions {
		quoted[i] = "'" + s + "'"
	}
	fmt.Fprintf(a.errW, "Hint: Did you mean one of [%s]?\n", strings.Join(quoted, ", "))
}

func writeLines(path string, lines []string) error {
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
