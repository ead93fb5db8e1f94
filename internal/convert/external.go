package convert

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/nucdata/nucdata/internal/domain"
)

// DefaultEngine is the converter executable looked up on PATH when none is
// configured. The engine owns everything this tool does not: ACE/ENDF
// parsing, the physics, and HDF5 serialization.
const DefaultEngine = "nucdata-engine"

// Ensure ExternalConverter implements domain.Converter
var _ domain.Converter = (*ExternalConverter)(nil)

// ExternalConverter drives the external conversion engine. Contract: the
// engine converts one source file into outDir and prints each produced
// HDF5 path on its own stdout line.
type ExternalConverter struct {
	command string
}

// NewExternalConverter creates a converter around the given executable,
// falling back to DefaultEngine when command is empty.
func NewExternalConverter(command string) *ExternalConverter {
	if command == "" {
		command = DefaultEngine
	}
	return &ExternalConverter{command: command}
}

// Check verifies the engine executable is on PATH.
func (c *ExternalConverter) Check(ctx context.Context) error {
	if _, err := exec.LookPath(c.command); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrConverterNotFound, c.command)
	}
	return nil
}

// Convert processes a single source file and returns produced file paths.
func (c *ExternalConverter) Convert(ctx context.Context, src, outDir string, opts domain.ConvertOptions) ([]string, error) {
	args := []string{
		"--format", string(opts.Format),
		"--particle", string(opts.Particle),
		"--output", outDir,
	}
	if opts.LibVer != "" {
		args = append(args, "--libver", opts.LibVer)
	}
	if len(opts.Temperatures) > 0 {
		temps := make([]string, len(opts.Temperatures))
		for i, t := range opts.Temperatures {
			temps[i] = strconv.FormatFloat(t, 'g', -1, 64)
		}
		args = append(args, "--temperatures", strings.Join(temps, ","))
	}
	args = append(args, src)

	cmd := exec.CommandContext(ctx, c.command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, &domain.ConversionError{File: src, Err: fmt.Errorf("%w: %s", domain.ErrConversionFailed, msg)}
	}

	var produced []string
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			produced = append(produced, line)
		}
	}
	if len(produced) == 0 {
		return nil, &domain.ConversionError{File: src, Err: fmt.Errorf("%w: engine produced no files", domain.ErrConversionFailed)}
	}
	return produced, nil
}
