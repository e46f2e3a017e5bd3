package artifacts

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/steadifi/contract-harness/internal/domain/config"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// BuildScriptName is the script under the scripts directory that compiles
// the contracts into the artifacts directory.
const BuildScriptName = "build_release.sh"

// ScriptBuilder runs the project's release build script
type ScriptBuilder struct {
	log         *slog.Logger
	projectRoot string
	script      string
}

// NewScriptBuilder creates a builder for <scripts path>/build_release.sh
func NewScriptBuilder(cfg *config.RuntimeConfig, log *slog.Logger) *ScriptBuilder {
	scripts := cfg.ScriptsPath
	if !filepath.IsAbs(scripts) {
		scripts = filepath.Join(cfg.ProjectRoot, scripts)
	}
	return &ScriptBuilder{
		log:         log.With("component", "build"),
		projectRoot: cfg.ProjectRoot,
		script:      filepath.Join(scripts, BuildScriptName),
	}
}

// Script is the path of the build script
func (b *ScriptBuilder) Script() string {
	return b.script
}

// Build runs the script from the project root and streams its output to
// the logger. The script runs on a pseudo-terminal when one is available
// so compilers keep their progress output.
func (b *ScriptBuilder) Build(ctx context.Context) error {
	if _, err := os.Stat(b.script); err != nil {
		return fmt.Errorf("build script %s: %w", b.script, err)
	}

	start := time.Now()
	b.log.Info("running build script", "script", b.script)

	cmd := exec.CommandContext(ctx, b.script)
	cmd.Dir = b.projectRoot
	cmd.Env = os.Environ()

	output, err := b.start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start build script: %w", err)
	}

	var tail []string
	scanner := bufio.NewScanner(output)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		b.log.Debug(line)
		tail = append(tail, line)
		if len(tail) > 20 {
			tail = tail[1:]
		}
	}
	// the pty reports EIO once the child side closes
	if err := scanner.Err(); err != nil && !errors.Is(err, syscall.EIO) {
		b.log.Warn("failed to read build output", "error", err)
	}
	_ = output.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("build script failed: %w\nOutput: %s", err, strings.Join(tail, "\n"))
	}

	b.log.Info("build finished", "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func (b *ScriptBuilder) start(cmd *exec.Cmd) (io.ReadCloser, error) {
	ptyFile, err := pty.Start(cmd)
	if err == nil {
		return ptyFile, nil
	}
	b.log.Debug("pty unavailable, using pipes", "error", err)

	// pty.Start may have populated the stdio fields
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return stdout, nil
}

var _ usecase.ArtifactBuilder = (*ScriptBuilder)(nil)
