// Package compile runs the external document toolchain.
package compile

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Engine names a supported toolchain.
type Engine string

const (
	Typst   Engine = "typst"
	Latexmk Engine = "latexmk"
)

// Error carries the combined output of a failed toolchain run.
type Error struct {
	Tool   string
	Output string
	Err    error
}

func (e *Error) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, out)
}

func (e *Error) Unwrap() error { return e.Err }

// Options configure a Runner.
type Options struct {
	Engine Engine
	// Binary overrides the executable for the typst engine.
	Binary string
	// ContainerRuntime runs latexmk inside a texlive container.
	ContainerRuntime string
	// Root is the project root made visible to the toolchain.
	Root    string
	Verbose bool
}

// Runner compiles source files into PDF artifacts.
type Runner struct {
	opts Options
}

// New returns a Runner. Empty options fall back to typst and podman.
func New(opts Options) *Runner {
	if opts.Engine == "" {
		opts.Engine = Typst
	}
	if opts.ContainerRuntime == "" {
		opts.ContainerRuntime = "podman"
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	return &Runner{opts: opts}
}

// SourceExt is the file extension the engine compiles.
func (r *Runner) SourceExt() string {
	if r.opts.Engine == Latexmk {
		return ".tex"
	}
	return ".typ"
}

// Command returns the argv that compiles source into outDir.
func (r *Runner) Command(source, outDir string) []string {
	switch r.opts.Engine {
	case Latexmk:
		root, _ := filepath.Abs(r.opts.Root)
		quiet := "-quiet"
		if r.opts.Verbose {
			quiet = "-verbose"
		}
		return []string{
			r.opts.ContainerRuntime, "run", "--rm",
			"-v", root + ":/app:z",
			"-w", "/app",
			"--userns", fmt.Sprintf("keep-id:uid=%d,gid=%d", os.Getuid(), os.Getgid()),
			"texlive/texlive:latest-full",
			"latexmk",
			"-output-directory=" + outDir,
			"-pdf",
			quiet,
			source,
		}
	default:
		bin := r.opts.Binary
		if bin == "" {
			bin = string(Typst)
		}
		return []string{bin, "compile", "--root", r.opts.Root, source, Artifact(source, outDir)}
	}
}

// Artifact is the PDF path produced for source in outDir.
func Artifact(source, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(outDir, base+".pdf")
}

// Compile runs the toolchain and returns the artifact path.
func (r *Runner) Compile(ctx context.Context, source, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	argv := r.Command(source, outDir)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", &Error{Tool: argv[0], Output: string(out), Err: err}
	}

	artifact := Artifact(source, outDir)
	if _, err := os.Stat(artifact); err != nil {
		return "", &Error{Tool: argv[0], Output: string(out), Err: fmt.Errorf("artifact %s missing: %w", artifact, err)}
	}
	return artifact, nil
}
