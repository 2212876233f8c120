package media

import (
	"context"
	"os"
	"os/exec"
)

// commandRunner executes external commands.
type commandRunner interface {
	// Output runs the command and returns its stdout.
	Output(ctx context.Context, name string, args []string) ([]byte, error)
	// CombinedOutput runs the command and returns stdout and stderr interleaved.
	CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error)
}

// fileStatter retrieves file information.
type fileStatter interface {
	Stat(name string) (os.FileInfo, error)
}

// envProvider abstracts environment and executable lookup.
type envProvider interface {
	Getenv(key string) string
	LookPath(file string) (string, error)
	Getwd() (string, error)
	UserHomeDir() (string, error)
}

// --- Default implementations using real OS functions ---

// osCommandRunner implements commandRunner using exec.CommandContext.
type osCommandRunner struct{}

func (osCommandRunner) Output(ctx context.Context, name string, args []string) ([]byte, error) {
	// #nosec G204 -- name and args are built by this package, not user input
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

func (osCommandRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	// #nosec G204 -- name and args are built by this package, not user input
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// osFileStatter implements fileStatter using os.Stat.
type osFileStatter struct{}

func (osFileStatter) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// osEnvProvider implements envProvider using os and exec packages.
type osEnvProvider struct{}

func (osEnvProvider) Getenv(key string) string {
	return os.Getenv(key)
}

func (osEnvProvider) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osEnvProvider) Getwd() (string, error) {
	return os.Getwd()
}

func (osEnvProvider) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}
