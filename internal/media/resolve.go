package media

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Environment variables for explicit tool paths.
const (
	EnvFFmpegPath  = "FFMPEG_PATH"
	EnvFFprobePath = "FFPROBE_PATH"
)

// Resolver locates the ffmpeg and ffprobe executables.
//
// Precedence, first match wins:
//  1. Explicit path from FFMPEG_PATH / FFPROBE_PATH
//  2. Configured search directories (working directory, extra dirs)
//  3. System PATH
//  4. Common platform install locations
type Resolver struct {
	env       envProvider
	files     fileStatter
	extraDirs []string
	goos      string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverEnv sets the environment provider (for testing).
func WithResolverEnv(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// WithResolverStatter sets the file statter (for testing).
func WithResolverStatter(s fileStatter) ResolverOption {
	return func(r *Resolver) { r.files = s }
}

// WithSearchDirs adds directories searched before the system PATH.
func WithSearchDirs(dirs ...string) ResolverOption {
	return func(r *Resolver) { r.extraDirs = append(r.extraDirs, dirs...) }
}

// WithResolverPlatform sets the target OS (for testing cross-platform behavior).
func WithResolverPlatform(goos string) ResolverOption {
	return func(r *Resolver) { r.goos = goos }
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		env:   osEnvProvider{},
		files: osFileStatter{},
		goos:  runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FFmpeg returns the path to the ffmpeg executable.
func (r *Resolver) FFmpeg() (string, error) {
	return r.lookup(EnvFFmpegPath, "ffmpeg")
}

// FFprobe returns the path to the ffprobe executable.
func (r *Resolver) FFprobe() (string, error) {
	return r.lookup(EnvFFprobePath, "ffprobe")
}

// lookup resolves one tool following the documented precedence.
func (r *Resolver) lookup(envKey, name string) (string, error) {
	// 1. Explicit path via environment variable.
	// A set-but-invalid path is an error rather than a silent fallthrough,
	// so a typo does not quietly pick up a different binary.
	if envPath := r.env.Getenv(envKey); envPath != "" {
		if !r.isExecutable(envPath) {
			return "", fmt.Errorf("%w: %s is set to %q but no executable exists there",
				ErrToolUnavailable, envKey, envPath)
		}
		return envPath, nil
	}

	names := []string{name}
	if r.goos == "windows" {
		names = []string{name + ".exe", name}
	}

	// 2. Configured search directories.
	for _, dir := range r.searchDirs() {
		for _, n := range names {
			candidate := filepath.Join(dir, n)
			if r.isExecutable(candidate) {
				return candidate, nil
			}
		}
	}

	// 3. System PATH.
	for _, n := range names {
		if path, err := r.env.LookPath(n); err == nil {
			return path, nil
		}
	}

	// 4. Common platform install locations.
	for _, dir := range r.commonLocations() {
		for _, n := range names {
			candidate := filepath.Join(dir, n)
			if r.isExecutable(candidate) {
				return candidate, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s (install it or set %s)", ErrToolUnavailable, name, envKey)
}

// searchDirs returns the configured search directories, starting with the
// process working directory.
func (r *Resolver) searchDirs() []string {
	var dirs []string
	if wd, err := r.env.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	dirs = append(dirs, r.extraDirs...)
	return dirs
}

// commonLocations returns fixed install locations checked as a last resort.
func (r *Resolver) commonLocations() []string {
	var dirs []string
	if home, err := r.env.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, "ffmpeg", "bin"),
			filepath.Join(home, "bin"),
		)
	}
	if r.goos == "windows" {
		dirs = append(dirs, `C:\ffmpeg\bin`, `D:\ffmpeg\bin`)
	} else {
		dirs = append(dirs, "/usr/local/bin", "/usr/bin")
	}
	return dirs
}

// isExecutable reports whether path exists and is an executable regular file.
func (r *Resolver) isExecutable(path string) bool {
	info, err := r.files.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if r.goos == "windows" {
		return true // Windows has no executable bit; existence is enough.
	}
	return info.Mode().Perm()&0111 != 0
}

// Compile-time interface checks for the OS defaults.
var (
	_ envProvider = osEnvProvider{}
	_ fileStatter = osFileStatter{}
)
