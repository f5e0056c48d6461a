// Package ffmpeg locates the FFmpeg binary used for probing and transcoding.
// FFmpeg itself is an external collaborator: this package never interprets
// media, it only finds the executable.
package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"
)

// EnvPath is the environment variable that overrides FFmpeg resolution.
const EnvPath = "FFMPEG_PATH"

// Resolver finds the FFmpeg binary.
type Resolver struct {
	env      envProvider
	lookPath lookPathFn
}

// envProvider reads environment variables.
type envProvider interface {
	Getenv(key string) string
}

// lookPathFn searches for an executable in PATH.
type lookPathFn func(file string) (string, error)

// osEnvProvider implements envProvider using os.Getenv.
type osEnvProvider struct{}

func (osEnvProvider) Getenv(key string) string { return os.Getenv(key) }

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// WithLookPath sets the PATH lookup implementation.
func WithLookPath(fn lookPathFn) ResolverOption {
	return func(r *Resolver) { r.lookPath = fn }
}

// NewResolver creates a Resolver with production defaults.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		env:      osEnvProvider{},
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the path to the FFmpeg binary.
// Precedence: FFMPEG_PATH environment variable, then PATH lookup.
// Returns ErrNotFound if neither yields a usable binary.
func (r *Resolver) Resolve() (string, error) {
	if p := r.env.Getenv(EnvPath); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%s points to %q: %w", EnvPath, p, ErrNotFound)
		}
		return p, nil
	}

	p, err := r.lookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("install ffmpeg or set %s: %w", EnvPath, ErrNotFound)
	}
	return p, nil
}

// Resolve locates FFmpeg using the default resolver.
func Resolve() (string, error) {
	return NewResolver().Resolve()
}
