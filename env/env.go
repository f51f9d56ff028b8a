// Package env holds the process-level configuration of the runtime,
// populated from environment variables during bootstrap.
package env

import (
	"os"

	"github.com/mstoykov/envconfig"

	"go.quickrt.io/quickrt/lib/fsext"
)

// Options are the environment-controlled knobs of the module resolver.
type Options struct {
	// WorkDir is the process root entry-point resolution happens against;
	// defaults to the current working directory.
	WorkDir string `envconfig:"QUICKRT_WORKDIR"`
	// Platform picks platform-specific manifest entry points.
	Platform string `envconfig:"QUICKRT_PLATFORM" default:"node"`
	// LogLevel is the logrus level name for the runtime logger.
	LogLevel string `envconfig:"QUICKRT_LOG_LEVEL" default:"info"`
}

// ReadOptions reads Options from the environment.
func ReadOptions() (Options, error) {
	var opts Options
	if err := envconfig.Process("", &opts); err != nil {
		return opts, err
	}
	// an unset or relative WorkDir is anchored at the process working
	// directory
	wd, err := os.Getwd()
	if err != nil {
		return opts, err
	}
	opts.WorkDir = fsext.Abs(wd, opts.WorkDir)
	return opts, nil
}
