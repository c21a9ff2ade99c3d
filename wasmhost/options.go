package wasmhost

import (
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultModuleName is the import module guests use for the catalogue.
const DefaultModuleName = "omnibus"

const boundaryName = "wasm"

// Options configures a Host.
type Options struct {
	// Stdout receives emit_greeting output.
	Stdout io.Writer
	// Logger overrides the package logger when non-nil.
	Logger *zap.Logger
	// Registerer receives the allocation metrics when non-nil.
	Registerer prometheus.Registerer
	// ModuleName is the host module name guests import from.
	ModuleName string
}

// DefaultOptions returns options for a host named DefaultModuleName that
// prints to os.Stdout and records no metrics.
func DefaultOptions() Options {
	return Options{
		ModuleName: DefaultModuleName,
		Stdout:     os.Stdout,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ModuleName == "" {
		o.ModuleName = d.ModuleName
	}
	if o.Stdout == nil {
		o.Stdout = d.Stdout
	}
	if o.Logger == nil {
		o.Logger = Logger()
	}
	return o
}
