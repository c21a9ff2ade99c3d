package wasmhost

import (
	"context"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	omnibus "github.com/wippyai/ffi-omnibus"
	"github.com/wippyai/ffi-omnibus/ledger"
	"github.com/wippyai/ffi-omnibus/resource"
)

// guestAddr identifies owned text by the guest module and offset it was
// allocated at.
type guestAddr struct {
	module string
	ptr    uint32
}

func (a guestAddr) String() string {
	return fmt.Sprintf("%s@%#x", a.module, a.ptr)
}

// Host serves the catalogue to guests.
type Host struct {
	stdout  io.Writer
	logger  *zap.Logger
	metrics *ledger.Metrics
	texts   *ledger.Ledger[guestAddr]
	stores  *resource.Table[*omnibus.ZipCodeDatabase]
	name    string
}

// New creates a Host. Zero fields of opts take their DefaultOptions values.
func New(opts Options) (*Host, error) {
	opts = opts.withDefaults()

	m, err := ledger.NewMetrics(opts.Registerer, boundaryName)
	if err != nil {
		return nil, fmt.Errorf("wasmhost: register metrics: %w", err)
	}

	h := &Host{
		name:    opts.ModuleName,
		stdout:  opts.Stdout,
		logger:  opts.Logger.With(zap.String("module", opts.ModuleName)),
		metrics: m,
		texts:   ledger.New[guestAddr](boundaryName, m),
		stores:  resource.NewSequentialTable[*omnibus.ZipCodeDatabase](),
	}
	h.stores.Subscribe(resource.ObserverFunc(h.onStoreEvent))
	return h, nil
}

func (h *Host) onStoreEvent(e resource.Event) {
	switch e.Type {
	case resource.EventCreated:
		h.metrics.Acquired(ledger.KindStore)
		h.logger.Debug("store created", zap.Uint32("handle", uint32(e.Handle)))
	case resource.EventDropped:
		h.metrics.Released(ledger.KindStore)
		h.logger.Debug("store destroyed", zap.Uint32("handle", uint32(e.Handle)))
	}
}

// ModuleName returns the import module name guests must use.
func (h *Host) ModuleName() string {
	return h.name
}

// Metrics returns the host's allocation metrics.
func (h *Host) Metrics() *ledger.Metrics {
	return h.metrics
}

// Outstanding reports owned texts and stores handed to guests and not yet
// released.
func (h *Host) Outstanding() (textCount, storeCount int) {
	return h.texts.Live(), h.stores.Len()
}

// Instantiate registers the catalogue as a host module in rt.
func (h *Host) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(h.name)
	fns := h.functions()

	for _, sig := range catalogue {
		fn, ok := fns[sig.name]
		if !ok {
			return nil, fmt.Errorf("wasmhost: no implementation for %s", sig.name)
		}
		params, results, err := sig.coreTypes()
		if err != nil {
			return nil, fmt.Errorf("wasmhost: %w", err)
		}
		builder.NewFunctionBuilder().
			WithGoModuleFunction(fn, params, results).
			WithParameterNames(sig.paramNames()...).
			Export(sig.name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("wasmhost: instantiate %s: %w", h.name, err)
	}
	h.logger.Debug("host module instantiated", zap.Int("functions", len(catalogue)))
	return mod, nil
}

// Close destroys every live store. Owned text lives in guest memory and goes
// away with the guest.
func (h *Host) Close() error {
	return h.stores.Close()
}
