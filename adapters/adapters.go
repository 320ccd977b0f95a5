package adapters

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

var (
	errNoValidTypeAliases   = errors.New("no valid type aliases provided")
	ErrUnsupportedTypeAlias = errors.New("no adapter registered for provided type alias")
	ErrMissingTable         = errors.New("no table provided")
)

// adapterFunc lets plain functions act as adapters.
type adapterFunc func(params *core.EndpointParams) (core.Endpoint, error)

func (f adapterFunc) Connect(params *core.EndpointParams) (core.Endpoint, error) {
	return f(params)
}

var (
	// registeredAdapters holds implemented adapters - specific adapters register themselves in their init functions.
	// The main reason is to be able to compile the binary without unsupported os/arch of specific drivers.
	registeredAdapters   = make(map[string]core.Adapter)
	registeredAdaptersMu sync.RWMutex
)

// register registers a new adapter for specific endpoint types
func register(adapter core.Adapter, aliases ...string) error {
	if len(aliases) < 1 {
		return errNoValidTypeAliases
	}

	registeredAdaptersMu.Lock()
	defer registeredAdaptersMu.Unlock()

	invalidCount := 0
	for _, alias := range aliases {
		if alias == "" {
			invalidCount++
			continue
		}
		registeredAdapters[alias] = adapter
	}

	if invalidCount == len(aliases) {
		return errNoValidTypeAliases
	}

	return nil
}

// Mux is an interface to all internal adapters.
type Mux struct{}

func (*Mux) GetAdapter(typ string) (core.Adapter, error) {
	registeredAdaptersMu.RLock()
	defer registeredAdaptersMu.RUnlock()

	adapter, ok := registeredAdapters[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTypeAlias, typ)
	}

	return adapter, nil
}

func (*Mux) AddAdapter(typ string, adapter core.Adapter) error {
	return register(adapter, typ)
}

// Types lists every registered type alias.
func (*Mux) Types() []string {
	registeredAdaptersMu.RLock()
	defer registeredAdaptersMu.RUnlock()

	types := make([]string, 0, len(registeredAdapters))
	for typ := range registeredAdapters {
		types = append(types, typ)
	}
	return types
}

// NewEndpoint expands params and connects with the adapter registered for
// their type.
func NewEndpoint(params *core.EndpointParams) (core.Endpoint, error) {
	expanded := params.Expand()

	adapter, err := new(Mux).GetAdapter(expanded.Type)
	if err != nil {
		return nil, fmt.Errorf("Mux.GetAdapter: %w", err)
	}

	endpoint, err := adapter.Connect(expanded)
	if err != nil {
		return nil, fmt.Errorf("adapter.Connect: %w", err)
	}

	return endpoint, nil
}
