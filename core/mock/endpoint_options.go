package mock

import (
	"context"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

type endpointConfig struct {
	fetchSideEffect  func(context.Context, *core.FetchRequest) error
	createSideEffect func(context.Context, *core.Record) error
	updateSideEffect func(context.Context, *core.UpdateRequest) error
	totalOverride    func(int) int
	nextID           func() core.RecordID
}

type EndpointOption func(*endpointConfig)

// EndpointWithFetchSideEffect runs sideEffect before every fetch. An error
// returned from it fails the fetch.
func EndpointWithFetchSideEffect(sideEffect func(context.Context, *core.FetchRequest) error) EndpointOption {
	return func(c *endpointConfig) {
		c.fetchSideEffect = sideEffect
	}
}

func EndpointWithCreateSideEffect(sideEffect func(context.Context, *core.Record) error) EndpointOption {
	return func(c *endpointConfig) {
		c.createSideEffect = sideEffect
	}
}

func EndpointWithUpdateSideEffect(sideEffect func(context.Context, *core.UpdateRequest) error) EndpointOption {
	return func(c *endpointConfig) {
		c.updateSideEffect = sideEffect
	}
}

// EndpointWithTotal makes fetches report a different total than the
// number of matching records.
func EndpointWithTotal(fn func(matching int) int) EndpointOption {
	return func(c *endpointConfig) {
		c.totalOverride = fn
	}
}

func EndpointWithIDGenerator(fn func() core.RecordID) EndpointOption {
	return func(c *endpointConfig) {
		c.nextID = fn
	}
}
