package builders

import "strings"

type clientConfig struct {
	typeProcessors map[string]func(any) any
	idColumn       string
	newID          func() string
}

type ClientOption func(*clientConfig)

// WithCustomTypeProcessor converts values of columns with the given
// database type name before they are put into records.
func WithCustomTypeProcessor(typ string, fn func(any) any) ClientOption {
	return func(cc *clientConfig) {
		t := strings.ToLower(typ)
		_, ok := cc.typeProcessors[t]
		if ok {
			// processor already registered for this type
			return
		}

		cc.typeProcessors[t] = fn
	}
}

// WithIDColumn changes the identifier column, "id" by default.
func WithIDColumn(name string) ClientOption {
	return func(cc *clientConfig) {
		cc.idColumn = name
	}
}

// WithIDGenerator changes how identifiers of created records are made.
func WithIDGenerator(fn func() string) ClientOption {
	return func(cc *clientConfig) {
		cc.newID = fn
	}
}
