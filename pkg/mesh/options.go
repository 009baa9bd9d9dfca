package mesh

import (
	"github.com/tessera-mesh/tessera-go/pkg/attrib"
	"github.com/tessera-mesh/tessera-go/pkg/log"
)

type config struct {
	dim    int
	logger log.Logger
}

func defaultConfig() config {
	return config{
		dim:    3,
		logger: log.NoopLogger{},
	}
}

// Option configures a mesh at construction.
type Option func(*config)

// WithDimension sets the vertex coordinate dimension. The default is 3.
func WithDimension(dim int) Option {
	return func(c *config) {
		c.dim = dim
	}
}

// WithLogger directs mesh events to l: registry changes, policy
// fallbacks on attribute buffers, scans, and surfaced errors. Events
// are stamped with the mesh id before delivery.
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

type createConfig struct {
	initialValues  any
	initialIndices []attrib.Index
	defaultValue   any
	growthPolicy   attrib.GrowthPolicy
	shrinkPolicy   attrib.ShrinkPolicy
	writePolicy    attrib.WritePolicy
	copyPolicy     attrib.CopyPolicy
	reservedOK     bool
}

// CreateOption configures one CreateAttribute call.
type CreateOption func(*createConfig)

// WithInitialValues seeds the new attribute with values, which must be
// a []V matching the attribute's value type. Non-indexed attributes
// need exactly count*channels values for their element kind;
// Value-element attributes and indexed value buffers accept any whole
// number of rows.
func WithInitialValues(values any) CreateOption {
	return func(c *createConfig) {
		c.initialValues = values
	}
}

// WithInitialIndices seeds an indexed attribute's index buffer. The
// length must equal the mesh's corner count.
func WithInitialIndices(indices []attrib.Index) CreateOption {
	return func(c *createConfig) {
		c.initialIndices = indices
	}
}

// WithDefaultValue sets the fill value for rows added by topology
// growth. The value must have the attribute's value type.
func WithDefaultValue(v any) CreateOption {
	return func(c *createConfig) {
		c.defaultValue = v
	}
}

// WithGrowthPolicy sets how the attribute reacts when topology growth
// reaches an external buffer.
func WithGrowthPolicy(p attrib.GrowthPolicy) CreateOption {
	return func(c *createConfig) {
		c.growthPolicy = p
	}
}

// WithShrinkPolicy sets how the attribute reacts when shrink-to-fit
// reaches an external buffer.
func WithShrinkPolicy(p attrib.ShrinkPolicy) CreateOption {
	return func(c *createConfig) {
		c.shrinkPolicy = p
	}
}

// WithWritePolicy sets how the attribute reacts to writes on a
// read-only buffer.
func WithWritePolicy(p attrib.WritePolicy) CreateOption {
	return func(c *createConfig) {
		c.writePolicy = p
	}
}

// WithCopyPolicy sets how the attribute's external buffer is treated on
// copy-on-write forks and duplication.
func WithCopyPolicy(p attrib.CopyPolicy) CreateOption {
	return func(c *createConfig) {
		c.copyPolicy = p
	}
}

// WithReservedName permits a "$"-prefixed attribute name. The mesh uses
// this for its own topology channels.
func WithReservedName() CreateOption {
	return func(c *createConfig) {
		c.reservedOK = true
	}
}
