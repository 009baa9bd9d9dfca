package attrib

import "fmt"

// Usage is a semantic tag describing how an attribute's channels are
// interpreted. It constrains the valid channel count and, for the index
// usages, the value type.
type Usage uint8

const (
	// UsageVector is a generic per-element vector of any channel count.
	UsageVector Usage = iota

	// UsageScalar is a single-channel quantity.
	UsageScalar

	// UsageNormal is a surface normal.
	UsageNormal

	// UsageTangent is a surface tangent.
	UsageTangent

	// UsageBitangent is a surface bitangent.
	UsageBitangent

	// UsageColor is a color with 1 to 4 channels.
	UsageColor

	// UsageUV is a two-channel texture coordinate.
	UsageUV

	// UsageVertexIndex references vertices.
	UsageVertexIndex

	// UsageFacetIndex references facets.
	UsageFacetIndex

	// UsageCornerIndex references corners.
	UsageCornerIndex

	// UsageEdgeIndex references edges.
	UsageEdgeIndex
)

// String returns the usage name.
func (u Usage) String() string {
	names := []string{
		"Vector", "Scalar", "Normal", "Tangent", "Bitangent",
		"Color", "UV", "VertexIndex", "FacetIndex", "CornerIndex",
		"EdgeIndex",
	}
	if int(u) < len(names) {
		return names[u]
	}
	return "UNKNOWN"
}

// IsIndexKind returns true for the four mesh-entity index usages.
func (u Usage) IsIndexKind() bool {
	switch u {
	case UsageVertexIndex, UsageFacetIndex, UsageCornerIndex, UsageEdgeIndex:
		return true
	default:
		return false
	}
}

// validateUsage checks the usage against the channel count and value kind.
func validateUsage(usage Usage, numChannels int, kind ValueKind) error {
	switch usage {
	case UsageVector, UsageNormal, UsageTangent, UsageBitangent:
		if numChannels < 1 {
			return fmt.Errorf("%w: %s usage needs at least one channel, got %d",
				ErrConfiguration, usage, numChannels)
		}
	case UsageScalar:
		if numChannels != 1 {
			return fmt.Errorf("%w: Scalar usage needs exactly one channel, got %d",
				ErrConfiguration, numChannels)
		}
	case UsageColor:
		if numChannels < 1 || numChannels > 4 {
			return fmt.Errorf("%w: Color usage needs 1 to 4 channels, got %d",
				ErrConfiguration, numChannels)
		}
	case UsageUV:
		if numChannels != 2 {
			return fmt.Errorf("%w: UV usage needs exactly 2 channels, got %d",
				ErrConfiguration, numChannels)
		}
	case UsageVertexIndex, UsageFacetIndex, UsageCornerIndex, UsageEdgeIndex:
		if numChannels != 1 {
			return fmt.Errorf("%w: %s usage needs exactly one channel, got %d",
				ErrConfiguration, usage, numChannels)
		}
		if !kind.IsIntegral() {
			return fmt.Errorf("%w: %s usage needs an integral value type, got %s",
				ErrConfiguration, usage, kind)
		}
	default:
		return fmt.Errorf("%w: unknown usage %d", ErrConfiguration, usage)
	}
	return nil
}
