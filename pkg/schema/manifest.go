package schema

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tessera-mesh/tessera-go/pkg/attrib"
)

// Manifest declares the attribute complement a mesh is expected to
// carry. Asset pipelines parse one per mesh class and run Validate
// against every mesh passing through.
type Manifest struct {
	// Name identifies the manifest, for reporting only.
	Name string

	// Strict causes Validate to also flag mesh attributes the manifest
	// does not declare.
	Strict bool

	// Entries lists the declared attributes in file order.
	Entries []Entry

	// SourceFile is the path the manifest was loaded from, if any.
	SourceFile string
}

// Entry is a single declared attribute. Element, usage, channels and
// kind are each optional in the manifest; an omitted field is not
// checked against the mesh.
type Entry struct {
	Name string

	// Element is zero when the manifest does not declare one.
	Element attrib.Element

	Usage    attrib.Usage
	HasUsage bool

	// NumChannels is zero when the manifest does not declare one.
	NumChannels int

	Kind    attrib.ValueKind
	HasKind bool

	// Optional entries are only checked when the attribute is present.
	Optional bool

	// Line is the source line of the entry in the manifest file.
	Line int
}

// yamlManifest mirrors the YAML structure of a manifest file.
type yamlManifest struct {
	Name       string          `yaml:"name"`
	Strict     bool            `yaml:"strict"`
	Attributes []yamlAttribute `yaml:"attributes"`
}

type yamlAttribute struct {
	Name     string `yaml:"name"`
	Element  string `yaml:"element"`
	Usage    string `yaml:"usage"`
	Channels int    `yaml:"channels"`
	Kind     string `yaml:"kind"`
	Optional bool   `yaml:"optional"`
}

var elementNames = map[string]attrib.Element{
	"vertex":  attrib.ElementVertex,
	"facet":   attrib.ElementFacet,
	"edge":    attrib.ElementEdge,
	"corner":  attrib.ElementCorner,
	"value":   attrib.ElementValue,
	"indexed": attrib.ElementIndexed,
}

var usageNames = map[string]attrib.Usage{
	"vector":      attrib.UsageVector,
	"scalar":      attrib.UsageScalar,
	"normal":      attrib.UsageNormal,
	"tangent":     attrib.UsageTangent,
	"bitangent":   attrib.UsageBitangent,
	"color":       attrib.UsageColor,
	"uv":          attrib.UsageUV,
	"vertexindex": attrib.UsageVertexIndex,
	"facetindex":  attrib.UsageFacetIndex,
	"cornerindex": attrib.UsageCornerIndex,
	"edgeindex":   attrib.UsageEdgeIndex,
}

var kindNames = map[string]attrib.ValueKind{
	"int8":    attrib.KindInt8,
	"int16":   attrib.KindInt16,
	"int32":   attrib.KindInt32,
	"int64":   attrib.KindInt64,
	"uint8":   attrib.KindUint8,
	"uint16":  attrib.KindUint16,
	"uint32":  attrib.KindUint32,
	"uint64":  attrib.KindUint64,
	"float32": attrib.KindFloat32,
	"float64": attrib.KindFloat64,
}

// ParseFile parses a manifest from the filesystem.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	mf, err := ParseBytes(data)
	if err != nil {
		return nil, err
	}
	mf.SourceFile = path
	return mf, nil
}

// Parse parses a manifest from a reader.
func Parse(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses manifest data from a byte slice.
func ParseBytes(data []byte) (*Manifest, error) {
	var y yamlManifest
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("manifest parse error: %w", err)
	}

	// Second pass through yaml.Node to recover the source line of each
	// attribute entry for diagnostics.
	lines := entryLines(data)

	mf := &Manifest{Name: y.Name, Strict: y.Strict}
	declared := make(map[string]int)
	for i, a := range y.Attributes {
		line := 0
		if i < len(lines) {
			line = lines[i]
		}
		entry, err := parseEntry(a, line)
		if err != nil {
			if line > 0 {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			return nil, err
		}
		if prev, ok := declared[entry.Name]; ok {
			return nil, fmt.Errorf("line %d: attribute %q already declared on line %d", line, entry.Name, prev)
		}
		declared[entry.Name] = line
		mf.Entries = append(mf.Entries, entry)
	}
	return mf, nil
}

// entryLines returns the source line of every item under the attributes
// sequence, in file order.
func entryLines(data []byte) []int {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(doc.Content)-1; i += 2 {
		if doc.Content[i].Value != "attributes" {
			continue
		}
		seq := doc.Content[i+1]
		if seq.Kind != yaml.SequenceNode {
			return nil
		}
		lines := make([]int, 0, len(seq.Content))
		for _, item := range seq.Content {
			lines = append(lines, item.Line)
		}
		return lines
	}
	return nil
}

// parseEntry converts one YAML attribute declaration into an Entry.
func parseEntry(a yamlAttribute, line int) (Entry, error) {
	if a.Name == "" {
		return Entry{}, fmt.Errorf("attribute entry missing name")
	}
	if a.Channels < 0 {
		return Entry{}, fmt.Errorf("attribute %q: negative channel count %d", a.Name, a.Channels)
	}

	entry := Entry{
		Name:        a.Name,
		NumChannels: a.Channels,
		Optional:    a.Optional,
		Line:        line,
	}
	if a.Element != "" {
		el, ok := elementNames[strings.ToLower(a.Element)]
		if !ok {
			return Entry{}, fmt.Errorf("attribute %q: unknown element %q", a.Name, a.Element)
		}
		entry.Element = el
	}
	if a.Usage != "" {
		u, ok := usageNames[strings.ToLower(a.Usage)]
		if !ok {
			return Entry{}, fmt.Errorf("attribute %q: unknown usage %q", a.Name, a.Usage)
		}
		entry.Usage = u
		entry.HasUsage = true
	}
	if a.Kind != "" {
		k, ok := kindNames[strings.ToLower(a.Kind)]
		if !ok {
			return Entry{}, fmt.Errorf("attribute %q: unknown kind %q", a.Name, a.Kind)
		}
		entry.Kind = k
		entry.HasKind = true
	}
	return entry, nil
}
