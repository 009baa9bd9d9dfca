// Command tessera-inspect examines mesh snapshot and event log files.
//
// Usage:
//
//	tessera-inspect [flags] <file.tmesh>
//	tessera-inspect -log <file.tlog>
//
// Flags:
//
//	-i              Open an interactive prompt after printing the summary
//	-schema string  Validate the mesh against a manifest (exit 1 on errors)
//	-log            Treat the input as an event log and pretty-print it
//
// Examples:
//
//	# Print a snapshot summary
//	tessera-inspect character.tmesh
//
//	# Validate against a manifest
//	tessera-inspect -schema character.yaml character.tmesh
//
//	# Browse a snapshot interactively
//	tessera-inspect -i character.tmesh
//
//	# Pretty-print an event log
//	tessera-inspect -log session.tlog
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tessera-mesh/tessera-go/pkg/log"
	"github.com/tessera-mesh/tessera-go/pkg/mesh"
	"github.com/tessera-mesh/tessera-go/pkg/meshio"
	"github.com/tessera-mesh/tessera-go/pkg/schema"
)

const usage = `tessera-inspect - mesh snapshot and event log inspector

Usage:
  tessera-inspect [flags] <file.tmesh>
  tessera-inspect -log <file.tlog>

Flags:
  -i              Open an interactive prompt after printing the summary
  -schema FILE    Validate the mesh against a manifest (exit 1 on errors)
  -log            Treat the input as an event log and pretty-print it
`

func main() {
	interactive := flag.Bool("i", false, "Open an interactive prompt after printing the summary")
	logMode := flag.Bool("log", false, "Treat the input as an event log and pretty-print it")
	manifestPath := flag.String("schema", "", "Validate the mesh against a manifest (exit 1 on errors)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: input file required")
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	if *logMode {
		if err := printLog(os.Stdout, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	summary, err := meshio.DescribeFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printSummary(os.Stdout, path, &summary)

	if *manifestPath == "" && !*interactive {
		return
	}

	m, err := meshio.DecodeFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *manifestPath != "" {
		ok, err := runSchema(os.Stdout, m, *manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			os.Exit(1)
		}
	}

	if *interactive {
		r, err := newREPL(m, &summary, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		r.run()
	}
}

// printSummary prints the snapshot header and attribute table.
func printSummary(w io.Writer, path string, s *meshio.Summary) {
	fmt.Fprintf(w, "\nSnapshot: %s (format v%d)\n", path, s.Version)
	fmt.Fprintf(w, "Source mesh: %s\n", s.SourceID)
	fmt.Fprintf(w, "Dimension: %d\n", s.Dimension)
	fmt.Fprintf(w, "Vertices: %d   Facets: %d   Corners: %d\n", s.NumVertices, s.NumFacets, s.NumCorners)
	edges := "no"
	if s.HasEdges {
		edges = "yes"
	}
	fmt.Fprintf(w, "Edge connectivity: %s\n", edges)

	if len(s.Attributes) == 0 {
		fmt.Fprintln(w, "\nNo attributes")
	} else {
		fmt.Fprintf(w, "\nAttributes (%d):\n", len(s.Attributes))
		fmt.Fprintln(w, strings.Repeat("-", 72))
		fmt.Fprintf(w, "%-24s %-8s %-12s %3s %-8s %8s\n", "Name", "Element", "Usage", "Ch", "Kind", "Rows")
		fmt.Fprintln(w, strings.Repeat("-", 72))
		for _, a := range s.Attributes {
			fmt.Fprintf(w, "%-24s %-8s %-12s %3d %-8s %8d\n",
				a.Name, a.Element, a.Usage, a.NumChannels, a.Kind, a.NumValues)
		}
		fmt.Fprintln(w, strings.Repeat("-", 72))
	}

	if len(s.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped external attributes: %s\n", strings.Join(s.Skipped, ", "))
	}
	fmt.Fprintln(w)
}

// runSchema validates the mesh against a manifest file and reports the
// findings. Returns false when any finding is an error.
func runSchema(w io.Writer, m *mesh.Mesh, manifestPath string) (bool, error) {
	mf, err := schema.ParseFile(manifestPath)
	if err != nil {
		return false, err
	}
	violations := mf.Validate(m)
	printViolations(w, mf, violations)
	return !schema.HasErrors(violations), nil
}

// printViolations prints schema validation findings.
func printViolations(w io.Writer, mf *schema.Manifest, violations []schema.Violation) {
	label := mf.Name
	if label == "" {
		label = mf.SourceFile
	}
	if len(violations) == 0 {
		fmt.Fprintf(w, "Schema %s: OK\n", label)
		return
	}
	fmt.Fprintf(w, "Schema %s: %d finding(s)\n", label, len(violations))
	for _, v := range violations {
		fmt.Fprintf(w, "  %s\n", v)
	}
}

// printLog pretty-prints an event log file.
func printLog(w io.Writer, path string) error {
	r, err := log.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	count := 0
	for {
		event, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading event %d: %w", count, err)
		}
		fmt.Fprintln(w, formatEvent(event))
		count++
	}
	fmt.Fprintf(w, "%d event(s)\n", count)
	return nil
}

// formatEvent renders one log event as a single line.
func formatEvent(e log.Event) string {
	id := e.MeshID
	if len(id) > 8 {
		id = id[:8]
	}
	head := fmt.Sprintf("[%s] %-8s %-8s", e.Timestamp.Format("15:04:05.000"), e.Category, id)

	switch {
	case e.Policy != nil:
		p := e.Policy
		return fmt.Sprintf("%s %s %s on %s %s (%d elements)",
			head, p.Op, p.Policy, p.Element, p.Kind, p.Elements)
	case e.Registry != nil:
		r := e.Registry
		if r.NewName != "" {
			return fmt.Sprintf("%s %s %q -> %q (id %d)", head, r.Op, r.Name, r.NewName, r.ID)
		}
		meta := strings.TrimSpace(r.Element + " " + r.Kind)
		if meta != "" {
			return fmt.Sprintf("%s %s %q (id %d, %s)", head, r.Op, r.Name, r.ID, meta)
		}
		return fmt.Sprintf("%s %s %q (id %d)", head, r.Op, r.Name, r.ID)
	case e.Scan != nil:
		s := e.Scan
		return fmt.Sprintf("%s %s/%s mask %#04x visited %d in %s",
			head, s.Mode, s.Access, s.Mask, s.Visited, s.Duration)
	case e.Error != nil:
		d := e.Error
		if d.Attribute != "" {
			return fmt.Sprintf("%s %s: %s (attribute %q)", head, d.Op, d.Message, d.Attribute)
		}
		return fmt.Sprintf("%s %s: %s", head, d.Op, d.Message)
	default:
		return head
	}
}
