package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tessera-mesh/tessera-go/pkg/attrib"
	"github.com/tessera-mesh/tessera-go/pkg/mesh"
	"github.com/tessera-mesh/tessera-go/pkg/meshio"
	"github.com/tessera-mesh/tessera-go/pkg/schema"
)

// repl is the interactive snapshot browser.
type repl struct {
	m       *mesh.Mesh
	summary *meshio.Summary
	path    string
	rl      *readline.Instance
}

// newREPL creates the interactive prompt for a decoded snapshot.
func newREPL(m *mesh.Mesh, summary *meshio.Summary, path string) (*repl, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tessera> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &repl{m: m, summary: summary, path: path, rl: rl}, nil
}

// run starts the interactive command loop.
func (r *repl) run() {
	defer r.rl.Close()

	r.printHelp()

	for {
		line, err := r.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(r.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			r.printHelp()

		case "info":
			printSummary(r.rl.Stdout(), r.path, r.summary)

		case "ls":
			r.cmdList()

		case "show":
			r.cmdShow(args)

		case "stat":
			r.cmdStat(args)

		case "schema":
			r.cmdSchema(args)

		case "quit", "exit", "q":
			fmt.Fprintln(r.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(r.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (r *repl) printHelp() {
	fmt.Fprintln(r.rl.Stdout(), `
Commands:
  info               - Reprint the snapshot summary
  ls                 - List attributes with their metadata
  show <name> [n]    - Print the first n rows of an attribute (default 10)
  stat <name>        - Per-channel min/max/mean of an attribute
  schema <manifest>  - Validate the mesh against a manifest file
  help               - Show this help
  exit               - Leave the prompt`)
}

// cmdList lists every attribute on the mesh, reserved ones included.
func (r *repl) cmdList() {
	w := r.rl.Stdout()
	names := r.m.AttributeNames()
	if len(names) == 0 {
		fmt.Fprintln(w, "No attributes")
		return
	}

	fmt.Fprintf(w, "%-24s %-8s %-12s %3s %-8s %8s\n", "Name", "Element", "Usage", "Ch", "Kind", "Rows")
	for _, name := range names {
		meta, err := r.m.AnyAttribute(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%-24s %-8s %-12s %3d %-8s %8d\n",
			name, meta.Element(), meta.Usage(), meta.NumChannels(), meta.Kind(), meta.NumElements())
	}
}

// cmdShow prints the leading rows of an attribute.
func (r *repl) cmdShow(args []string) {
	w := r.rl.Stdout()
	if len(args) < 1 {
		fmt.Fprintln(w, "Usage: show <name> [rows]")
		return
	}
	name := args[0]
	limit := 10
	if len(args) >= 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			fmt.Fprintf(w, "Invalid row count: %s\n", args[1])
			return
		}
		limit = n
	}

	if err := showRows(r, name, limit); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

// cmdStat prints per-channel statistics of an attribute.
func (r *repl) cmdStat(args []string) {
	w := r.rl.Stdout()
	if len(args) < 1 {
		fmt.Fprintln(w, "Usage: stat <name>")
		return
	}
	if err := statRows(r, args[0]); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

// cmdSchema validates the mesh against a manifest file.
func (r *repl) cmdSchema(args []string) {
	w := r.rl.Stdout()
	if len(args) < 1 {
		fmt.Fprintln(w, "Usage: schema <manifest.yaml>")
		return
	}
	mf, err := schema.ParseFile(args[0])
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	printViolations(w, mf, mf.Validate(r.m))
}

// showRows prints the leading value rows (and index rows for indexed
// attributes) of an attribute, dispatching on the stored value kind.
func showRows(r *repl, name string, limit int) error {
	meta, err := r.m.AnyAttribute(name)
	if err != nil {
		return err
	}
	switch meta.Kind() {
	case attrib.KindInt8:
		return showRowsAs[int8](r, name, limit)
	case attrib.KindInt16:
		return showRowsAs[int16](r, name, limit)
	case attrib.KindInt32:
		return showRowsAs[int32](r, name, limit)
	case attrib.KindInt64:
		return showRowsAs[int64](r, name, limit)
	case attrib.KindUint8:
		return showRowsAs[uint8](r, name, limit)
	case attrib.KindUint16:
		return showRowsAs[uint16](r, name, limit)
	case attrib.KindUint32:
		return showRowsAs[uint32](r, name, limit)
	case attrib.KindUint64:
		return showRowsAs[uint64](r, name, limit)
	case attrib.KindFloat32:
		return showRowsAs[float32](r, name, limit)
	case attrib.KindFloat64:
		return showRowsAs[float64](r, name, limit)
	default:
		return fmt.Errorf("unhandled value kind %v", meta.Kind())
	}
}

// statRows prints per-channel statistics of an attribute, dispatching
// on the stored value kind.
func statRows(r *repl, name string) error {
	meta, err := r.m.AnyAttribute(name)
	if err != nil {
		return err
	}
	switch meta.Kind() {
	case attrib.KindInt8:
		return statRowsAs[int8](r, name)
	case attrib.KindInt16:
		return statRowsAs[int16](r, name)
	case attrib.KindInt32:
		return statRowsAs[int32](r, name)
	case attrib.KindInt64:
		return statRowsAs[int64](r, name)
	case attrib.KindUint8:
		return statRowsAs[uint8](r, name)
	case attrib.KindUint16:
		return statRowsAs[uint16](r, name)
	case attrib.KindUint32:
		return statRowsAs[uint32](r, name)
	case attrib.KindUint64:
		return statRowsAs[uint64](r, name)
	case attrib.KindFloat32:
		return statRowsAs[float32](r, name)
	case attrib.KindFloat64:
		return statRowsAs[float64](r, name)
	default:
		return fmt.Errorf("unhandled value kind %v", meta.Kind())
	}
}

func showRowsAs[V attrib.Value](r *repl, name string, limit int) error {
	w := r.rl.Stdout()
	meta, err := r.m.AnyAttribute(name)
	if err != nil {
		return err
	}

	if meta.Element() == attrib.ElementIndexed {
		ia, err := mesh.GetIndexedAttribute[V](r.m, name)
		if err != nil {
			return err
		}
		printRows(w, "value", ia.Values().GetAll(), ia.Values().NumChannels(), limit)
		printRows(w, "corner", ia.Indices().GetAll(), 1, limit)
		return nil
	}

	a, err := mesh.GetAttribute[V](r.m, name)
	if err != nil {
		return err
	}
	printRows(w, strings.ToLower(meta.Element().String()), a.GetAll(), a.NumChannels(), limit)
	return nil
}

func statRowsAs[V attrib.Value](r *repl, name string) error {
	w := r.rl.Stdout()
	meta, err := r.m.AnyAttribute(name)
	if err != nil {
		return err
	}

	var values []V
	channels := meta.NumChannels()
	if meta.Element() == attrib.ElementIndexed {
		ia, err := mesh.GetIndexedAttribute[V](r.m, name)
		if err != nil {
			return err
		}
		values = ia.Values().GetAll()
	} else {
		a, err := mesh.GetAttribute[V](r.m, name)
		if err != nil {
			return err
		}
		values = a.GetAll()
	}

	if len(values) == 0 || channels < 1 {
		fmt.Fprintln(w, "No values")
		return nil
	}

	for c := 0; c < channels; c++ {
		mn := values[c]
		mx := values[c]
		var sum float64
		rows := 0
		for i := c; i < len(values); i += channels {
			v := values[i]
			if v < mn {
				mn = v
			}
			if v > mx {
				mx = v
			}
			sum += float64(v)
			rows++
		}
		fmt.Fprintf(w, "  channel %d: min %v  max %v  mean %.4g  (%d rows)\n",
			c, mn, mx, sum/float64(rows), rows)
	}
	return nil
}

// printRows prints up to limit rows of a channel-interleaved buffer.
func printRows[V attrib.Value](w io.Writer, label string, values []V, channels, limit int) {
	if channels < 1 {
		channels = 1
	}
	total := len(values) / channels
	n := min(total, limit)
	for i := 0; i < n; i++ {
		row := values[i*channels : (i+1)*channels]
		parts := make([]string, len(row))
		for j, v := range row {
			parts[j] = fmt.Sprintf("%v", v)
		}
		fmt.Fprintf(w, "  %s %4d: %s\n", label, i, strings.Join(parts, " "))
	}
	if total > n {
		fmt.Fprintf(w, "  ... %d more\n", total-n)
	}
}
