package ink

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ANSI styling for DumpHierarchy, enabled only when the destination is a
// real terminal.
const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[2m"
	ansiCyan   = "\x1b[36m"
	ansiYellow = "\x1b[33m"
)

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DumpHierarchy writes the same tree BuildStringOfHierarchy renders, but
// directly to w, colorized when w is a terminal.
func DumpHierarchy(w io.Writer, c *Container) {
	color := isTerminalWriter(w)
	var sb strings.Builder
	dumpContainerColor(&sb, c, 0, -1, color)
	fmt.Fprint(w, sb.String())
}

func dumpContainer(sb *strings.Builder, c *Container, depth, indexInParent int) {
	dumpContainerColor(sb, c, depth, indexInParent, false)
}

func dumpContainerColor(sb *strings.Builder, c *Container, depth, indexInParent int, color bool) {
	indent := strings.Repeat("  ", depth)
	label := c.name
	if label == "" && indexInParent >= 0 {
		label = fmt.Sprintf("#%d", indexInParent)
	}
	if color {
		sb.WriteString(indent + ansiDim + "[" + label + "]" + ansiReset + "\n")
	} else {
		sb.WriteString(indent + "[" + label + "]\n")
	}
	for i, child := range c.content {
		switch v := child.(type) {
		case *Container:
			dumpContainerColor(sb, v, depth+1, i, color)
		case *Divert:
			writeLeaf(sb, depth+1, i, "-> "+v.describeTarget(), color, ansiCyan)
		case *ChoicePoint:
			writeLeaf(sb, depth+1, i, "* "+v.pathOnChoice.String(), color, ansiYellow)
		default:
			writeLeaf(sb, depth+1, i, fmt.Sprint(child), color, "")
		}
	}
	for name, nc := range c.named {
		if cc, ok := nc.(*Container); ok {
			sb.WriteString(indent + "  " + "(" + name + ")\n")
			dumpContainerColor(sb, cc, depth+2, -1, color)
		}
	}
}

func writeLeaf(sb *strings.Builder, depth, index int, text string, color bool, code string) {
	indent := strings.Repeat("  ", depth)
	if color && code != "" {
		sb.WriteString(fmt.Sprintf("%s%d: %s%s%s\n", indent, index, code, text, ansiReset))
		return
	}
	sb.WriteString(fmt.Sprintf("%s%d: %s\n", indent, index, text))
}
