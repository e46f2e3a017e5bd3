package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// NodeRenderer renders the managed node status
type NodeRenderer struct {
	out    io.Writer
	format Format
}

// NewNodeRenderer creates a new node renderer
func NewNodeRenderer(out io.Writer, format Format) *NodeRenderer {
	return &NodeRenderer{out: out, format: format}
}

// Render renders the node status
func (r *NodeRenderer) Render(status *usecase.NodeStatus) error {
	if done, err := writeStructured(r.out, r.format, status); done {
		return err
	}

	color.New(color.FgCyan, color.Bold).Fprintln(r.out, "📊 Local node status:")
	if !status.Running {
		color.New(color.FgRed).Fprintln(r.out, "Status: 🔴 Not running")
		color.New(color.FgHiBlack).Fprintf(r.out, "Log file: %s\n", status.LogFile)
		return nil
	}

	color.New(color.FgGreen).Fprintf(r.out, "Status: 🟢 Running (PID %d)\n", status.PID)
	color.New(color.FgBlue).Fprintf(r.out, "RPC URL: %s\n", status.RPCURL)
	color.New(color.FgYellow).Fprintf(r.out, "Log file: %s\n", status.LogFile)
	if status.RPCHealthy {
		fmt.Fprintln(r.out, successStyle.Sprint("RPC Health: ✅ Responding"))
	} else {
		fmt.Fprintln(r.out, errorStyle.Sprint("RPC Health: ❌ Not responding"))
	}
	return nil
}
