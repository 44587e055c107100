package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tkjaer/rtlookup/internal/shared"
)

// TextOutput prints a human readable block per lookup
type TextOutput struct {
	mu sync.Mutex
	w  io.Writer
	n  int
}

func NewTextOutput(w io.Writer) *TextOutput {
	if w == nil {
		w = os.Stdout
	}
	return &TextOutput{w: w}
}

func (t *TextOutput) CompleteLookup(rec *shared.LookupRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// blank line between results in batch mode
	if t.n > 0 {
		fmt.Fprintln(t.w)
	}
	t.n++

	fmt.Fprintf(t.w, "Destination IP: %s\n", rec.DestinationIP)
	fmt.Fprintf(t.w, "Matched network: %s\n", rec.MatchedPrefix())
	fmt.Fprintf(t.w, "Egress interface: %d\n", rec.Interface)
	fmt.Fprintf(t.w, "Prefix applied: %d bits\n", rec.PrefixLen)
	if !rec.Matched {
		fmt.Fprintln(t.w, "Note: no route matched, using default interface")
	}
	if rec.KernelInterface != "" {
		fmt.Fprintf(t.w, "Kernel interface: %s (index %d)\n", rec.KernelInterface, rec.KernelIfIndex)
	}
}

func (t *TextOutput) Close() error {
	return nil
}
