package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"unicode/utf16"

	"golang.org/x/term"

	"github.com/wippyai/tracelog/activity"
	"github.com/wippyai/tracelog/field"
	"github.com/wippyai/tracelog/provider"
	"github.com/wippyai/tracelog/sink/memory"
	"github.com/wippyai/tracelog/writer"
)

func main() {
	var (
		capacity    = flag.Uint("capacity", 0, "Channel buffer capacity in bytes (0 = default)")
		count       = flag.Int("count", 20, "Number of demo events to emit")
		enable      = flag.String("enable", "", "Wire-name substring to enable (empty = all)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(uint32(*capacity), *enable); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(uint32(*capacity), *count, *enable); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(capacity uint32, count int, enable string) error {
	session := memory.NewSession(memory.Config{Capacity: capacity})
	demo, err := newDemo(session)
	if err != nil {
		return err
	}
	defer demo.close()

	session.Enable(enable)

	for i := 0; i < count; i++ {
		if err := demo.emit(i); err != nil {
			return fmt.Errorf("emit: %w", err)
		}
	}

	records := session.Records()
	fmt.Printf("Session: %d records, %d bytes\n\n", len(records), session.Used())
	for _, r := range records {
		fmt.Printf("  #%-3d %-40s %4d bytes  %s\n",
			r.EventID, r.WireName, len(r.Data), hexPreview(r.Data, 16))
	}
	return nil
}

func hexPreview(data []byte, max int) string {
	n := len(data)
	trunc := ""
	if n > max {
		n = max
		trunc = ".."
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%02x", data[i])
	}
	b.WriteString(trunc)
	return b.String()
}

// demo is a small instrumented application: one provider, three events,
// a request counter driving realistic field values.
type demo struct {
	prov    *provider.Provider
	start   *provider.Event
	request *provider.Event
	tick    *provider.Event
}

const (
	kwLifecycle = uint64(1) << 0
	kwRequests  = uint64(1) << 2
	kwInternal  = uint64(1) << 5
)

func newDemo(session *memory.Session) (*demo, error) {
	prov := provider.New("TraceViewDemo", session)
	d := &demo{
		prov: prov,
		start: prov.Define("Startup", provider.LevelInfo, kwLifecycle,
			field.Spec{Name: "version", Kind: field.KindString8},
			field.Spec{Name: "pid", Kind: field.KindUnsignedLE, Size: 4, Alignment: 4},
		),
		request: prov.Define("Request", provider.LevelInfo, kwRequests,
			field.Spec{Name: "path", Kind: field.KindStringUTF16},
			field.Spec{Name: "status", Kind: field.KindUnsignedLE, Size: 2, Alignment: 2},
			field.Spec{Name: "latency_us", Kind: field.KindUnsignedLE, Size: 8, Alignment: 8},
		),
		tick: prov.Define("WorkerTick", provider.LevelVerbose, kwInternal,
			field.Spec{Name: "queue_depth", Kind: field.KindUnsignedLE, Size: 4, Alignment: 4},
		),
	}
	if err := prov.Register(); err != nil {
		return nil, err
	}

	if err := writer.Write(d.start,
		field.String8("0.3.1"),
		field.Uint32(uint32(os.Getpid())),
	); err != nil {
		return nil, err
	}
	return d, nil
}

// emit writes one request record and, every fourth call, a worker tick,
// correlated under a fresh activity.
func (d *demo) emit(i int) error {
	id := activity.Create()
	opts := writer.Options{ActivityID: id}

	paths := []string{"/api/items", "/api/items/42", "/healthz", "/metrics"}
	status := uint16(200)
	if i%7 == 6 {
		status = 503
	}

	err := writer.WriteOpts(d.request, opts,
		field.StringUTF16(utf16.Encode([]rune(paths[i%len(paths)]))),
		field.Uint16(status),
		field.Uint64(uint64(100+i*37)),
	)
	if err != nil {
		return err
	}

	if i%4 == 0 {
		return writer.WriteOpts(d.tick, opts, field.Uint32(uint32(i/4)))
	}
	return nil
}

func (d *demo) close() {
	d.prov.Unregister()
}
