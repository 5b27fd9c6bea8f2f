// Package render formats received MQTT messages for a terminal.
//
// Frames go to stdout while logging goes to stderr, so piped output stays
// clean message data.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// divider separates message frames, wide enough to stand out in a terminal.
var divider = strings.Repeat("=", 80)

// Renderer pretty-prints messages as framed blocks.
//
// Each message renders as a header (topic and local receive time) and the
// payload, indented when it is JSON and verbatim when it is not.
type Renderer struct {
	out io.Writer
	now func() time.Time

	// mu keeps a frame's lines together when handler goroutines overlap.
	mu sync.Mutex
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{
		out: out,
		now: time.Now,
	}
}

// OnMessage renders one received message. It satisfies the MQTT client's
// handler signature and never returns an error; a payload that is not JSON
// is printed raw rather than rejected.
func (r *Renderer) OnMessage(topic string, payload []byte) error {
	timestamp := r.now().Format("2006-01-02 15:04:05")

	var body bytes.Buffer
	if err := json.Indent(&body, payload, "", "  "); err != nil {
		body.Reset()
		body.Write(payload)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "\n%s\n", divider)
	fmt.Fprintf(r.out, "Topic: %s\n", topic)
	fmt.Fprintf(r.out, "Timestamp: %s\n", timestamp)
	fmt.Fprintf(r.out, "%s\n", divider)
	fmt.Fprintf(r.out, "%s\n", body.String())
	fmt.Fprintf(r.out, "%s\n\n", divider)

	return nil
}

// Banner prints the startup notice once the subscription is live.
func (r *Renderer) Banner(pattern string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "\nListening for messages on topic: %s\n", pattern)
	fmt.Fprintf(r.out, "Press Ctrl+C to exit\n\n")
}
