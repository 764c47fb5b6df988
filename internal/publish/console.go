package publish

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
)

// ConsolePublisher prints posts instead of sending them. Used by dry runs.
type ConsolePublisher struct {
	Out  io.Writer
	next atomic.Int64
}

var _ Publisher = (*ConsolePublisher)(nil)

func (p *ConsolePublisher) Publish(ctx context.Context, text string, image []byte) (string, error) {
	n := p.next.Add(1)
	fmt.Fprintf(p.Out, "--- dry-run post %d (%d image bytes) ---\n%s\n\n", n, len(image), text)
	return fmt.Sprintf("dry-run-%d", n), nil
}
