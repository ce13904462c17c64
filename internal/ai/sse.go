package ai

import (
	"bufio"
	"bytes"
	"context"
	"io"
)

// maxSSELine bounds a single server-sent event line.
const maxSSELine = 1 << 20

// readSSE calls fn with the payload of every "data:" line until fn reports
// done, the body ends or ctx is cancelled.
func readSSE(ctx context.Context, body io.Reader, fn func(data []byte) (done bool, err error)) error {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxSSELine)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := sc.Bytes()
		data, ok := bytes.CutPrefix(line, []byte("data:"))
		if !ok {
			continue
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}
		done, err := fn(data)
		if err != nil || done {
			return err
		}
	}
	return sc.Err()
}

// streamBody runs readSSE in a goroutine and forwards chunks on a channel.
// The final chunk always has Done or Error set.
func streamBody(ctx context.Context, body io.ReadCloser, parse func(data []byte) (text string, done bool, err error)) <-chan StreamChunk {
	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		defer body.Close()

		send := func(c StreamChunk) bool {
			select {
			case ch <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}

		err := readSSE(ctx, body, func(data []byte) (bool, error) {
			text, done, err := parse(data)
			if err != nil {
				return true, err
			}
			if text != "" && !send(StreamChunk{Content: text}) {
				return true, ctx.Err()
			}
			return done, nil
		})
		if err != nil {
			send(StreamChunk{Error: err})
			return
		}
		send(StreamChunk{Done: true})
	}()
	return ch
}
