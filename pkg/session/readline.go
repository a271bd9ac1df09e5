package session

import (
	"bufio"
	"context"
)

type lineResult struct {
	line []byte
	err  error
}

// ReadLine reads up to and including the next newline from r. It returns
// ctx.Err() as soon as ctx is done, even while the read is still blocked;
// the abandoned read's result is discarded and r must not be used again.
func ReadLine(ctx context.Context, r *bufio.Reader) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan lineResult, 1)
	go func() {
		line, err := r.ReadBytes('\n')
		done <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.line, res.err
	}
}
