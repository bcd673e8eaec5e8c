package scout

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// LineStream iterates over a streaming response one line at a time. It is
// returned by operations such as Agent.Monitor that hold the connection
// open and emit newline-delimited records. Close must be called when the
// caller is done; Next returns io.EOF once the server closes the
// connection or the stream has been closed locally.
type LineStream struct {
	body   io.ReadCloser
	reader *bufio.Reader

	mu     sync.Mutex
	closed bool
}

func newLineStream(body io.ReadCloser) *LineStream {
	return &LineStream{body: body, reader: bufio.NewReader(body)}
}

// Next blocks until the next line arrives and returns it without the
// trailing newline. A final partial line is returned before io.EOF.
func (s *LineStream) Next() (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", io.EOF
	}
	s.mu.Unlock()
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close terminates the stream and releases the underlying connection.
// Close is idempotent.
func (s *LineStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
