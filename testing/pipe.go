package testing

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const pipeBuffer = 64

// FrameRecord is one frame written to a simulated connection.
type FrameRecord struct {
	Size      int
	Timestamp int64
	Success   bool
	Error     error
}

// SimulatedConn is one end of an in-memory frame connection created by
// Pipe. It records every write for test verification.
type SimulatedConn struct {
	name string
	in   <-chan []byte
	out  chan<- []byte
	done chan struct{}
	once *sync.Once

	mu          sync.RWMutex
	deliveryLog []FrameRecord
}

// Pipe returns two connected ends. Closing either end closes both; frames
// already queued are still delivered before io.EOF.
func Pipe() (client, server *SimulatedConn) {
	a := make(chan []byte, pipeBuffer)
	b := make(chan []byte, pipeBuffer)
	done := make(chan struct{})
	once := &sync.Once{}

	logrus.WithFields(logrus.Fields{
		"function": "Pipe",
		"buffer":   pipeBuffer,
	}).Debug("Creating simulated frame connection")

	client = &SimulatedConn{name: "client", in: b, out: a, done: done, once: once}
	server = &SimulatedConn{name: "server", in: a, out: b, done: done, once: once}
	return client, server
}

// WriteFrame queues a copy of frame for the other end.
func (c *SimulatedConn) WriteFrame(ctx context.Context, frame []byte) error {
	buf := append([]byte(nil), frame...)

	var err error
	select {
	case <-c.done:
		err = io.ErrClosedPipe
	default:
		select {
		case c.out <- buf:
		case <-c.done:
			err = io.ErrClosedPipe
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	c.record(len(frame), err)
	return err
}

// ReadFrame returns the next queued frame, io.EOF once the pipe is closed
// and drained, or ctx.Err() when ctx ends first.
func (c *SimulatedConn) ReadFrame(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-c.in:
		return frame, nil
	default:
	}

	select {
	case frame := <-c.in:
		return frame, nil
	case <-c.done:
		select {
		case frame := <-c.in:
			return frame, nil
		default:
			return nil, io.EOF
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close closes both ends of the pipe.
func (c *SimulatedConn) Close() error {
	c.once.Do(func() {
		logrus.WithFields(logrus.Fields{
			"function": "SimulatedConn.Close",
			"end":      c.name,
		}).Debug("Closing simulated frame connection")
		close(c.done)
	})
	return nil
}

func (c *SimulatedConn) record(size int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveryLog = append(c.deliveryLog, FrameRecord{
		Size:      size,
		Timestamp: time.Now().UnixNano(),
		Success:   err == nil,
		Error:     err,
	})
}

// GetDeliveryLog returns a copy of the frames written by this end.
func (c *SimulatedConn) GetDeliveryLog() []FrameRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	log := make([]FrameRecord, len(c.deliveryLog))
	copy(log, c.deliveryLog)
	return log
}

// ClearDeliveryLog empties the write log.
func (c *SimulatedConn) ClearDeliveryLog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveryLog = nil
}

// GetStats summarises the write log.
func (c *SimulatedConn) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	successCount, failedCount, bytes := 0, 0, 0
	for _, record := range c.deliveryLog {
		if record.Success {
			successCount++
			bytes += record.Size
		} else {
			failedCount++
		}
	}

	return map[string]interface{}{
		"end":               c.name,
		"total_frames":      len(c.deliveryLog),
		"successful_frames": successCount,
		"failed_frames":     failedCount,
		"bytes_written":     bytes,
	}
}
