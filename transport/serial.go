package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"go.bug.st/serial"
)

// Serial reads command frames from a serial port and dispatches them.
type Serial struct {
	device string
	baud   int
	log    zerolog.Logger
}

// NewSerial creates a serial command listener.
func NewSerial(device string, baud int, log zerolog.Logger) *Serial {
	return &Serial{device: device, baud: baud, log: log}
}

// Run opens the port and dispatches frames until the context is cancelled
// or the port fails.
func (s *Serial) Run(ctx context.Context, h Handler) error {
	port, err := serial.Open(s.device, &serial.Mode{BaudRate: s.baud})
	if err != nil {
		return fmt.Errorf("open serial %q: %w", s.device, err)
	}
	defer port.Close()

	// Unblock the read loop on cancellation.
	go func() {
		<-ctx.Done()
		port.Close()
	}()

	s.log.Info().Str("device", s.device).Int("baud", s.baud).Msg("serial command ingress up")

	reader := bufio.NewReader(port)
	for {
		msg, err := ReadMessage(reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("serial %q: %w", s.device, err)
		}
		if !h.HandleMessage(msg.Cmd, msg.Args) {
			s.log.Debug().Uint8("cmd", msg.Cmd).Msg("command rejected")
		}
	}
}
