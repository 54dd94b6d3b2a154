package exchange

import (
	"context"
	"errors"
	"fmt"
	"net"

	"cryptofolio/internal/application"
)

// APIError is a non-2xx response carrying the provider's error body.
type APIError struct {
	Exchange string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s http %d: %s", e.Exchange, e.Status, e.Message)
}

// ClassifyTransportError distinguishes a deadline abort from a plain network
// failure so the caller can surface them as different kinds.
func ClassifyTransportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", application.ErrRequestTimeout, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", application.ErrRequestTimeout, err)
	}
	return err
}
