package logger

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned when Log.AppName is not set.
	ErrAppNameIsEmpty = errors.New("config Log.AppName cannot be empty")

	// ErrServiceNameIsEmpty is returned when Log.ServiceName is not set.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName cannot be empty")
)

// ErrorHandler reports zerolog write failures on stderr.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "zerolog: could not write event: %v\n", err)
}
