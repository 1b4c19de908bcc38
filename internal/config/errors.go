package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrEmptyTokenSigningKey error if config token.signingkey is empty.
	ErrEmptyTokenSigningKey = errors.New("toml config token.signingkey can not be empty")

	// ErrEmptySiteDomain error if config site.domain is empty.
	ErrEmptySiteDomain = errors.New("toml config site.domain can not be empty")
)
