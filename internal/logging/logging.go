// Package logging builds the process logger. Handlers and services receive
// the *zap.Logger through their constructors rather than a package global.
package logging

import "go.uber.org/zap"

// New returns a production logger, or a human-readable development logger
// when debug is set.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
