package diskutil

import "go.uber.org/zap"

var log = zap.NewNop()

// SetLogger installs the logger used by this package. The functions here
// never return errors to the caller; failures are absorbed into sentinel
// or zero results and reported through this logger instead. Defaults to a
// no-op logger until installed.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}
