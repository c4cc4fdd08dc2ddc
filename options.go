package lz4frame

import "github.com/sirupsen/logrus"

// options holds the resolved configuration for a Reader, built from the
// functional Option values passed to NewReader.
type options struct {
	verifyChecksum bool
	logger         *logrus.Logger
}

func defaultOptions() options {
	return options{
		verifyChecksum: true,
		logger:         logrus.StandardLogger(),
	}
}

// Option configures a Reader at construction time.
type Option func(*options)

// WithChecksumVerification enables or disables frame header checksum
// verification. It is enabled by default. Disabling it never disables
// parsing of the checksum byte itself — only the comparison against the
// computed XXH32 value.
func WithChecksumVerification(enabled bool) Option {
	return func(o *options) { o.verifyChecksum = enabled }
}

// WithLogger sets the logger used for the Reader's Debug-level diagnostic
// lines (frame/skip transitions, fast-path fallbacks). The default is
// logrus's standard logger, whose default level (Info) keeps these lines
// silent unless a caller raises verbosity.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.logger = l }
}
