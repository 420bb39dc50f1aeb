// Package rlog decouples the resolver core from any concrete logging backend.
package rlog

import "github.com/sirupsen/logrus"

// Logger is the logging surface the resolver core depends on. It is
// intentionally narrow so callers can plug in logrus, a test spy, or nothing
// at all.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Nop discards every message. It is the default when no logger is configured.
type Nop struct{}

func (Nop) Debugf(string, ...interface{}) {}
func (Nop) Warnf(string, ...interface{})  {}

// Logrus adapts a *logrus.Logger (or *logrus.Entry) to Logger.
type Logrus struct {
	Entry *logrus.Entry
}

// NewLogrus wraps a *logrus.Logger for use as a resolver Logger.
func NewLogrus(l *logrus.Logger) Logrus {
	return Logrus{Entry: logrus.NewEntry(l)}
}

func (l Logrus) Debugf(format string, args ...interface{}) {
	l.Entry.Debugf(format, args...)
}

func (l Logrus) Warnf(format string, args ...interface{}) {
	l.Entry.Warnf(format, args...)
}
