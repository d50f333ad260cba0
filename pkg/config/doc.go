// Package config resolves the termination hook configuration from the
// process environment.
//
// All settings live in one Config value built once at startup by New and
// passed explicitly to the resolver, classifier, capturer and store. Command
// line flags in pkg/cli override individual fields after New returns.
package config
