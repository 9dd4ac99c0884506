// Package core holds numeric helpers and the stream configuration shared by
// the processors in this module.
package core
