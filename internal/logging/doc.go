// Package logging provides leveled logging for the media catalog.
//
// The log level is read once from the environment: DEBUG=true enables debug
// output, otherwise LOG_LEVEL selects one of debug, info, warn, or error
// (default info). Output goes through the standard library logger so it
// composes with whatever the process has configured.
package logging
