// Package startup handles environment-variable configuration loading and
// build information for the media catalog service.
package startup
