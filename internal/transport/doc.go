// Package transport delivers packed frames to a serial line, a hex text
// stream or a raw binary file. Sinks are built by mode through a small
// registry so the CLI and the HTTP daemon pick destinations the same way.
package transport
