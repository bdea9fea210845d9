// Package api serves the syfohd HTTP surface: packing command lines into
// frames, optionally transmitting them, and decoding frames back into fields.
package api
