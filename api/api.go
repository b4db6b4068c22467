// Package api is the client for the pharmabi backend. Every response is
// wrapped in an Envelope; the Client methods unwrap it and return either the
// data or an Error whose message can be shown to the user as is.
package api

// DefaultURL is the backend used when no server is configured.
const DefaultURL = "http://localhost:5272/api"
