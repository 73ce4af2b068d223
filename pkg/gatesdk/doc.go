// Package gatesdk provides the wire types for the admission service's HTTP
// API and a typed client for calling it. The server's handlers marshal these
// same types, so client and server cannot drift apart silently.
package gatesdk
