// Package api implements the HTTP facade of the command bridge.
//
// This package provides:
//   - Fixed control routes that map one URL to one device command
//   - Speed routes that forward a path segment as the command parameter
//   - Health and Prometheus metrics endpoints
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// The facade sits between the farm web front-end and the command dispatcher.
// A request is translated into a command.Command, dispatched with a bounded
// wait, and the tagged outcome is rendered as {"status","message"}:
//
//	┌──────────────┐   HTTP   ┌─────────────┐  Dispatch  ┌────────────┐
//	│ Web front-end│ ───────► │ api.Server  │ ─────────► │ Dispatcher │ ──► IoTDA / MQTT
//	└──────────────┘ ◄─────── └─────────────┘ ◄───────── └────────────┘
//	                 200 JSON                   Outcome
//
// # Compatibility
//
// Every facade response is HTTP 200, including failures; the front-end reads
// the "status" field. Preflight OPTIONS requests are answered by the CORS
// middleware with HTTP 200 and an empty body on any path, and never reach a
// handler.
package api
