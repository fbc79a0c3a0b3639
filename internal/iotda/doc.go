// Package iotda sends device commands through the Huawei Cloud IoTDA
// application API.
//
// Commander implements command.Commander on top of the official Go SDK
// (CreateCommand, iotda v5). It authenticates with AK/SK credentials using
// the derived-credential predicate required by standard and enterprise
// IoTDA instances, and talks to the "application side" HTTPS endpoint
// shown on the instance overview page.
//
// Error mapping:
//   - Platform rejections (HTTP 4xx/5xx with an IoTDA error body) become
//     *command.RemoteError carrying the platform message verbatim
//   - SDK request timeouts are wrapped with command.ErrTransportTimeout
//   - Anything else is returned wrapped for the dispatcher to classify
//
// The SDK call does not accept a context. The dispatcher bounds the wait;
// a call that outlives it finishes in the background and its result is
// discarded.
package iotda
