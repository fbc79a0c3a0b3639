// Package devicemqtt delivers device commands straight to a gateway over MQTT,
// using the Huawei IoTDA device-side topic layout.
//
// It is the alternative to the cloud API transport in package iotda, for
// installations where the gateway connects to a local broker (or where the
// bridge shares a broker with the gateway during commissioning).
//
// # Message Flow
//
//	┌──────────────┐  $oc/devices/{gw}/sys/commands/request_id={id}   ┌─────────┐
//	│ Command      │ ───────────────────────────────────────────────► │ Gateway │
//	│ Bridge       │ ◄─────────────────────────────────────────────── │         │
//	└──────────────┘  .../sys/commands/response/request_id={id}       └─────────┘
//
// Each command gets a fresh request id (UUID). The Commander keeps a pending
// table keyed by request id and a single wildcard subscription on the
// gateway's response topics; a response is matched back to its waiter by the
// id in the topic.
//
// # Result Codes
//
// The gateway answers {"result_code":0} on success. Any non-zero result code
// is reported as a *command.RemoteError. No answer before the context ends is
// reported as command.ErrTransportTimeout.
//
// # Thread Safety
//
// All exported methods are safe for concurrent use from multiple goroutines.
package devicemqtt
