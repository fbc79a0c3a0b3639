package mqtt

import (
	"fmt"
	"strings"
)

// Huawei IoTDA device-side topic layout. The gateway firmware subscribes to
// command requests and answers on the matching response topic.
const (
	// TopicPrefixDevices is the base for all device topics.
	TopicPrefixDevices = "$oc/devices"

	// requestIDKey precedes the correlation id in command topics.
	requestIDKey = "request_id="
)

// Topics provides builders for device command topics.
//
//	topics := mqtt.Topics{}
//	req := topics.CommandRequest("Gateway_1", "a1b2")
//	// Returns: "$oc/devices/Gateway_1/sys/commands/request_id=a1b2"
type Topics struct{}

// CommandRequest returns the topic a command is delivered on.
//
// Example: $oc/devices/Gateway_1/sys/commands/request_id=a1b2
func (Topics) CommandRequest(deviceID, requestID string) string {
	return fmt.Sprintf("%s/%s/sys/commands/%s%s", TopicPrefixDevices, deviceID, requestIDKey, requestID)
}

// CommandResponse returns the topic a device answers a command on.
//
// Example: $oc/devices/Gateway_1/sys/commands/response/request_id=a1b2
func (Topics) CommandResponse(deviceID, requestID string) string {
	return fmt.Sprintf("%s/%s/sys/commands/response/%s%s", TopicPrefixDevices, deviceID, requestIDKey, requestID)
}

// AllCommandResponses returns a wildcard matching every command response of a device.
//
// Example: $oc/devices/Gateway_1/sys/commands/response/+
func (Topics) AllCommandResponses(deviceID string) string {
	return fmt.Sprintf("%s/%s/sys/commands/response/+", TopicPrefixDevices, deviceID)
}

// RequestID extracts the correlation id from a command request or response topic.
// The boolean is false when the topic carries no request_id segment.
func (Topics) RequestID(topic string) (string, bool) {
	idx := strings.LastIndex(topic, "/"+requestIDKey)
	if idx < 0 {
		return "", false
	}
	id := topic[idx+len(requestIDKey)+1:]
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
