package mqtt

import "fmt"

// maxPayloadSize caps one command message. Gateway commands are a few
// hundred bytes; anything near this is a caller bug.
const maxPayloadSize = 1 << 20

// Publish sends payload on topic and waits for the broker acknowledgement
// that QoS requires. Command requests are never retained: a retained
// command would replay on every gateway reconnect.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := checkTopic(topic, qos); err != nil {
		return err
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	return await(c.client.Publish(topic, qos, retained, payload), defaultPublishTimeout, ErrPublishFailed)
}
