// Package mqtt provides MQTT client connectivity for the direct-broker transport.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support, restored after reconnect
//   - Builders for the Huawei IoTDA device command topics
//
// # Architecture
//
// With dispatch.transport set to "mqtt" the bridge bypasses the cloud API and
// talks to the gateway over the same topics the cloud would use:
//
//	Bridge → $oc/devices/{id}/sys/commands/request_id={rid} → Gateway
//	Bridge ← $oc/devices/{id}/sys/commands/response/request_id={rid} ← Gateway
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.CommandRequest("Gateway_1", requestID)
//	client.Publish(topic, payload, 1, false)
package mqtt
