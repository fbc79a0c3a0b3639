package devicemqtt

// Wire formats of the IoTDA device command protocol.

// requestMessage is published to the gateway's command request topic.
type requestMessage struct {
	// ObjectDeviceID is the device the command targets. For a directly
	// connected device it equals the gateway id.
	ObjectDeviceID string         `json:"object_device_id,omitempty"`
	ServiceID      string         `json:"service_id"`
	CommandName    string         `json:"command_name"`
	Paras          map[string]any `json:"paras"`
}

// responseMessage is published by the gateway on the matching response topic.
type responseMessage struct {
	// ResultCode is 0 on success.
	ResultCode   int    `json:"result_code"`
	ResponseName string `json:"response_name,omitempty"`
	Paras        any    `json:"paras,omitempty"`
}
