package iotda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/huaweicloud/huaweicloud-sdk-go-v3/core/auth"
	"github.com/huaweicloud/huaweicloud-sdk-go-v3/core/auth/basic"
	hwconfig "github.com/huaweicloud/huaweicloud-sdk-go-v3/core/config"
	"github.com/huaweicloud/huaweicloud-sdk-go-v3/core/region"
	iotdasdk "github.com/huaweicloud/huaweicloud-sdk-go-v3/services/iotda/v5"
	"github.com/huaweicloud/huaweicloud-sdk-go-v3/services/iotda/v5/model"

	"github.com/nerrad567/farm-command-bridge/internal/command"
	"github.com/nerrad567/farm-command-bridge/internal/infrastructure/config"
)

// deviceStatusOnline is the IoTDA status string of a connected device.
const deviceStatusOnline = "ONLINE"

// API is the subset of the IoTDA SDK client used by Commander.
// *iotdasdk.IoTDAClient satisfies it.
type API interface {
	CreateCommand(request *model.CreateCommandRequest) (*model.CreateCommandResponse, error)
	ShowDevice(request *model.ShowDeviceRequest) (*model.ShowDeviceResponse, error)
}

// Commander sends commands through the IoTDA application API.
//
// Thread Safety:
//   - Safe for concurrent use; the SDK client is shared by all workers.
type Commander struct {
	api        API
	deviceID   string
	instanceID string
}

// New builds an SDK client from cfg and wraps it in a Commander.
//
// Parameters:
//   - cfg: IoTDA section of config.yaml, credentials already resolved from env
//   - httpTimeout: per-request SDK timeout (connect + read)
//
// Returns:
//   - *Commander: Ready for use; no network traffic happens until the first command
//   - error: If credentials or endpoint are missing, or the SDK rejects the settings
func New(cfg config.IoTDAConfig, httpTimeout time.Duration) (*Commander, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	credBuilder := basic.NewCredentialsBuilder().
		WithAk(cfg.AccessKey).
		WithSk(cfg.SecretKey).
		WithDerivedPredicate(auth.GetDefaultDerivedPredicate())
	if cfg.ProjectID != "" {
		credBuilder = credBuilder.WithProjectId(cfg.ProjectID)
	}
	cred, err := credBuilder.SafeBuild()
	if err != nil {
		return nil, fmt.Errorf("building iotda credentials: %w", err)
	}

	httpConfig := hwconfig.DefaultHttpConfig()
	if httpTimeout > 0 {
		httpConfig = httpConfig.WithTimeout(httpTimeout)
	}

	hcClient, err := iotdasdk.IoTDAClientBuilder().
		WithRegion(region.NewRegion(cfg.RegionID, endpointURL(cfg.Endpoint))).
		WithCredential(cred).
		WithHttpConfig(httpConfig).
		SafeBuild()
	if err != nil {
		return nil, fmt.Errorf("building iotda client: %w", err)
	}

	return NewWithAPI(iotdasdk.NewIoTDAClient(hcClient), cfg.DeviceID, cfg.InstanceID), nil
}

// NewWithAPI wraps an existing API implementation.
// deviceID and instanceID are only used by HealthCheck; commands carry their own.
func NewWithAPI(api API, deviceID, instanceID string) *Commander {
	return &Commander{
		api:        api,
		deviceID:   deviceID,
		instanceID: instanceID,
	}
}

// SendCommand issues CreateCommand and waits for the synchronous device reply.
func (c *Commander) SendCommand(ctx context.Context, req command.Request) (*command.Response, error) {
	// The SDK cannot be interrupted once started, so only the queued case is checked.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := c.api.CreateCommand(buildCreateCommand(req))
	if err != nil {
		return nil, mapError(err)
	}

	out := &command.Response{}
	if resp != nil {
		if resp.CommandId != nil {
			out.CommandID = *resp.CommandId
		}
		if resp.Response != nil {
			out.Body = *resp.Response
		}
	}
	return out, nil
}

// HealthCheck queries the configured device and reports an error unless it is online.
func (c *Commander) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("iotda health check: %w", err)
	}

	req := &model.ShowDeviceRequest{DeviceId: c.deviceID}
	if c.instanceID != "" {
		req.InstanceId = stringPtr(c.instanceID)
	}

	resp, err := c.api.ShowDevice(req)
	if err != nil {
		return fmt.Errorf("iotda health check: %w", mapError(err))
	}
	if resp == nil || resp.Status == nil {
		return fmt.Errorf("iotda health check: device %s status unknown", c.deviceID)
	}
	if *resp.Status != deviceStatusOnline {
		return fmt.Errorf("iotda health check: device %s is %s", c.deviceID, *resp.Status)
	}
	return nil
}

func buildCreateCommand(req command.Request) *model.CreateCommandRequest {
	var paras interface{} = req.Parameters

	out := &model.CreateCommandRequest{
		DeviceId: req.DeviceID,
		Body: &model.DeviceCommandRequest{
			ServiceId:   stringPtr(req.ServiceID),
			CommandName: stringPtr(req.CommandName),
			Paras:       &paras,
		},
	}
	if req.InstanceID != "" {
		out.InstanceId = stringPtr(req.InstanceID)
	}
	return out
}

// endpointURL accepts the bare host shown in the console as well as a full URL.
func endpointURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "https://") || strings.HasPrefix(endpoint, "http://") {
		return endpoint
	}
	return "https://" + endpoint
}

func stringPtr(s string) *string {
	return &s
}
