package addon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/sengled-bridge/internal/device"
)

// Default timeouts for registry operations.
const (
	defaultRequestTimeout = 10 * time.Second

	// maxResponseBytes bounds the registry response body. The add-on runs
	// on the same host, but a misconfigured endpoint should not be able to
	// exhaust memory.
	maxResponseBytes = 4 << 20
)

// Client talks to the Sengled add-on's HTTP device registry.
//
// The registry is the source of truth for which devices exist: it is queried
// once at startup and then polled on the configured refresh interval. The
// client performs no retries of its own; the caller decides how to react to
// ErrRegistryUnavailable.
//
// Thread Safety: All methods are safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a registry client for the add-on at baseURL
// (e.g. "http://192.168.1.10:54448").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// deviceRecord is the wire representation of one registry entry.
// The MAC address is the map key in the response, not a record field.
// Attribute values come over the wire as strings, numbers or booleans
// depending on the attribute; they are all normalised to strings.
type deviceRecord struct {
	Name            string         `json:"name"`
	Type            string         `json:"type"`
	Model           string         `json:"model"`
	FirmwareVersion string         `json:"firmware_version"`
	Capabilities    []string       `json:"capabilities"`
	Attributes      map[string]any `json:"attributes"`
	Online          bool           `json:"online"`
	RSSI            int            `json:"rssi"`
}

// devicesResponse is the envelope returned by GET /api/devices.
// Devices is keyed by MAC address.
type devicesResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Devices map[string]deviceRecord `json:"devices"`
}

// FetchDevices retrieves all known devices from the add-on registry.
//
// Records without a MAC address are skipped; every other record maps to
// exactly one descriptor. When the registry record does not list
// capabilities, the set implied by the device type is used.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - []device.Descriptor: One descriptor per valid registry record
//   - error: ErrRegistryUnavailable (wrapped) on any transport, status or
//     decode failure
func (c *Client) FetchDevices(ctx context.Context) ([]device.Descriptor, error) {
	var resp devicesResponse
	if err := c.getJSON(ctx, "/api/devices", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: registry rejected request: %s", ErrRegistryUnavailable, resp.Message)
	}

	descriptors := make([]device.Descriptor, 0, len(resp.Devices))
	for mac, record := range resp.Devices {
		if mac == "" {
			continue
		}
		descriptors = append(descriptors, record.toDescriptor(mac))
	}

	// Map iteration order is random; keep output deterministic
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].MAC < descriptors[j].MAC
	})
	return descriptors, nil
}

// FetchDevice retrieves a single device record by MAC address.
//
// Returns:
//   - *device.Descriptor: The matching descriptor
//   - error: ErrDeviceNotFound when the registry has no such MAC,
//     ErrRegistryUnavailable on transport or decode failure
func (c *Client) FetchDevice(ctx context.Context, mac string) (*device.Descriptor, error) {
	if mac == "" {
		return nil, device.ErrInvalidMAC
	}

	devices, err := c.FetchDevices(ctx)
	if err != nil {
		return nil, err
	}
	for i := range devices {
		if devices[i].MAC == mac {
			return &devices[i], nil
		}
	}
	return nil, ErrDeviceNotFound
}

// HealthCheck verifies the add-on registry is reachable.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if reachable, ErrRegistryUnavailable (wrapped) otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/devices", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegistryUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close()
	// Drain body to allow connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrRegistryUnavailable, resp.StatusCode)
	}
	return nil
}

// getJSON performs a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %w", ErrRegistryUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain body to allow connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status %d", ErrRegistryUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", ErrRegistryUnavailable, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", ErrRegistryUnavailable, err)
	}
	return nil
}

// toDescriptor maps a wire record to an in-memory descriptor.
func (r deviceRecord) toDescriptor(mac string) device.Descriptor {
	d := device.Descriptor{
		MAC:             mac,
		Name:            r.Name,
		Type:            device.DeviceType(r.Type),
		Model:           r.Model,
		FirmwareVersion: r.FirmwareVersion,
		Online:          r.Online,
		RSSI:            r.RSSI,
		Attributes:      make(device.Attributes, len(r.Attributes)),
	}

	if d.Name == "" {
		d.Name = mac
	}

	for k, v := range r.Attributes {
		d.Attributes[k] = attrString(v)
	}

	if len(r.Capabilities) > 0 {
		d.Capabilities = make([]device.Capability, 0, len(r.Capabilities))
		for _, cap := range r.Capabilities {
			d.Capabilities = append(d.Capabilities, device.Capability(cap))
		}
	} else {
		d.Capabilities = device.DefaultCapabilities(d.Type)
	}

	return d
}

// attrString normalises a JSON attribute value to the string form used on
// the MQTT wire.
func attrString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(val)
	}
}
