package integra

import (
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// ReconnectUnlimited, used as ClientOpts.Reconnect, means the reconnect
// loop never gives up. Zero means never retry.
const ReconnectUnlimited = -1

// ClientOpts configures one Client. Construct with DefaultClientOpts and
// override the fields that matter, or load a subset from an ini file with
// LoadINI.
//
// Grounded on original_source/satel_integra_api/client.py
// (IntegraClientOpts).
type ClientOpts struct {
	// Address is "host:port" for the tcp backend, or a device path for serial.
	Address string
	// Backend selects the pkg/transport backend: "tcp" or "serial".
	Backend string
	// BaudRate is used by the serial backend only.
	BaudRate int
	// IntegrationKey turns on encryption when non-empty.
	IntegrationKey string
	// UserCode is the default code used by control methods that don't
	// receive a per-call override.
	UserCode string
	// PrefixCode is prepended to UserCode on the wire (panel-wide access code).
	PrefixCode string

	ConnTimeout time.Duration
	RespTimeout time.Duration
	KeepAlive   time.Duration

	// Reconnect is the retry budget for the reconnect loop: negative means
	// unlimited, zero means don't retry, positive is a retry count.
	Reconnect int
}

// DefaultClientOpts returns the baseline options for address, with the
// reference implementation's defaults: a 5s connect/response timeout, a
// 10s keepalive, and unlimited reconnects.
func DefaultClientOpts(address string) ClientOpts {
	return ClientOpts{
		Address:     address,
		Backend:     "tcp",
		ConnTimeout: 5 * time.Second,
		RespTimeout: 5 * time.Second,
		KeepAlive:   10 * time.Second,
		Reconnect:   ReconnectUnlimited,
	}
}

// GetUserCode resolves the effective user code for one request: an
// explicit per-call override beats the configured default, and both are
// space-stripped before use.
func (o ClientOpts) GetUserCode(override string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	return strings.TrimSpace(o.UserCode)
}

// LoadINI reads the "integra" section of an ini file into a fresh
// ClientOpts (seeded with DefaultClientOpts("")); keys absent from the
// file leave the corresponding default untouched.
func LoadINI(path string) (*ClientOpts, error) {
	opts := DefaultClientOpts("")

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	sec := cfg.Section("integra")

	if v := sec.Key("address").String(); v != "" {
		opts.Address = v
	}
	if v := sec.Key("backend").String(); v != "" {
		opts.Backend = v
	}
	if v := sec.Key("integration_key").String(); v != "" {
		opts.IntegrationKey = v
	}
	if v := sec.Key("user_code").String(); v != "" {
		opts.UserCode = v
	}
	if v := sec.Key("prefix_code").String(); v != "" {
		opts.PrefixCode = v
	}
	if v, err := sec.Key("baud_rate").Int(); err == nil && v != 0 {
		opts.BaudRate = v
	}
	if v, err := sec.Key("conn_timeout_s").Float64(); err == nil && v != 0 {
		opts.ConnTimeout = time.Duration(v * float64(time.Second))
	}
	if v, err := sec.Key("resp_timeout_s").Float64(); err == nil && v != 0 {
		opts.RespTimeout = time.Duration(v * float64(time.Second))
	}
	if v, err := sec.Key("keep_alive_s").Float64(); err == nil && v != 0 {
		opts.KeepAlive = time.Duration(v * float64(time.Second))
	}
	if sec.HasKey("reconnect") {
		if v, err := sec.Key("reconnect").Int(); err == nil {
			opts.Reconnect = v
		}
	}

	return &opts, nil
}
