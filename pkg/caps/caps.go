// Package caps holds the static per-panel-type capability table: the
// partition/zone/output/user counts a client needs to size its bitmask
// buffers and bound its bitfield decodes correctly.
//
// Grounded on original_source/satel_integra_api/base.py (IntegraCaps,
// IntegraMap.__MAP_INTEGRA_TYPE_TO_CAPS).
package caps

import "github.com/gosatel/integra/pkg/proto"

// Caps describes one panel type's object limits.
type Caps struct {
	PanelType        proto.PanelType
	Objects          int
	Parts            int
	Zones            int
	Outputs          int
	Timers           int
	Phones           int
	Manipulators     int
	Expanders        int
	ManipulatorBuses int
	ExpanderBuses    int
	Users            int
	Admins           int
	Masking          bool
}

// Doors reports the per-panel door-control channel count, which shares
// its capacity with the expander count on real hardware.
func (c Caps) Doors() int { return c.Expanders }

var table = map[proto.PanelType]Caps{
	proto.Integra24: {
		PanelType: proto.Integra24, Objects: 1, Parts: 4, Zones: 24, Outputs: 24, Timers: 16, Phones: 16,
		Manipulators: 4, Expanders: 32, ManipulatorBuses: 1, ExpanderBuses: 1, Users: 16, Admins: 1, Masking: false,
	},
	proto.Integra32: {
		PanelType: proto.Integra32, Objects: 4, Parts: 16, Zones: 32, Outputs: 32, Timers: 28, Phones: 16,
		Manipulators: 4, Expanders: 32, ManipulatorBuses: 1, ExpanderBuses: 1, Users: 64, Admins: 4, Masking: false,
	},
	proto.Integra64: {
		PanelType: proto.Integra64, Objects: 8, Parts: 32, Zones: 64, Outputs: 64, Timers: 64, Phones: 16,
		Manipulators: 8, Expanders: 64, ManipulatorBuses: 1, ExpanderBuses: 2, Users: 192, Admins: 8, Masking: false,
	},
	proto.Integra64Plus: {
		PanelType: proto.Integra64Plus, Objects: 8, Parts: 32, Zones: 64, Outputs: 64, Timers: 64, Phones: 16,
		Manipulators: 8, Expanders: 64, ManipulatorBuses: 1, ExpanderBuses: 2, Users: 192, Admins: 8, Masking: true,
	},
	proto.Integra128: {
		PanelType: proto.Integra128, Objects: 8, Parts: 32, Zones: 128, Outputs: 128, Timers: 64, Phones: 16,
		Manipulators: 8, Expanders: 64, ManipulatorBuses: 1, ExpanderBuses: 2, Users: 240, Admins: 8, Masking: false,
	},
	proto.Integra128Plus: {
		PanelType: proto.Integra128Plus, Objects: 8, Parts: 32, Zones: 128, Outputs: 128, Timers: 64, Phones: 16,
		Manipulators: 8, Expanders: 64, ManipulatorBuses: 1, ExpanderBuses: 2, Users: 240, Admins: 8, Masking: true,
	},
	proto.Integra128WrlLeon: {
		PanelType: proto.Integra128WrlLeon, Objects: 8, Parts: 32, Zones: 128, Outputs: 128, Timers: 64, Phones: 16,
		Manipulators: 8, Expanders: 32, ManipulatorBuses: 1, ExpanderBuses: 1, Users: 240, Admins: 8, Masking: false,
	},
	proto.Integra128WrlSim300: {
		PanelType: proto.Integra128WrlSim300, Objects: 8, Parts: 32, Zones: 128, Outputs: 128, Timers: 64, Phones: 16,
		Manipulators: 8, Expanders: 32, ManipulatorBuses: 1, ExpanderBuses: 1, Users: 240, Admins: 8, Masking: false,
	},
	proto.Integra256Plus: {
		PanelType: proto.Integra256Plus, Objects: 8, Parts: 32, Zones: 256, Outputs: 256, Timers: 64, Phones: 16,
		Manipulators: 8, Expanders: 64, ManipulatorBuses: 1, ExpanderBuses: 2, Users: 240, Admins: 8, Masking: true,
	},
	proto.IntegraUnknown: {PanelType: proto.IntegraUnknown},
}

// ForType returns the capability record for t, falling back to the
// all-zero IntegraUnknown record for any type this table doesn't carry
// (a panel generation newer than this table, or a corrupted version read).
func ForType(t proto.PanelType) Caps {
	if c, ok := table[t]; ok {
		return c
	}
	return table[proto.IntegraUnknown]
}
