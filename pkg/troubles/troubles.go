// Package troubles decodes the eight READ_TROUBLES_PART* /
// READ_TROUBLES_MEMORY_PART* responses (component C8): each response is a
// flat byte string subdivided into fixed-offset regions, one per trouble
// source (zones, expanders, manipulators, radio, users, the system's own
// two trouble banks, or the built-in GSM/LTE module).
//
// Each bitmap-sourced region carries a ValueMap resolving a device's
// runtime type to the trouble flag its region raises (falling back to
// the region's OTHER entry via Region.Flag). Resolving a changed index
// to a device in the first place — the expander/manipulator/radio
// element registry (elements.py) — belongs to the higher-level object
// graph this module does not build; callers get per-region index
// deltas plus the flag lookup, and own the index-to-device mapping.
//
// Grounded on original_source/satel_integra_api/troubles.py.
package troubles

import (
	"github.com/gosatel/integra/pkg/diff"
	"github.com/gosatel/integra/pkg/proto"
)

// Source identifies what kind of device a trouble region reports on.
type Source int

const (
	SourceZones Source = iota
	SourceExpanders
	SourceManipulators
	SourceSystemMain
	SourceSystemOther
	SourceRadio
	SourceUsers
	SourceIntGSM
)

// bitmapSource reports whether regions of this source carry a per-index
// bitmap (and so go through the delta cache) rather than a flat bitflag
// word.
func (s Source) bitmapSource() bool {
	switch s {
	case SourceSystemMain, SourceSystemOther:
		return false
	default:
		return true
	}
}

// SystemMain is the bitflag set packed into the 3-byte SYSTEM_MAIN region
// of TROUBLES_PART1, read as a little-endian unsigned integer.
// NoVoltPhoneLine and AuxStmCpu share bit 0x010000 on real hardware (the
// panel repurposes the phone-line trouble bit for the STM auxiliary-CPU
// trouble on variants without a phone line).
type SystemMain uint32

const (
	SystemMainNone               SystemMain = 0
	SystemMainOut1               SystemMain = 0x000001
	SystemMainOut2               SystemMain = 0x000002
	SystemMainOut3               SystemMain = 0x000004
	SystemMainOut4               SystemMain = 0x000008
	SystemMainKpd                SystemMain = 0x000010
	SystemMainEx12               SystemMain = 0x000020
	SystemMainBatt               SystemMain = 0x000040
	SystemMainAC                 SystemMain = 0x000080
	SystemMainDT1                SystemMain = 0x000100
	SystemMainDT2                SystemMain = 0x000200
	SystemMainDTM                SystemMain = 0x000400
	SystemMainRTC                SystemMain = 0x000800
	SystemMainNoDTR              SystemMain = 0x001000
	SystemMainNoBatt             SystemMain = 0x002000
	SystemMainExtModemInit       SystemMain = 0x004000
	SystemMainExtModemCmd        SystemMain = 0x008000
	SystemMainNoVoltPhoneLine    SystemMain = 0x010000
	SystemMainAuxStmCPU          SystemMain = 0x010000
	SystemMainBadSignalPhoneLine SystemMain = 0x020000
	SystemMainNoSignalPhoneLine  SystemMain = 0x040000
	SystemMainMonSta1            SystemMain = 0x080000
	SystemMainMonSta2            SystemMain = 0x100000
	SystemMainEepromOrRtcAccess  SystemMain = 0x200000
	SystemMainRAMMemory          SystemMain = 0x400000
	SystemMainPanelRestartMem    SystemMain = 0x800000
)

// SystemOther is the bitflag set packed into the 1-byte SYSTEM_OTHER
// region of TROUBLES_PART1.
type SystemOther byte

const (
	SystemOtherNone           SystemOther = 0
	SystemOtherNoEthmConnSta1 SystemOther = 0x01
	SystemOtherNoEthmConnSta2 SystemOther = 0x02
	SystemOtherNoGprsConnSta1 SystemOther = 0x04
	SystemOtherNoGprsConnSta2 SystemOther = 0x08
	SystemOtherTimeServer     SystemOther = 0x10
	SystemOtherGsmInit        SystemOther = 0x20
	SystemOtherMonIPSta1      SystemOther = 0x40
	SystemOtherMonIPSta2      SystemOther = 0x80
)

// DeviceType indexes a Region's ValueMap. The concrete enumeration a value
// belongs to depends on the region's Source: expander hardware type for
// SourceExpanders, manipulator hardware type for SourceManipulators, zone
// reaction type for SourceZones, and the single OTHER key for
// SourceRadio/SourceUsers (those categories define no other device type).
type DeviceType int

// DeviceOther is the fallback key most per-region ValueMaps define (the
// manipulator regions P1_R6, P1_R7, P1_R8 and P4_R5 have none, so Flag
// reports ok=false there for unlisted types), mirroring elements.py's UNKNOWN/OTHER = 0 convention shared by every
// device-type enumeration (expander, manipulator, zone reaction, radio,
// user kind all start their numbering at 0 for "other/unspecified").
const DeviceOther DeviceType = 0

// Expander hardware types (elements.py IntegraExpanderType) referenced by
// the region value maps below.
const (
	ExpanderCA64DR DeviceType = 10
	ExpanderCA64SR DeviceType = 11
	ExpanderACU100 DeviceType = 12
	ExpanderINTTXM DeviceType = 22
	ExpanderINTKNX DeviceType = 24
)

// Manipulator hardware types (elements.py IntegraManipulatorType)
// referenced by the region value maps below.
const (
	ManipulatorINTPTSA DeviceType = 3
	ManipulatorINTRS   DeviceType = 4
	ManipulatorETHM1   DeviceType = 5
	ManipulatorINTKWRL DeviceType = 14
	ManipulatorINTGSM  DeviceType = 15
)

// ZoneFlag is the per-zone trouble flag set (troubles.py IntegraTroublesZone).
type ZoneFlag uint32

const (
	ZoneFlagNone            ZoneFlag = 0x00
	ZoneFlagTechnical       ZoneFlag = 0x01
	ZoneFlagTechnicalMemory ZoneFlag = 0x02
)

// ExpFlag is the per-expander trouble flag set (troubles.py IntegraTroublesExp).
type ExpFlag uint32

const (
	ExpFlagNone                           ExpFlag = 0x00000
	ExpFlagAC                             ExpFlag = 0x00001
	ExpFlagOutputOverload                 ExpFlag = 0x00002
	ExpFlagBatt                           ExpFlag = 0x00004
	ExpFlagNoBatt                         ExpFlag = 0x00008
	ExpFlagCardReaderHeadA                ExpFlag = 0x00010
	ExpFlagCardReaderHeadB                ExpFlag = 0x00020
	ExpFlagBusy                           ExpFlag = 0x00040
	ExpFlagACUSynchro                     ExpFlag = 0x00080
	ExpFlagNoKNXConn                      ExpFlag = 0x00100
	ExpFlagHighBattRes                    ExpFlag = 0x00200
	ExpFlagBattCharging                   ExpFlag = 0x00400
	ExpFlagSupplyOutputOverload           ExpFlag = 0x00800
	ExpFlagACUJammed                      ExpFlag = 0x01000
	ExpFlagAddressableZoneExpShortCircuit ExpFlag = 0x02000
	ExpFlagExpNoComm                      ExpFlag = 0x04000
	ExpFlagSubsted                        ExpFlag = 0x08000
	ExpFlagTamper                         ExpFlag = 0x10000
)

// ManFlag is the per-manipulator trouble flag set (troubles.py IntegraTroublesMan).
type ManFlag uint32

const (
	ManFlagNone        ManFlag = 0x0000
	ManFlagPing        ManFlag = 0x0001
	ManFlagAC          ManFlag = 0x0002
	ManFlagMacIDSrv    ManFlag = 0x0004
	ManFlagImeiIDSrv   ManFlag = 0x0008
	ManFlagBat1        ManFlag = 0x0010
	ManFlagBat2        ManFlag = 0x0020
	ManFlagBatt        ManFlag = 0x0040
	ManFlagConnSrv     ManFlag = 0x0080
	ManFlagNoComm      ManFlag = 0x0100
	ManFlagSubsted     ManFlag = 0x0200
	ManFlagNoLanCable  ManFlag = 0x0400
	ManFlagNoDsrSignal ManFlag = 0x0800
	ManFlagTamper      ManFlag = 0x1000
	ManFlagInitFailed  ManFlag = 0x2000
	ManFlagAuxStm      ManFlag = 0x4000
)

// UsrFlag is the per-user trouble flag set (troubles.py IntegraTroublesUsr).
type UsrFlag uint32

const (
	UsrFlagNone       UsrFlag = 0x00
	UsrFlagLowBattery UsrFlag = 0x01
)

// RadioFlag is the per-radio-device trouble flag set (troubles.py IntegraTroublesRadio).
type RadioFlag uint32

const (
	RadioFlagNone           RadioFlag = 0x00
	RadioFlagModuleJamLevel RadioFlag = 0x01
	RadioFlagLowBattery     RadioFlag = 0x02
	RadioFlagDeviceNoComm   RadioFlag = 0x04
	RadioFlagOutputNoComm   RadioFlag = 0x08
)

// Region describes one fixed byte range within a trouble response.
type Region struct {
	ID     string
	Offset int
	Size   int
	Source Source
	// ValueMap resolves a device's runtime type (DeviceType, interpreted
	// per Source) to the trouble flag its region raises. nil for the two
	// system regions and the GSM/LTE block, which carry no per-device
	// mapping. The flag's concrete type (ZoneFlag/ExpFlag/ManFlag/
	// RadioFlag/UsrFlag) is implied by Source; callers cast accordingly.
	ValueMap map[DeviceType]uint32
}

// Flag resolves deviceType to the trouble flag this region raises,
// falling back to the region's DeviceOther entry. ok is false if the
// region carries no value map, or neither deviceType nor DeviceOther is
// present in it.
func (r Region) Flag(deviceType DeviceType) (flag uint32, ok bool) {
	if r.ValueMap == nil {
		return 0, false
	}
	if v, present := r.ValueMap[deviceType]; present {
		return v, true
	}
	if v, present := r.ValueMap[DeviceOther]; present {
		return v, true
	}
	return 0, false
}

// regions mirrors __REGIONS: the byte layout of each of the 8 trouble
// banks. Offsets and sizes are in bytes.
var regions = map[proto.NotifyEvent][]Region{
	proto.EventTroublesPart1: {
		{"P1_R1", 0, 16, SourceZones, map[DeviceType]uint32{DeviceOther: uint32(ZoneFlagTechnical)}},
		{"P1_R2", 16, 8, SourceExpanders, map[DeviceType]uint32{DeviceOther: uint32(ExpFlagAC)}},
		{"P1_R3", 24, 8, SourceExpanders, map[DeviceType]uint32{
			ExpanderCA64DR: uint32(ExpFlagOutputOverload),
			ExpanderCA64SR: uint32(ExpFlagOutputOverload),
			DeviceOther:    uint32(ExpFlagBatt),
		}},
		{"P1_R4", 32, 8, SourceExpanders, map[DeviceType]uint32{DeviceOther: uint32(ExpFlagNoBatt)}},
		{"P1_R5", 40, 3, SourceSystemMain, nil},
		{"P1_R6", 43, 1, SourceManipulators, map[DeviceType]uint32{
			ManipulatorETHM1:   uint32(ManFlagPing),
			ManipulatorINTPTSA: uint32(ManFlagAC),
		}},
		{"P1_R7", 44, 1, SourceManipulators, map[DeviceType]uint32{
			ManipulatorETHM1:   uint32(ManFlagMacIDSrv),
			ManipulatorINTGSM:  uint32(ManFlagImeiIDSrv),
			ManipulatorINTKWRL: uint32(ManFlagBat1),
			ManipulatorINTPTSA: uint32(ManFlagBatt),
		}},
		{"P1_R8", 45, 1, SourceManipulators, map[DeviceType]uint32{
			ManipulatorETHM1:   uint32(ManFlagConnSrv),
			ManipulatorINTKWRL: uint32(ManFlagBat2),
		}},
		{"P1_R9", 46, 1, SourceSystemOther, nil},
	},
	proto.EventTroublesPart2: {
		{"P2_R1", 0, 8, SourceExpanders, map[DeviceType]uint32{
			ExpanderCA64SR: uint32(ExpFlagCardReaderHeadA),
			ExpanderACU100: uint32(ExpFlagACUSynchro),
			ExpanderINTTXM: uint32(ExpFlagBusy),
			ExpanderINTKNX: uint32(ExpFlagNoKNXConn),
			DeviceOther:    uint32(ExpFlagHighBattRes),
		}},
		{"P2_R2", 8, 8, SourceExpanders, map[DeviceType]uint32{
			ExpanderCA64SR: uint32(ExpFlagCardReaderHeadB),
			DeviceOther:    uint32(ExpFlagBattCharging),
		}},
		{"P2_R3", 16, 8, SourceExpanders, map[DeviceType]uint32{DeviceOther: uint32(ExpFlagSupplyOutputOverload)}},
		{"P2_R4", 24, 2, SourceExpanders, map[DeviceType]uint32{
			ExpanderACU100: uint32(ExpFlagACUJammed),
			DeviceOther:    uint32(ExpFlagAddressableZoneExpShortCircuit),
		}},
	},
	proto.EventTroublesPart3: {
		{"P3_R1", 0, 15, SourceRadio, map[DeviceType]uint32{DeviceOther: uint32(RadioFlagModuleJamLevel)}},
		{"P3_R2", 15, 15, SourceRadio, map[DeviceType]uint32{DeviceOther: uint32(RadioFlagLowBattery)}},
		{"P3_R3", 30, 15, SourceRadio, map[DeviceType]uint32{DeviceOther: uint32(RadioFlagDeviceNoComm)}},
		{"P3_R4", 45, 15, SourceRadio, map[DeviceType]uint32{DeviceOther: uint32(RadioFlagOutputNoComm)}},
	},
	proto.EventTroublesPart4: {
		{"P4_R1", 0, 8, SourceExpanders, map[DeviceType]uint32{DeviceOther: uint32(ExpFlagExpNoComm)}},
		{"P4_R2", 8, 8, SourceExpanders, map[DeviceType]uint32{DeviceOther: uint32(ExpFlagSubsted)}},
		{"P4_R3", 16, 1, SourceManipulators, map[DeviceType]uint32{DeviceOther: uint32(ManFlagNoComm)}},
		{"P4_R4", 17, 1, SourceManipulators, map[DeviceType]uint32{DeviceOther: uint32(ManFlagSubsted)}},
		{"P4_R5", 18, 1, SourceManipulators, map[DeviceType]uint32{
			ManipulatorETHM1: uint32(ManFlagNoLanCable),
			ManipulatorINTRS: uint32(ManFlagNoDsrSignal),
		}},
		{"P4_R6", 19, 8, SourceExpanders, map[DeviceType]uint32{DeviceOther: uint32(ExpFlagTamper)}},
		{"P4_R7", 27, 1, SourceManipulators, map[DeviceType]uint32{DeviceOther: uint32(ManFlagTamper)}},
		{"P4_R8", 28, 1, SourceManipulators, map[DeviceType]uint32{DeviceOther: uint32(ManFlagInitFailed)}},
		{"P4_R9", 29, 1, SourceManipulators, map[DeviceType]uint32{DeviceOther: uint32(ManFlagAuxStm)}},
	},
	proto.EventTroublesPart5: {
		{"P5_R1", 0, 8, SourceUsers, map[DeviceType]uint32{DeviceOther: uint32(UsrFlagLowBattery)}},
		{"P5_R2", 8, 8, SourceUsers, map[DeviceType]uint32{DeviceOther: uint32(UsrFlagLowBattery)}},
	},
	proto.EventTroublesPart6: {
		{"P6_R1", 0, 15, SourceRadio, map[DeviceType]uint32{DeviceOther: uint32(RadioFlagLowBattery)}},
		{"P6_R2", 15, 15, SourceRadio, map[DeviceType]uint32{DeviceOther: uint32(RadioFlagDeviceNoComm)}},
		{"P6_R3", 30, 15, SourceRadio, map[DeviceType]uint32{DeviceOther: uint32(RadioFlagOutputNoComm)}},
	},
	proto.EventTroublesPart7: {
		{"P7_R1", 0, 16, SourceZones, map[DeviceType]uint32{DeviceOther: uint32(ZoneFlagTechnical)}},
		{"P7_R2", 16, 16, SourceZones, map[DeviceType]uint32{DeviceOther: uint32(ZoneFlagTechnicalMemory)}},
		{"P7_R3", 32, 15, SourceRadio, map[DeviceType]uint32{DeviceOther: uint32(RadioFlagModuleJamLevel)}},
	},
	proto.EventTroublesPart8: {
		{"P8_R1", 0, 8, SourceIntGSM, nil},
		{"P8_R2", 8, 8, SourceIntGSM, nil},
		{"P8_R3", 16, 8, SourceIntGSM, nil},
		{"P8_R4", 24, 8, SourceIntGSM, nil},
		{"P8_R5", 32, 8, SourceIntGSM, nil},
		{"P8_R6", 40, 8, SourceIntGSM, nil},
		{"P8_R7", 48, 8, SourceIntGSM, nil},
		{"P8_R8", 56, 8, SourceIntGSM, nil},
	},
}

// memoryRegions maps each TROUBLES_MEMORY_PARTn event to the same byte
// layout as its live TROUBLES_PARTn counterpart: the panel reports the
// "since last reset" memory bank in the identical region shape.
var memoryRegions = map[proto.NotifyEvent]proto.NotifyEvent{
	proto.EventTroublesMemoryPart1: proto.EventTroublesPart1,
	proto.EventTroublesMemoryPart2: proto.EventTroublesPart2,
	proto.EventTroublesMemoryPart3: proto.EventTroublesPart3,
	proto.EventTroublesMemoryPart4: proto.EventTroublesPart4,
	proto.EventTroublesMemoryPart5: proto.EventTroublesPart5,
	proto.EventTroublesMemoryPart6: proto.EventTroublesPart6,
	proto.EventTroublesMemoryPart7: proto.EventTroublesPart7,
	proto.EventTroublesMemoryPart8: proto.EventTroublesPart8,
}

// Regions returns the region layout for one of the 8 trouble/trouble
// memory banks, or nil if event isn't a troubles event.
func Regions(event proto.NotifyEvent) []Region {
	if live, ok := memoryRegions[event]; ok {
		return regions[live]
	}
	return regions[event]
}

// RegionData slices payload down to one region's bytes. Returns nil if
// payload is shorter than the region requires.
func (r Region) RegionData(payload []byte) []byte {
	if len(payload) < r.Offset+r.Size {
		return nil
	}
	return payload[r.Offset : r.Offset+r.Size]
}

// RegionChange is an index flip inside one bitmap-sourced region. Index
// is 1-based (byte*8 + bit + 1) within the region's own slice, matching
// the diff engine's convention for the top-level bitmap events.
type RegionChange struct {
	Region string
	Source Source
	diff.Delta
}

// Snapshot holds the region changes and typed system bitflags decoded
// from one trouble response.
type Snapshot struct {
	Event       proto.NotifyEvent
	Changes     []RegionChange
	SystemMain  SystemMain
	SystemOther SystemOther
}

// Decoder keeps a previous-snapshot cache per region so successive
// Decode calls for the same event report only the bits that changed,
// mirroring the top-level state diff engine (pkg/diff) at region
// granularity.
type Decoder struct {
	prev map[string][]byte
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{prev: make(map[string][]byte)}
}

// Decode splits payload into its regions, diffs the bitmap-sourced ones
// against their last-seen value, and decodes the two system regions (if
// present) into typed bitflags.
func (d *Decoder) Decode(event proto.NotifyEvent, payload []byte) Snapshot {
	snap := Snapshot{Event: event}
	for _, r := range Regions(event) {
		data := r.RegionData(payload)
		if data == nil {
			continue
		}

		switch r.Source {
		case SourceSystemMain:
			snap.SystemMain = decodeSystemMainLE(data)
			continue
		case SourceSystemOther:
			snap.SystemOther = SystemOther(data[0])
			continue
		}

		prev, seen := d.prev[r.ID]
		if !seen {
			prev = diff.Complement(data)
		}
		for _, delta := range diff.Bits(prev, data, len(data)) {
			snap.Changes = append(snap.Changes, RegionChange{Region: r.ID, Source: r.Source, Delta: delta})
		}

		stored := make([]byte, len(data))
		copy(stored, data)
		d.prev[r.ID] = stored
	}
	return snap
}

// Reset discards every region's cached snapshot.
func (d *Decoder) Reset() {
	d.prev = make(map[string][]byte)
}

func decodeSystemMainLE(data []byte) SystemMain {
	var v uint32
	for i := len(data) - 1; i >= 0; i-- {
		v = v<<8 | uint32(data[i])
	}
	return SystemMain(v)
}
