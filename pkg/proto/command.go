// Package proto implements the message codec (component C4): the full
// opcode table, the bit-packed list<->byte helpers used by zone/part/
// output/door payloads, and typed request/response payload structs.
//
// Grounded on original_source/satel_integra_api/commands.py and tools.py.
package proto

// Command identifies an opcode understood by the panel.
type Command byte

const (
	ReadZonesViolation           Command = 0x00
	ReadZonesTamper              Command = 0x01
	ReadZonesAlarm               Command = 0x02
	ReadZonesTamperAlarm         Command = 0x03
	ReadZonesAlarmMemory         Command = 0x04
	ReadZonesTamperAlarmMemory   Command = 0x05
	ReadZonesBypass              Command = 0x06
	ReadZonesNoViolationTrouble  Command = 0x07
	ReadZonesLongViolationTrouble Command = 0x08
	ReadPartsArmedSuppressed     Command = 0x09
	ReadPartsArmedReally         Command = 0x0A
	ReadPartsArmedMode2          Command = 0x0B
	ReadPartsArmedMode3          Command = 0x0C
	ReadParts1stCodeEntered      Command = 0x0D
	ReadPartsEntryTime           Command = 0x0E
	ReadPartsExitTimeAbove10     Command = 0x0F
	ReadPartsExitTimeBelow10     Command = 0x10
	ReadPartsTempBlocked         Command = 0x11
	ReadPartsBlockedForGuard     Command = 0x12
	ReadPartsAlarm               Command = 0x13
	ReadPartsFireAlarm           Command = 0x14
	ReadPartsAlarmMemory         Command = 0x15
	ReadPartsFireAlarmMemory     Command = 0x16
	ReadOutputsState             Command = 0x17
	ReadDoorsOpened              Command = 0x18
	ReadDoorsOpenedLong          Command = 0x19
	ReadRtcAndStatus             Command = 0x1A
	ReadTroublesPart1            Command = 0x1B
	ReadTroublesPart2            Command = 0x1C
	ReadTroublesPart3            Command = 0x1D
	ReadTroublesPart4            Command = 0x1E
	ReadTroublesPart5            Command = 0x1F
	ReadTroublesMemoryPart1      Command = 0x20
	ReadTroublesMemoryPart2      Command = 0x21
	ReadTroublesMemoryPart3      Command = 0x22
	ReadTroublesMemoryPart4      Command = 0x23
	ReadTroublesMemoryPart5      Command = 0x24
	ReadPartsWithViolatedZones   Command = 0x25
	ReadZonesIsolate             Command = 0x26
	ReadPartsWithVerifiedAlarms  Command = 0x27
	ReadZonesMasked              Command = 0x28
	ReadZonesMaskedMemory        Command = 0x29
	ReadPartsArmedMode1          Command = 0x2A
	ReadPartsWithWarningAlarms   Command = 0x2B
	ReadTroublesPart6            Command = 0x2C
	ReadTroublesPart7            Command = 0x2D
	ReadTroublesMemoryPart6      Command = 0x2E
	ReadTroublesMemoryPart7      Command = 0x2F
	ReadTroublesPart8            Command = 0x30
	ReadTroublesMemoryPart8      Command = 0x31

	ReadOutputPower    Command = 0x7B
	ReadModuleVersion  Command = 0x7C
	ReadZoneTemperature Command = 0x7D
	ReadIntegraVersion Command = 0x7E
	ReadSystemChanges  Command = 0x7F

	ExecArmMode0           Command = 0x80
	ExecArmMode1           Command = 0x81
	ExecArmMode2           Command = 0x82
	ExecArmMode3           Command = 0x83
	ExecDisarm             Command = 0x84
	ExecClearAlarm         Command = 0x85
	ExecZonesBypassSet     Command = 0x86
	ExecZonesBypassUnset   Command = 0x87
	ExecOutputsOn          Command = 0x88
	ExecOutputsOff         Command = 0x89
	ExecOpenDoor           Command = 0x8A
	ExecClearTroubleMemory Command = 0x8B
	ExecReadEvent          Command = 0x8C
	ExecEnter1stCode       Command = 0x8D
	ExecSetRtcClock        Command = 0x8E
	ExecGetEventText       Command = 0x8F
	ExecZonesIsolate       Command = 0x90
	ExecOutputsSwitch      Command = 0x91
	ExecForceArmMode0      Command = 0xA0
	ExecForceArmMode1      Command = 0xA1
	ExecForceArmMode2      Command = 0xA2
	ExecForceArmMode3      Command = 0xA3

	UserReadSelfInfo     Command = 0xE0
	UserReadOtherInfo    Command = 0xE1
	UserReadUsersList    Command = 0xE2
	UserReadUserLocks    Command = 0xE3
	UserWriteUserLocks   Command = 0xE4
	UserRemove           Command = 0xE5
	UserCreate           Command = 0xE6
	UserChange           Command = 0xE7
	UserManageDevs       Command = 0xE8
	UserChangeCode       Command = 0xE9
	UserChangePhoneCode  Command = 0xEA

	ElementReadName Command = 0xEE

	ReadResult Command = 0xEF
)

// PartsCommands lists every opcode whose response is a partition bitmask.
var PartsCommands = []Command{
	ReadPartsArmedSuppressed, ReadPartsArmedReally, ReadPartsArmedMode2, ReadPartsArmedMode3,
	ReadParts1stCodeEntered, ReadPartsEntryTime, ReadPartsExitTimeAbove10, ReadPartsExitTimeBelow10,
	ReadPartsTempBlocked, ReadPartsBlockedForGuard, ReadPartsAlarm, ReadPartsFireAlarm,
	ReadPartsAlarmMemory, ReadPartsFireAlarmMemory, ReadPartsWithViolatedZones,
	ReadPartsWithVerifiedAlarms, ReadPartsArmedMode1, ReadPartsWithWarningAlarms,
}

// ZonesCommands lists every opcode whose response is a zone bitmask.
var ZonesCommands = []Command{
	ReadZonesViolation, ReadZonesTamper, ReadZonesAlarm, ReadZonesTamperAlarm,
	ReadZonesAlarmMemory, ReadZonesTamperAlarmMemory, ReadZonesBypass,
	ReadZonesNoViolationTrouble, ReadZonesLongViolationTrouble, ReadZonesIsolate,
	ReadZonesMasked, ReadZonesMaskedMemory,
}

// OutputsCommands lists every opcode whose response is an output bitmask.
var OutputsCommands = []Command{ReadOutputsState}

// Broadcast reports whether responses to cmd also go out as notifications
// even when they answer a pending request (see channel.Response.Broadcast):
// true for the state reads 0x00-0x31, READ_OUTPUT_POWER and
// READ_ZONE_TEMPERATURE; READ_SYSTEM_CHANGES is not included.
func (c Command) Broadcast() bool {
	switch {
	case c >= ReadZonesViolation && c <= ReadTroublesMemoryPart8:
		return true
	case c == ReadOutputPower || c == ReadZoneTemperature:
		return true
	default:
		return false
	}
}
