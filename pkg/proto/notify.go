package proto

// NotifySource is the bitmask category a change-monitor notification
// belongs to, returned by the panel alongside a command opcode or used to
// group several commands for a single state poll.
//
// Grounded on original_source/satel_integra_api/notify.py
// (IntegraNotifySource).
type NotifySource byte

const (
	NotifySourceNone            NotifySource = 0x00
	NotifySourceParts           NotifySource = 0x01
	NotifySourceZones           NotifySource = 0x02
	NotifySourceOutputs         NotifySource = 0x04
	NotifySourceDoors           NotifySource = 0x08
	NotifySourceTroubles        NotifySource = 0x10
	NotifySourceTroublesMemory  NotifySource = 0x20
	NotifySourceData            NotifySource = 0x40
	NotifySourceOthers          NotifySource = 0x80
)

// NotifyEvent identifies a kind of state change a monitored command can
// report. Every event shares its numeric value with the read command that
// produces it (the panel's "system changed" notification reports opcodes,
// not a separate event id space), so NotifyEvent and Command interconvert
// via a membership table rather than an arithmetic mapping.
type NotifyEvent byte

const (
	EventPartsArmedSuppressed    = NotifyEvent(ReadPartsArmedSuppressed)
	EventPartsArmedReally        = NotifyEvent(ReadPartsArmedReally)
	EventPartsArmedMode2         = NotifyEvent(ReadPartsArmedMode2)
	EventPartsArmedMode3         = NotifyEvent(ReadPartsArmedMode3)
	EventParts1stCodeEntered     = NotifyEvent(ReadParts1stCodeEntered)
	EventPartsEntryTime          = NotifyEvent(ReadPartsEntryTime)
	EventPartsExitTimeAbove10    = NotifyEvent(ReadPartsExitTimeAbove10)
	EventPartsExitTimeBelow10    = NotifyEvent(ReadPartsExitTimeBelow10)
	EventPartsTempBlocked        = NotifyEvent(ReadPartsTempBlocked)
	EventPartsBlockedForGuard    = NotifyEvent(ReadPartsBlockedForGuard)
	EventPartsAlarm              = NotifyEvent(ReadPartsAlarm)
	EventPartsFireAlarm          = NotifyEvent(ReadPartsFireAlarm)
	EventPartsAlarmMemory        = NotifyEvent(ReadPartsAlarmMemory)
	EventPartsFireAlarmMemory    = NotifyEvent(ReadPartsFireAlarmMemory)
	EventPartsWithViolatedZones  = NotifyEvent(ReadPartsWithViolatedZones)
	EventPartsWithVerifiedAlarms = NotifyEvent(ReadPartsWithVerifiedAlarms)
	EventPartsArmedMode1         = NotifyEvent(ReadPartsArmedMode1)
	EventPartsWithWarningAlarms  = NotifyEvent(ReadPartsWithWarningAlarms)

	EventZonesViolation           = NotifyEvent(ReadZonesViolation)
	EventZonesTamper              = NotifyEvent(ReadZonesTamper)
	EventZonesAlarm               = NotifyEvent(ReadZonesAlarm)
	EventZonesTamperAlarm         = NotifyEvent(ReadZonesTamperAlarm)
	EventZonesAlarmMemory         = NotifyEvent(ReadZonesAlarmMemory)
	EventZonesTamperAlarmMemory   = NotifyEvent(ReadZonesTamperAlarmMemory)
	EventZonesBypass              = NotifyEvent(ReadZonesBypass)
	EventZonesNoViolationTrouble  = NotifyEvent(ReadZonesNoViolationTrouble)
	EventZonesLongViolationTrouble = NotifyEvent(ReadZonesLongViolationTrouble)
	EventZonesIsolate             = NotifyEvent(ReadZonesIsolate)
	EventZonesMasked              = NotifyEvent(ReadZonesMasked)
	EventZonesMaskedMemory        = NotifyEvent(ReadZonesMaskedMemory)

	EventOutputsState = NotifyEvent(ReadOutputsState)

	EventDoorsOpened     = NotifyEvent(ReadDoorsOpened)
	EventDoorsOpenedLong = NotifyEvent(ReadDoorsOpenedLong)

	EventTroublesPart1 = NotifyEvent(ReadTroublesPart1)
	EventTroublesPart2 = NotifyEvent(ReadTroublesPart2)
	EventTroublesPart3 = NotifyEvent(ReadTroublesPart3)
	EventTroublesPart4 = NotifyEvent(ReadTroublesPart4)
	EventTroublesPart5 = NotifyEvent(ReadTroublesPart5)
	EventTroublesPart6 = NotifyEvent(ReadTroublesPart6)
	EventTroublesPart7 = NotifyEvent(ReadTroublesPart7)
	EventTroublesPart8 = NotifyEvent(ReadTroublesPart8)

	EventTroublesMemoryPart1 = NotifyEvent(ReadTroublesMemoryPart1)
	EventTroublesMemoryPart2 = NotifyEvent(ReadTroublesMemoryPart2)
	EventTroublesMemoryPart3 = NotifyEvent(ReadTroublesMemoryPart3)
	EventTroublesMemoryPart4 = NotifyEvent(ReadTroublesMemoryPart4)
	EventTroublesMemoryPart5 = NotifyEvent(ReadTroublesMemoryPart5)
	EventTroublesMemoryPart6 = NotifyEvent(ReadTroublesMemoryPart6)
	EventTroublesMemoryPart7 = NotifyEvent(ReadTroublesMemoryPart7)
	EventTroublesMemoryPart8 = NotifyEvent(ReadTroublesMemoryPart8)

	EventRtcAndStatus = NotifyEvent(ReadRtcAndStatus)

	EventOutputPower    = NotifyEvent(ReadOutputPower)
	EventZoneTemperature = NotifyEvent(ReadZoneTemperature)
)

// notifyEvents is the full membership table: every opcode that can be
// monitored for state changes. Anything not in this set (the EXEC_*,
// USER_*, ELEMENT_* commands) has no corresponding notify event.
var notifyEvents = map[NotifyEvent]Command{
	EventZonesViolation: ReadZonesViolation, EventZonesTamper: ReadZonesTamper,
	EventZonesAlarm: ReadZonesAlarm, EventZonesTamperAlarm: ReadZonesTamperAlarm,
	EventZonesAlarmMemory: ReadZonesAlarmMemory, EventZonesTamperAlarmMemory: ReadZonesTamperAlarmMemory,
	EventZonesBypass: ReadZonesBypass, EventZonesNoViolationTrouble: ReadZonesNoViolationTrouble,
	EventZonesLongViolationTrouble: ReadZonesLongViolationTrouble,
	EventPartsArmedSuppressed:      ReadPartsArmedSuppressed,
	EventPartsArmedReally:          ReadPartsArmedReally,
	EventPartsArmedMode2:           ReadPartsArmedMode2,
	EventPartsArmedMode3:           ReadPartsArmedMode3,
	EventParts1stCodeEntered:       ReadParts1stCodeEntered,
	EventPartsEntryTime:            ReadPartsEntryTime,
	EventPartsExitTimeAbove10:      ReadPartsExitTimeAbove10,
	EventPartsExitTimeBelow10:      ReadPartsExitTimeBelow10,
	EventPartsTempBlocked:          ReadPartsTempBlocked,
	EventPartsBlockedForGuard:      ReadPartsBlockedForGuard,
	EventPartsAlarm:                ReadPartsAlarm,
	EventPartsFireAlarm:            ReadPartsFireAlarm,
	EventPartsAlarmMemory:          ReadPartsAlarmMemory,
	EventPartsFireAlarmMemory:      ReadPartsFireAlarmMemory,
	EventOutputsState:              ReadOutputsState,
	EventDoorsOpened:               ReadDoorsOpened,
	EventDoorsOpenedLong:           ReadDoorsOpenedLong,
	EventRtcAndStatus:              ReadRtcAndStatus,
	EventTroublesPart1:             ReadTroublesPart1,
	EventTroublesPart2:             ReadTroublesPart2,
	EventTroublesPart3:             ReadTroublesPart3,
	EventTroublesPart4:             ReadTroublesPart4,
	EventTroublesPart5:             ReadTroublesPart5,
	EventTroublesMemoryPart1:       ReadTroublesMemoryPart1,
	EventTroublesMemoryPart2:       ReadTroublesMemoryPart2,
	EventTroublesMemoryPart3:       ReadTroublesMemoryPart3,
	EventTroublesMemoryPart4:       ReadTroublesMemoryPart4,
	EventTroublesMemoryPart5:       ReadTroublesMemoryPart5,
	EventPartsWithViolatedZones:    ReadPartsWithViolatedZones,
	EventZonesIsolate:              ReadZonesIsolate,
	EventPartsWithVerifiedAlarms:   ReadPartsWithVerifiedAlarms,
	EventZonesMasked:               ReadZonesMasked,
	EventZonesMaskedMemory:         ReadZonesMaskedMemory,
	EventPartsArmedMode1:           ReadPartsArmedMode1,
	EventPartsWithWarningAlarms:    ReadPartsWithWarningAlarms,
	EventTroublesPart6:             ReadTroublesPart6,
	EventTroublesPart7:             ReadTroublesPart7,
	EventTroublesMemoryPart6:       ReadTroublesMemoryPart6,
	EventTroublesMemoryPart7:       ReadTroublesMemoryPart7,
	EventTroublesPart8:             ReadTroublesPart8,
	EventTroublesMemoryPart8:       ReadTroublesMemoryPart8,
	EventOutputPower:               ReadOutputPower,
	EventZoneTemperature:           ReadZoneTemperature,
}

// EventFromCommand returns the notify event for cmd, and false if cmd
// cannot be monitored for changes.
func EventFromCommand(cmd Command) (NotifyEvent, bool) {
	for event, c := range notifyEvents {
		if c == cmd {
			return event, true
		}
	}
	return 0, false
}

// CommandFromEvent returns the read command that produces event.
func CommandFromEvent(event NotifyEvent) (Command, bool) {
	c, ok := notifyEvents[event]
	return c, ok
}

// PartsNotifyEvents lists every event reporting a partition bitmask.
var PartsNotifyEvents = []NotifyEvent{
	EventPartsArmedSuppressed, EventPartsArmedReally, EventPartsArmedMode2, EventPartsArmedMode3,
	EventParts1stCodeEntered, EventPartsEntryTime, EventPartsExitTimeAbove10, EventPartsExitTimeBelow10,
	EventPartsTempBlocked, EventPartsBlockedForGuard, EventPartsAlarm, EventPartsFireAlarm,
	EventPartsAlarmMemory, EventPartsFireAlarmMemory, EventPartsWithViolatedZones,
	EventPartsWithVerifiedAlarms, EventPartsArmedMode1, EventPartsWithWarningAlarms,
}

// ZonesNotifyEvents lists every event reporting a zone bitmask.
var ZonesNotifyEvents = []NotifyEvent{
	EventZonesViolation, EventZonesTamper, EventZonesAlarm, EventZonesTamperAlarm,
	EventZonesAlarmMemory, EventZonesTamperAlarmMemory, EventZonesBypass,
	EventZonesNoViolationTrouble, EventZonesLongViolationTrouble, EventZonesIsolate,
	EventZonesMasked, EventZonesMaskedMemory,
}

// OutputsNotifyEvents lists every event reporting an output bitmask.
var OutputsNotifyEvents = []NotifyEvent{EventOutputsState}

// DoorsNotifyEvents lists every event reporting a door bitmask.
var DoorsNotifyEvents = []NotifyEvent{EventDoorsOpened, EventDoorsOpenedLong}

// TroublesNotifyEvents lists the 8 live trouble-region events.
var TroublesNotifyEvents = []NotifyEvent{
	EventTroublesPart1, EventTroublesPart2, EventTroublesPart3, EventTroublesPart4,
	EventTroublesPart5, EventTroublesPart6, EventTroublesPart7, EventTroublesPart8,
}

// TroublesMemoryNotifyEvents lists the 8 latched trouble-region events.
var TroublesMemoryNotifyEvents = []NotifyEvent{
	EventTroublesMemoryPart1, EventTroublesMemoryPart2, EventTroublesMemoryPart3, EventTroublesMemoryPart4,
	EventTroublesMemoryPart5, EventTroublesMemoryPart6, EventTroublesMemoryPart7, EventTroublesMemoryPart8,
}

// DataNotifyEvents lists the per-element analog readings (output power,
// zone temperature) monitored separately from the bitmask-style events.
var DataNotifyEvents = []NotifyEvent{EventOutputPower, EventZoneTemperature}
