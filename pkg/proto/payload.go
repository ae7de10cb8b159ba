package proto

import (
	"fmt"
	"strings"
	"time"
)

func bcdDigit(b byte) int { return int(b>>4)*10 + int(b&0x0F) }

// DecodeDateHex decodes the 7-byte BCD-packed timestamp used by
// READ_RTC_AND_STATUS: year (2 BCD bytes), month, day, hour, minute,
// second (1 BCD byte each). Returns the zero time if date is absent or
// the year, month or day is zero (a reading the panel uses to mean "unset").
func DecodeDateHex(date []byte) time.Time {
	if len(date) < 7 {
		return time.Time{}
	}
	year := bcdDigit(date[0])*100 + bcdDigit(date[1])
	month := bcdDigit(date[2])
	day := bcdDigit(date[3])
	hour := bcdDigit(date[4])
	minute := bcdDigit(date[5])
	second := bcdDigit(date[6])
	if year <= 0 || month <= 0 || day <= 0 {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}

// DecodeDateASCII decodes an 8-character "YYYYMMDD" ASCII date, as used
// inside READ_INTEGRA_VERSION/READ_MODULE_VERSION's version field.
func DecodeDateASCII(date []byte) time.Time {
	if len(date) < 8 {
		return time.Time{}
	}
	var year, month, day int
	if _, err := fmt.Sscanf(string(date[0:4]), "%d", &year); err != nil {
		return time.Time{}
	}
	if _, err := fmt.Sscanf(string(date[4:6]), "%d", &month); err != nil {
		return time.Time{}
	}
	if _, err := fmt.Sscanf(string(date[6:8]), "%d", &day); err != nil {
		return time.Time{}
	}
	if year <= 0 || month <= 0 || day <= 0 {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// DecodeVersion decodes the common "<major><minor minor><8-digit date>"
// version field shared by READ_INTEGRA_VERSION and READ_MODULE_VERSION.
func DecodeVersion(data []byte) (major, minor int, date time.Time) {
	if len(data) < 11 {
		return 0, 0, time.Time{}
	}
	fmt.Sscanf(string(data[0:1]), "%d", &major)
	fmt.Sscanf(string(data[1:3]), "%d", &minor)
	date = DecodeDateASCII(data[3:11])
	return major, minor, date
}

// ResultData decodes the response to most EXEC_* commands: a single
// error-code byte (0 = success), or 256 when the response carried none.
type ResultData struct {
	ErrorCode int
}

func DecodeResult(payload []byte) ResultData {
	if len(payload) == 0 {
		return ResultData{ErrorCode: 256}
	}
	return ResultData{ErrorCode: int(payload[0])}
}

func (r ResultData) Success() bool { return r.ErrorCode == 0 }

// BitmaskData is the shared decode result for the READ_ZONES_*,
// READ_PARTS_*, READ_OUTPUTS_STATE and READ_DOORS_* families: a list of
// 1-based element numbers currently set.
type BitmaskData struct {
	Numbers []int
}

func DecodeZones(payload []byte) BitmaskData    { return BitmaskData{Numbers: ZonesFromBytes(payload)} }
func DecodeParts(payload []byte) BitmaskData    { return BitmaskData{Numbers: PartsFromBytes(payload)} }
func DecodeOutputs(payload []byte) BitmaskData  { return BitmaskData{Numbers: OutputsFromBytes(payload)} }
func DecodeDoors(payload []byte) BitmaskData    { return BitmaskData{Numbers: DoorsFromBytes(payload)} }

// VersionData decodes READ_INTEGRA_VERSION.
type VersionData struct {
	PanelType PanelType
	Major     int
	Minor     int
	Date      time.Time
	Lang      Lang
	InFlash   bool
}

func DecodeVersionData(payload []byte) VersionData {
	var v VersionData
	v.PanelType = IntegraUnknown
	v.Lang = LangUnknown
	if len(payload) > 0 {
		v.PanelType = PanelType(payload[0])
	}
	if len(payload) > 12 {
		v.Major, v.Minor, v.Date = DecodeVersion(payload[1:12])
	}
	if len(payload) > 12 {
		v.Lang = Lang(payload[12])
	}
	if len(payload) > 13 {
		v.InFlash = payload[13] == 0xFF
	}
	return v
}

// ModuleVersionData decodes READ_MODULE_VERSION.
type ModuleVersionData struct {
	Major int
	Minor int
	Date  time.Time
	Caps  ModuleCaps
}

func DecodeModuleVersionData(payload []byte) ModuleVersionData {
	var v ModuleVersionData
	if len(payload) > 10 {
		v.Major, v.Minor, v.Date = DecodeVersion(payload[0:11])
	}
	if len(payload) > 11 {
		b := payload[11]
		if b&(1<<0) != 0 {
			v.Caps |= ModuleCap32Byte
		}
		if b&(1<<1) != 0 {
			v.Caps |= ModuleCapTrouble8
		}
		if b&(1<<2) != 0 {
			v.Caps |= ModuleCapArmNoBypass
		}
	}
	return v
}

// RtcData decodes READ_RTC_AND_STATUS.
type RtcData struct {
	RTC      time.Time
	DoW      DayOfWeek
	Status   RtcStatus
	BaseType PanelBaseType
}

func DecodeRtcData(payload []byte) RtcData {
	var r RtcData
	r.BaseType = BaseUnknown
	if len(payload) > 6 {
		r.RTC = DecodeDateHex(payload[0:7])
	}
	if len(payload) > 7 {
		r.DoW = DayOfWeek((payload[7] & 0x07) % 7)
		if payload[7]&(1<<7) != 0 {
			r.Status |= RtcStatusServiceMode
		}
		if payload[7]&(1<<6) != 0 {
			r.Status |= RtcStatusTroubles
		}
	}
	if len(payload) > 8 {
		if payload[8]&(1<<7) != 0 {
			r.Status |= RtcStatusAcu100Present
		}
		if payload[8]&(1<<6) != 0 {
			r.Status |= RtcStatusIntRxPresent
		}
		if payload[8]&(1<<5) != 0 {
			r.Status |= RtcStatusTroublesMemory
		}
		if payload[8]&(1<<4) != 0 {
			r.Status |= RtcStatusGrade23Set
		}
		r.BaseType = PanelBaseType(payload[8] & 0x0F)
	}
	return r
}

// OutputPowerData decodes READ_OUTPUT_POWER.
type OutputPowerData struct {
	OutputNo int
	Power    float64
}

func DecodeOutputPower(payload []byte) OutputPowerData {
	d := OutputPowerData{Power: -1.0}
	if len(payload) > 0 {
		d.OutputNo = OutputFromByte(payload[0])
	}
	if len(payload) > 2 {
		raw := int(payload[1])<<8 | int(payload[2])
		d.Power = float64(raw) / 10.0
	}
	return d
}

// ZoneTempData decodes READ_ZONE_TEMPERATURE. 32712.5 is the panel's
// "no sensor" sentinel.
type ZoneTempData struct {
	ZoneNo int
	Temp   float64
}

func DecodeZoneTemp(payload []byte) ZoneTempData {
	d := ZoneTempData{Temp: 32712.5}
	if len(payload) > 0 {
		d.ZoneNo = OutputFromByte(payload[0])
	}
	if len(payload) > 2 {
		raw := int(payload[1])<<8 | int(payload[2])
		d.Temp = float64(raw-0x6E) / 2.0
	}
	return d
}

// EncodeUserCommand builds the payload for a code-authenticated command
// over a list of target partitions: the 8-byte user/prefix code followed
// by a partition bitmask.
func EncodeUserCommand(userCode, prefixCode string, parts []int) []byte {
	out := UserCodeToBytes(userCode, prefixCode)
	return append(out, PartsToBytes(parts)...)
}

// ElementKind is the element_type byte carried by ELEMENT_READ_NAME and
// echoed back in its response header (elements.py IntegraElementType).
// EXPANDER and MANIPULATOR share wire value 3; ElementRange disambiguates
// which one an id addresses.
type ElementKind byte

const (
	ElementPartition                ElementKind = 0
	ElementZone                     ElementKind = 1
	ElementUser                     ElementKind = 2
	ElementExpanderOrManipulator    ElementKind = 3
	ElementOutput                   ElementKind = 4
	ElementZoneWithParts            ElementKind = 5
	ElementTimer                    ElementKind = 6
	ElementTelephone                ElementKind = 7
	ElementObject                   ElementKind = 15
	ElementPartitionWithObj         ElementKind = 16
	ElementOutputWithDuration       ElementKind = 17
	ElementPartitionWithObjOpts     ElementKind = 18
	ElementPartitionWithObjOptsDeps ElementKind = 19
	ElementUnknown                  ElementKind = 255
)

// ElementRange selects the element_id offset for the kinds whose wire
// address shares one space disambiguated by range (elements.py
// IntegraCmdReadElementData.element_id): expander (+0x80), manipulator
// (+0xC0), admin (+0xF0). Every other kind's id is the bare element number.
type ElementRange int

const (
	ElementRangePlain ElementRange = iota
	ElementRangeExpander
	ElementRangeManipulator
	ElementRangeAdmin
)

// ElementID builds the element_id byte for a given range; outside the
// three disambiguated ranges it is simply no.
func ElementID(rng ElementRange, no int) byte {
	switch rng {
	case ElementRangeExpander:
		return byte(no + 0x80)
	case ElementRangeManipulator:
		return byte(no + 0xC0)
	case ElementRangeAdmin:
		return byte(no + 0xF0)
	default:
		return byte(no)
	}
}

// EncodeElementRequest builds the two-byte ELEMENT_READ_NAME payload:
// {element_type, element_id}.
func EncodeElementRequest(kind ElementKind, rng ElementRange, no int) []byte {
	return []byte{byte(kind), ElementID(rng, no)}
}

// ElementNameData is the decoded ELEMENT_READ_NAME response: the echoed
// {element_type, element_id} header, plus the trailing 16-byte ASCII
// name every element kind carries. Kind-specific tail fields between the
// header and the name (parts bitmap, duration, options, dependencies)
// belong to the high-level object graph and aren't decoded here.
type ElementNameData struct {
	Kind ElementKind
	ID   byte
	Name string
}

// DecodeElementName decodes an ELEMENT_READ_NAME response.
func DecodeElementName(payload []byte) ElementNameData {
	var out ElementNameData
	if len(payload) < 2 {
		return out
	}
	out.Kind = ElementKind(payload[0])
	out.ID = payload[1]
	tail := payload[2:]
	nameStart := 0
	if len(tail) > 16 {
		nameStart = len(tail) - 16
	}
	out.Name = strings.TrimRight(string(tail[nameStart:]), "\x00 ")
	return out
}

// EncodeEventTextRequest builds the payload for EXEC_GET_EVENT_TEXT.
func EncodeEventTextRequest(eventCodeFull int, showLong bool) []byte {
	value := eventCodeFull & 0x07FF
	if showLong {
		value |= 0x8000
	}
	return []byte{byte(value >> 8), byte(value)}
}

// EncodeEventRecordRequest builds the payload for EXEC_READ_EVENT.
func EncodeEventRecordRequest(lastEventIndex int) []byte {
	lastEventIndex &= 0xFFFFFF
	return []byte{
		byte(lastEventIndex >> 16),
		byte(lastEventIndex >> 8),
		byte(lastEventIndex),
	}
}

// EncodeRtcSet builds the payload for EXEC_SET_RTC_CLOCK: a code followed
// by an ASCII "YYYYMMDDHHMMSS" timestamp.
func EncodeRtcSet(userCode, prefixCode string, t time.Time) []byte {
	out := UserCodeToBytes(userCode, prefixCode)
	return append(out, []byte(t.Format("20060102150405"))...)
}

// EventSource disambiguates the "no more records" sentinel on an
// EXEC_READ_EVENT response (events.py IntegraEventSource); the panel's
// two event banks (standard / Grade-2) encode it differently.
type EventSource int

const (
	EventSourceUnknown EventSource = iota
	EventSourceStandard
	EventSourceGrade2
)

// EventMonStatus is a record's per-monitoring-station delivery status
// (events.py IntegraEventMonStatus).
type EventMonStatus int

const (
	EventMonNew EventMonStatus = iota
	EventMonSent
	EventMonNotSent
	EventMonNotMonitored
)

// EventClass categorizes an event record (events.py IntegraEventClass).
type EventClass int

const (
	EventClassZoneAndTamperAlarms EventClass = iota
	EventClassPartAndExpanderAlarms
	EventClassArmingDisarmingAlarmClearing
	EventClassZoneBypassSetUnset
	EventClassAccessControl
	EventClassTroubles
	EventClassUserFunctions
	EventClassSystemEvents
)

// EventRecord is one decoded EXEC_READ_EVENT response (events.py
// IntegraEventRecData). NoMore reports the "no more records" sentinel;
// the record fields are zero when NoMore is set, matching the source,
// while Index and IndexCalled are decoded from any 14-byte payload.
type EventRecord struct {
	NoMore            bool
	YearMarker        int
	Empty             bool
	Present           bool
	MonitoringStatus1 EventMonStatus
	MonitoringStatus2 EventMonStatus
	EventClass        EventClass
	Day, Month        int
	Minutes           int
	PartNo            int
	Restore           bool
	Code              int
	SourceNo          int
	ObjectNo          int
	UserCtrlNo        int
	Index             int
	IndexCalled       int
	Date              time.Time
}

// CodeFull folds the restore flag into bit 10 of Code, matching the
// encoding EXEC_GET_EVENT_TEXT expects as its event-code argument.
func (r EventRecord) CodeFull() int {
	restoreBit := 0
	if r.Restore {
		restoreBit = 1
	}
	return (restoreBit << 10) | (r.Code & 0x03FF)
}

// DecodeEventRecord decodes a 14-byte EXEC_READ_EVENT response. source
// picks the no-more-records test: standard panels clear bit 0x20 of the
// first byte, Grade-2 panels send an all-zero first byte.
func DecodeEventRecord(payload []byte, source EventSource) EventRecord {
	var rec EventRecord
	if len(payload) < 14 {
		rec.NoMore = true
		return rec
	}
	switch source {
	case EventSourceStandard:
		rec.NoMore = payload[0]&0x20 == 0
	case EventSourceGrade2:
		rec.NoMore = payload[0] == 0
	default:
		rec.NoMore = true
	}

	if !rec.NoMore {
		rec.YearMarker = int(payload[0]&0xC0) >> 6
		rec.Empty = payload[0]&0x20 == 0
		rec.Present = payload[0]&0x10 != 0
		rec.MonitoringStatus2 = EventMonStatus((payload[0] & 0x0C) >> 2)
		rec.MonitoringStatus1 = EventMonStatus(payload[0] & 0x03)

		rec.EventClass = EventClass((payload[1] & 0xE0) >> 5)
		rec.Day = int(payload[1] & 0x1F)

		rec.Month = int(payload[2]&0xF0) >> 4
		rec.Minutes = (int(payload[2]&0x0F) << 8) | int(payload[3])

		rec.PartNo = int(payload[4]&0xF8) >> 3
		rec.Restore = payload[4]&0x04 != 0
		rec.Code = (int(payload[4]&0x03) << 8) | int(payload[5])

		rec.SourceNo = int(payload[6])

		rec.ObjectNo = int(payload[7]&0xE0) >> 5
		rec.UserCtrlNo = int(payload[7] & 0x1F)

		rec.Date = eventDate(rec.YearMarker, rec.Month, rec.Day, rec.Minutes)
	}

	rec.Index = int(payload[8])<<16 | int(payload[9])<<8 | int(payload[10])
	rec.IndexCalled = int(payload[11])<<16 | int(payload[12])<<8 | int(payload[13])
	return rec
}

// eventDate reconstructs a full year from the record's 2-bit year marker,
// matching tools.py's assumption that events are never more than ~4 years
// stale: take the current 4-year bucket, substitute the marker, and step
// back one bucket if that lands in the future.
func eventDate(yearMarker, month, day, minutes int) time.Time {
	now := time.Now()
	year := 4*(now.Year()/4) + yearMarker
	if year > now.Year() {
		year -= 4
	}
	hour, minute := minutes/60, minutes%60
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
}

// EventText is a decoded EXEC_GET_EVENT_TEXT response (events.py
// IntegraEventTextData).
type EventText struct {
	EventCodeFull int
	EventCode     int
	Restore       bool
	ShowLong      bool
	LongKind      int
	ShortKind     uint16
	Text          string
}

// DecodeEventText decodes an EXEC_GET_EVENT_TEXT response.
func DecodeEventText(payload []byte) EventText {
	var out EventText
	var value int
	if len(payload) > 1 {
		value = int(payload[0])<<8 | int(payload[1])
	}
	out.EventCodeFull = value & 0x07FF
	out.EventCode = value & 0x03FF
	out.Restore = out.EventCodeFull&0x0400 != 0
	out.ShowLong = value&0x8000 != 0
	if len(payload) > 2 {
		out.LongKind = int(payload[2])
	}
	if len(payload) > 4 {
		out.ShortKind = uint16(payload[3])<<8 | uint16(payload[4])
	}
	padLen := 16
	if out.ShowLong {
		padLen = 46
	}
	if len(payload) > 5 && payload[5] != 0 {
		out.Text = string(payload[5:])
	} else {
		out.Text = strings.Repeat(" ", padLen)
	}
	return out
}
