package proto

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecodeResultSuccessAndFailure(t *testing.T) {
	assert.True(t, DecodeResult([]byte{0x00}).Success())
	assert.False(t, DecodeResult([]byte{0x01}).Success())
	assert.Equal(t, 256, DecodeResult(nil).ErrorCode)
}

func TestDecodeDateHexBCD(t *testing.T) {
	date := []byte{0x20, 0x24, 0x03, 0x15, 0x09, 0x30, 0x00}
	got := DecodeDateHex(date)
	assert.Equal(t, time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC), got)
}

func TestDecodeDateHexZeroIsUnset(t *testing.T) {
	assert.True(t, DecodeDateHex(make([]byte, 7)).IsZero())
}

func TestDecodeDateASCII(t *testing.T) {
	got := DecodeDateASCII([]byte("20240315"))
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestDecodeVersionData(t *testing.T) {
	payload := []byte{byte(Integra128)}
	payload = append(payload, []byte("1"+"12"+"20230601")...) // major=1 minor=12 date
	payload = append(payload, byte(LangEN))
	payload = append(payload, 0xFF)
	v := DecodeVersionData(payload)
	assert.Equal(t, Integra128, v.PanelType)
	assert.Equal(t, 1, v.Major)
	assert.Equal(t, 12, v.Minor)
	assert.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), v.Date)
	assert.Equal(t, LangEN, v.Lang)
	assert.True(t, v.InFlash)
}

func TestDecodeRtcDataStatusBits(t *testing.T) {
	payload := make([]byte, 9)
	copy(payload, []byte{0x20, 0x24, 0x03, 0x15, 0x09, 0x30, 0x00})
	payload[7] = (1 << 7) | 0x02 // service mode + dow=2
	payload[8] = (1 << 7) | 0x02 // acu100 + base type 2
	r := DecodeRtcData(payload)
	assert.Equal(t, Wednesday, r.DoW)
	assert.True(t, r.Status&RtcStatusServiceMode != 0)
	assert.True(t, r.Status&RtcStatusAcu100Present != 0)
	assert.Equal(t, Base64Or64Plus, r.BaseType)
}

func TestDecodeOutputPower(t *testing.T) {
	d := DecodeOutputPower([]byte{5, 0x00, 0x64})
	assert.Equal(t, 5, d.OutputNo)
	assert.Equal(t, 10.0, d.Power)
}

func TestDecodeZoneTemp(t *testing.T) {
	d := DecodeZoneTemp([]byte{3, 0x00, 0x78 + 0x6E})
	assert.Equal(t, 3, d.ZoneNo)
	assert.InDelta(t, 60.0, d.Temp, 0.01)
}

func TestEncodeEventTextRequest(t *testing.T) {
	out := EncodeEventTextRequest(0x0100, true)
	assert.Equal(t, []byte{0x81, 0x00}, out)
}

func TestEncodeEventRecordRequest(t *testing.T) {
	out := EncodeEventRecordRequest(0x010203)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, out)
}

func TestElementIDOffsetsByRange(t *testing.T) {
	assert.Equal(t, byte(5), ElementID(ElementRangePlain, 5))
	assert.Equal(t, byte(0x80+5), ElementID(ElementRangeExpander, 5))
	assert.Equal(t, byte(0xC0+5), ElementID(ElementRangeManipulator, 5))
	assert.Equal(t, byte(0xF0+5), ElementID(ElementRangeAdmin, 5))
}

func TestEncodeElementRequestZonePing(t *testing.T) {
	out := EncodeElementRequest(ElementZone, ElementRangePlain, 1)
	assert.Equal(t, []byte{0x01, 0x01}, out)
}

func TestDecodeElementName(t *testing.T) {
	name := "Front Door" + strings.Repeat(" ", 16-len("Front Door"))
	payload := append([]byte{byte(ElementZone), 0x01}, []byte(name)...)
	got := DecodeElementName(payload)
	assert.Equal(t, ElementZone, got.Kind)
	assert.Equal(t, byte(0x01), got.ID)
	assert.Equal(t, "Front Door", got.Name)
}

func TestDecodeElementNameShortPayload(t *testing.T) {
	assert.Equal(t, ElementNameData{}, DecodeElementName([]byte{0x01}))
}

func TestDecodeEventRecordStandardNoMore(t *testing.T) {
	payload := make([]byte, 14)
	rec := DecodeEventRecord(payload, EventSourceStandard)
	assert.True(t, rec.NoMore)
}

func TestDecodeEventRecordStandardPresent(t *testing.T) {
	payload := make([]byte, 14)
	payload[0] = 0x20 | 0x10 | 0x02 // bit 0x20 set (not NoMore), present, monitoring1=2
	payload[1] = byte(EventClassTroubles)<<5 | 12
	payload[2] = 5 << 4
	payload[3] = 30
	payload[4] = (3 << 3) | 0x04 | 0x01
	payload[5] = 0x20
	payload[6] = 7
	payload[7] = (2 << 5) | 9
	payload[8], payload[9], payload[10] = 0x00, 0x00, 0x05
	payload[11], payload[12], payload[13] = 0x00, 0x00, 0x06

	rec := DecodeEventRecord(payload, EventSourceStandard)
	assert.False(t, rec.NoMore)
	assert.True(t, rec.Present)
	assert.Equal(t, EventMonStatus(2), rec.MonitoringStatus1)
	assert.Equal(t, EventClassTroubles, rec.EventClass)
	assert.Equal(t, 12, rec.Day)
	assert.Equal(t, 5, rec.Month)
	assert.Equal(t, 3, rec.PartNo)
	assert.True(t, rec.Restore)
	assert.Equal(t, 7, rec.SourceNo)
	assert.Equal(t, 2, rec.ObjectNo)
	assert.Equal(t, 9, rec.UserCtrlNo)
	assert.Equal(t, 5, rec.Index)
	assert.Equal(t, 6, rec.IndexCalled)
}

func TestDecodeEventRecordGrade2NoMore(t *testing.T) {
	payload := make([]byte, 14)
	rec := DecodeEventRecord(payload, EventSourceGrade2)
	assert.True(t, rec.NoMore)
}

func TestDecodeEventRecordShortPayloadIsNoMore(t *testing.T) {
	assert.True(t, DecodeEventRecord([]byte{0x20}, EventSourceStandard).NoMore)
}

func TestEventRecordCodeFull(t *testing.T) {
	rec := EventRecord{Code: 0x0105, Restore: true}
	assert.Equal(t, 0x0505, rec.CodeFull())
}

func TestDecodeEventTextShort(t *testing.T) {
	payload := append([]byte{0x01, 0x05, 0x02, 0x00, 0x00}, []byte("Zone violated   ")...)
	got := DecodeEventText(payload)
	assert.Equal(t, 0x0105, got.EventCodeFull)
	assert.False(t, got.ShowLong)
	assert.Equal(t, "Zone violated   ", got.Text)
}

func TestDecodeEventTextLongFlag(t *testing.T) {
	payload := []byte{0x81, 0x05, 0x02, 0x00, 0x00}
	got := DecodeEventText(payload)
	assert.True(t, got.ShowLong)
	assert.Equal(t, 0x0105, got.EventCodeFull)
	assert.Equal(t, strings.Repeat(" ", 46), got.Text)
}
