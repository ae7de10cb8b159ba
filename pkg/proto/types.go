package proto

// DayOfWeek mirrors the panel's Monday=0 week numbering, used by the RTC
// response.
type DayOfWeek int

const (
	Monday DayOfWeek = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// PanelType identifies the Integra hardware variant reported by
// READ_INTEGRA_VERSION, grounded on original_source/.../base.py
// (IntegraType). This is distinct from PanelBaseType, which is the
// coarser family reported by READ_RTC_AND_STATUS.
type PanelType byte

const (
	Integra24          PanelType = 0
	Integra32          PanelType = 1
	Integra64          PanelType = 2
	Integra128         PanelType = 3
	Integra128WrlSim300 PanelType = 4
	Integra64Plus       PanelType = 66
	Integra128Plus      PanelType = 67
	Integra256Plus      PanelType = 68
	Integra128WrlLeon   PanelType = 132
	IntegraUnknown      PanelType = 255
)

// PanelBaseType is the 4-bit family code packed into the RTC/status
// response's low nibble.
type PanelBaseType byte

const (
	Base24         PanelBaseType = 0
	Base32         PanelBaseType = 1
	Base64Or64Plus PanelBaseType = 2
	Base128Family  PanelBaseType = 3
	Base128Wrl     PanelBaseType = 4
	Base256Plus    PanelBaseType = 8
	BaseUnknown    PanelBaseType = 255
)

// Lang is the panel's configured UI language (READ_INTEGRA_VERSION).
type Lang byte

const (
	LangPL Lang = iota
	LangEN
	LangUA
	LangRU
	LangDE
	LangSK
	LangIT
	LangCZ
	LangHU
	LangNL
	LangIE
	LangNO
	LangDK
	LangIS
	LangGR
	LangFR
	LangES
	LangPT
	LangFI
	LangSI
	LangUnknown Lang = 0xFF
)

// ModuleCaps are feature flags reported by READ_MODULE_VERSION's
// capability byte.
type ModuleCaps byte

const (
	ModuleCapsEmpty         ModuleCaps = 0
	ModuleCap32Byte         ModuleCaps = 1 << 0
	ModuleCapTrouble8       ModuleCaps = 1 << 1
	ModuleCapArmNoBypass    ModuleCaps = 1 << 2
)

// RtcStatus is the bitfield packed across the two status bytes trailing
// READ_RTC_AND_STATUS's date.
type RtcStatus byte

const (
	RtcStatusNone            RtcStatus = 0
	RtcStatusServiceMode     RtcStatus = 1 << 0
	RtcStatusTroubles        RtcStatus = 1 << 1
	RtcStatusAcu100Present   RtcStatus = 1 << 2
	RtcStatusIntRxPresent    RtcStatus = 1 << 3
	RtcStatusTroublesMemory  RtcStatus = 1 << 4
	RtcStatusGrade23Set      RtcStatus = 1 << 5
)

// FirstCodeAction selects what ENTER_1ST_CODE does with the code it reads.
type FirstCodeAction byte

const (
	FirstCodeArming FirstCodeAction = iota
	FirstCodeDisarming
	FirstCodeCanceling
)
