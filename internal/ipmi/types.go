package ipmi

// RMCP constants
const (
	RMCPVersion1  = 0x06
	RMCPClassASF  = 0x06
	RMCPClassIPMI = 0x07
)

// Authentication types
const (
	AuthTypeNone     = 0x00
	AuthTypeMD2      = 0x01
	AuthTypeMD5      = 0x02
	AuthTypePassword = 0x04
	AuthTypeOEM      = 0x05
	AuthTypeRMCPPlus = 0x06
)

// IPMI Network Functions
const (
	NetFnApp       = 0x06
	NetFnTransport = 0x0C
)

// IPMI App Commands
const (
	CmdGetDeviceID = 0x01
)

// IPMI Transport Commands
const (
	CmdSetLANConfigParams = 0x01
	CmdGetLANConfigParams = 0x02
	CmdSetSOLConfigParams = 0x21
	CmdGetSOLConfigParams = 0x22
)

// CompletionCode represents an IPMI completion code
type CompletionCode uint8

const (
	CompletionCodeOK                  CompletionCode = 0x00
	CompletionCodeNodeBusy            CompletionCode = 0xC0
	CompletionCodeInvalidCommand      CompletionCode = 0xC1
	CompletionCodeInvalidForLUN       CompletionCode = 0xC2
	CompletionCodeTimeout             CompletionCode = 0xC3
	CompletionCodeOutOfSpace          CompletionCode = 0xC4
	CompletionCodeReqDataLenInvalid   CompletionCode = 0xC7
	CompletionCodeParameterOutOfRange CompletionCode = 0xC9
	CompletionCodeInvalidField        CompletionCode = 0xCC
	CompletionCodeCommandNotAvailable CompletionCode = 0xD5
	CompletionCodeUnspecified         CompletionCode = 0xFF
)

// Command-specific codes for the LAN/SOL configuration parameter families.
const (
	CompletionCodeParamNotSupported   CompletionCode = 0x80
	CompletionCodeSetInProgressActive CompletionCode = 0x81
	CompletionCodeParamReadOnly       CompletionCode = 0x82
)
