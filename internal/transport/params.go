// Package transport implements the IPMI Transport netfn command family:
// Set/Get LAN Configuration Parameters and Set/Get SOL Configuration
// Parameters.
package transport

// LanParam is a LAN configuration parameter selector (IPMI v2.0 table 23-4).
type LanParam uint8

const (
	LanParamSetStatus         LanParam = 0
	LanParamAuthSupport       LanParam = 1
	LanParamAuthEnables       LanParam = 2
	LanParamIP                LanParam = 3
	LanParamIPSrc             LanParam = 4
	LanParamMAC               LanParam = 5
	LanParamSubnetMask        LanParam = 6
	LanParamGateway1          LanParam = 12
	LanParamGateway1MAC       LanParam = 13
	LanParamVLANID            LanParam = 20
	LanParamCipherSupport     LanParam = 22
	LanParamCipherEntries     LanParam = 23
	LanParamCipherPrivLevels  LanParam = 24
	LanParamIPFamilySupport   LanParam = 50
	LanParamIPFamilyEnables   LanParam = 51
	LanParamIPv6Status        LanParam = 55
	LanParamIPv6StaticAddrs   LanParam = 56
	LanParamIPv6DynamicAddrs  LanParam = 59
	LanParamIPv6RouterControl LanParam = 64
	LanParamIPv6Router1IP     LanParam = 65
	LanParamIPv6Router1MAC    LanParam = 66
	LanParamIPv6Router1PfxLen LanParam = 67
	LanParamIPv6Router1PfxVal LanParam = 68
)

// SolParam is a SOL configuration parameter selector.
type SolParam uint8

const (
	SolParamProgress   SolParam = 0
	SolParamEnable     SolParam = 1
	SolParamAuth       SolParam = 2
	SolParamAccumulate SolParam = 3
	SolParamRetry      SolParam = 4
	SolParamNVBitRate  SolParam = 5
	SolParamVBitRate   SolParam = 6
	SolParamChannel    SolParam = 7
	SolParamPort       SolParam = 8
)

// OEM parameter selectors delegate to an injected handler.
const (
	oemParamStart = 192
	oemParamEnd   = 255
)

// SetStatus is the per-channel Set-In-Progress state.
type SetStatus uint8

const (
	SetComplete   SetStatus = 0
	SetInProgress SetStatus = 1
	SetCommit     SetStatus = 2
)

// IPSrc is the IPMI IP Address Source selector.
type IPSrc uint8

const (
	IPSrcUnspecified IPSrc = 0
	IPSrcStatic      IPSrc = 1
	IPSrcDHCP        IPSrc = 2
	IPSrcBIOS        IPSrc = 3
	IPSrcBMC         IPSrc = 4
)

// IPFamilyEnables selects which address families are active.
type IPFamilyEnables uint8

const (
	IPFamilyEnablesV4Only    IPFamilyEnables = 0
	IPFamilyEnablesV6Only    IPFamilyEnables = 1
	IPFamilyEnablesDualStack IPFamilyEnables = 2
)

// Bit positions in the IP family support byte.
const (
	ipFamilySupportBitV6Only   = 0
	ipFamilySupportBitDual     = 1
	ipFamilySupportBitV6Alerts = 2
)

// Bit positions in the IPv6 status byte.
const (
	ipv6StatusBitDHCP  = 0
	ipv6StatusBitSLAAC = 1
)

// Bit positions in the IPv6 router control byte.
const (
	ipv6RouterControlBitStatic  = 0
	ipv6RouterControlBitDynamic = 1
)

// IPv6Source is the wire encoding of an IPv6 address origin.
type IPv6Source uint8

const (
	IPv6SourceStatic IPv6Source = 0
	IPv6SourceSLAAC  IPv6Source = 1
	IPv6SourceDHCP   IPv6Source = 2
)

// IPv6AddressStatus is the wire encoding of an address slot's state.
type IPv6AddressStatus uint8

const (
	IPv6AddressActive   IPv6AddressStatus = 0
	IPv6AddressDisabled IPv6AddressStatus = 1
)

// lanConfigRevision is the parameter revision byte returned in Get LAN/SOL
// Config responses: revision 1.1.
const lanConfigRevision = 0x11

// SOL privilege bounds (User..OEM).
const (
	solPrivilegeMin = 2
	solPrivilegeMax = 5
)

// ipmiStdPort is the fixed SOL payload port.
const ipmiStdPort = 623
