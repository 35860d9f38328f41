package transport

import (
	"errors"
	"net"

	"github.com/openbmc-go/netipmid/internal/cipher"
	"github.com/openbmc-go/netipmid/internal/ipmi"
	"github.com/openbmc-go/netipmid/internal/netcfg"
)

// SetLAN handles Set LAN Configuration Parameters. Request data is the
// channel byte, the parameter selector, and the parameter-specific payload.
func (h *Handler) SetLAN(msg *ipmi.IPMIMessage) (ipmi.CompletionCode, []byte) {
	req := ipmi.NewPayload(msg.Data)
	channel := uint8(req.UnpackBits(4))
	reserved := req.UnpackBits(4)
	param := req.UnpackUint8()
	if req.Err() != nil {
		return ipmi.CompletionCodeReqDataLenInvalid, nil
	}
	if reserved != 0 || !h.channels.IsValid(channel) {
		h.log.Error("set lan: invalid field in request", "channel", channel)
		return ipmi.CompletionCodeInvalidField, nil
	}

	switch LanParam(param) {
	case LanParamSetStatus:
		flag := req.UnpackBits(2)
		rsvd := req.UnpackBits(6)
		if !req.FullyUnpacked() {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		if rsvd != 0 {
			return ipmi.CompletionCodeInvalidField, nil
		}
		switch SetStatus(flag) {
		case SetComplete:
			h.putSetStatus(channel, SetComplete)
			return ipmi.CompletionCodeOK, nil
		case SetInProgress:
			if h.getSetStatus(channel) == SetInProgress {
				return ipmi.CompletionCodeSetInProgressActive, nil
			}
			h.putSetStatus(channel, SetInProgress)
			return ipmi.CompletionCodeOK, nil
		case SetCommit:
			if h.getSetStatus(channel) != SetInProgress {
				return ipmi.CompletionCodeInvalidField, nil
			}
			return ipmi.CompletionCodeOK, nil
		}
		return ipmi.CompletionCodeParamNotSupported, nil

	case LanParamAuthSupport, LanParamAuthEnables:
		return ipmi.CompletionCodeParamReadOnly, nil

	case LanParamIP:
		params, mode, code := h.resolveWithDHCP(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		if mode.V4() {
			return ipmi.CompletionCodeCommandNotAvailable, nil
		}
		bytes := req.UnpackBytes(netcfg.IPv4.WireSize)
		if !req.FullyUnpacked() {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		addr, err := netcfg.IPv4.AddrFromWire(bytes)
		if err != nil {
			return ipmi.CompletionCodeInvalidField, nil
		}
		if err := h.net.ReconfigureIfAddr4(params, &addr, nil); err != nil {
			h.channelLog(channel).Error("set lan: reconfiguring IPv4 address", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		return ipmi.CompletionCodeOK, nil

	case LanParamIPSrc:
		flag := req.UnpackBits(4)
		rsvd := req.UnpackBits(4)
		if !req.FullyUnpacked() {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		if rsvd != 0 {
			return ipmi.CompletionCodeInvalidField, nil
		}
		params, code := h.resolve(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		switch IPSrc(flag) {
		case IPSrcDHCP:
			// The IP source selector only governs IPv4. IPv6 DHCP is
			// toggled through its own parameter, so the merge logic
			// must leave the v6 bit alone.
			if err := h.net.SetDHCPv4Mode(params, netcfg.DHCPv4); err != nil {
				h.channelLog(channel).Error("set lan: enabling DHCPv4", "error", err)
				return ipmi.CompletionCodeUnspecified, nil
			}
			return ipmi.CompletionCodeOK, nil
		case IPSrcUnspecified, IPSrcStatic:
			if err := h.net.SetDHCPv4Mode(params, netcfg.DHCPNone); err != nil {
				h.channelLog(channel).Error("set lan: disabling DHCPv4", "error", err)
				return ipmi.CompletionCodeUnspecified, nil
			}
			return ipmi.CompletionCodeOK, nil
		case IPSrcBIOS, IPSrcBMC:
			return ipmi.CompletionCodeInvalidField, nil
		}
		return ipmi.CompletionCodeParamNotSupported, nil

	case LanParamMAC:
		mac := net.HardwareAddr(req.UnpackBytes(6))
		if !req.FullyUnpacked() {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		if !netcfg.IsValidMAC(mac) {
			return ipmi.CompletionCodeInvalidField, nil
		}
		params, code := h.resolve(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		if err := h.net.SetMAC(params, mac); err != nil {
			h.channelLog(channel).Error("set lan: setting MAC", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		return ipmi.CompletionCodeOK, nil

	case LanParamSubnetMask:
		params, mode, code := h.resolveWithDHCP(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		if mode.V4() {
			return ipmi.CompletionCodeCommandNotAvailable, nil
		}
		bytes := req.UnpackBytes(4)
		if !req.FullyUnpacked() {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		prefix, err := netcfg.NetmaskToPrefix([4]byte(bytes))
		if err != nil {
			return ipmi.CompletionCodeInvalidField, nil
		}
		if err := h.net.ReconfigureIfAddr4(params, nil, &prefix); err != nil {
			h.channelLog(channel).Error("set lan: reconfiguring IPv4 prefix", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		return ipmi.CompletionCodeOK, nil

	case LanParamGateway1:
		params, mode, code := h.resolveWithDHCP(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		if mode.V4() {
			return ipmi.CompletionCodeCommandNotAvailable, nil
		}
		return h.setGateway(channel, params, netcfg.IPv4, req), nil

	case LanParamGateway1MAC:
		params, code := h.resolve(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		return h.setGatewayMAC(channel, params, netcfg.IPv4, req), nil

	case LanParamVLANID:
		vlanData := req.UnpackBits(12)
		rsvd := req.UnpackBits(3)
		enable := req.UnpackBits(1)
		if !req.FullyUnpacked() {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		if rsvd != 0 {
			return ipmi.CompletionCodeInvalidField, nil
		}
		vlan := vlanData
		if enable == 0 {
			h.putLastDisabledVlan(channel, vlan)
			vlan = 0
		} else if vlan == 0 || vlan == netcfg.VLANMask {
			return ipmi.CompletionCodeInvalidField, nil
		}
		params, code := h.resolve(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		if err := h.net.ReconfigureVLAN(params, vlan); err != nil {
			h.channelLog(channel).Error("set lan: reconfiguring VLAN", "vlan", vlan, "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		return ipmi.CompletionCodeOK, nil

	case LanParamCipherSupport, LanParamCipherEntries, LanParamIPFamilySupport:
		return ipmi.CompletionCodeParamReadOnly, nil

	case LanParamIPFamilyEnables:
		enables := req.UnpackUint8()
		if !req.FullyUnpacked() {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		// Both families stay active; the single-stack modes are not offered.
		if IPFamilyEnables(enables) == IPFamilyEnablesDualStack {
			return ipmi.CompletionCodeOK, nil
		}
		return ipmi.CompletionCodeParamNotSupported, nil

	case LanParamIPv6Status, LanParamIPv6DynamicAddrs:
		return ipmi.CompletionCodeParamReadOnly, nil

	case LanParamIPv6StaticAddrs:
		set := req.UnpackUint8()
		rsvd := req.UnpackBits(7)
		enabled := req.UnpackBits(1)
		bytes := req.UnpackBytes(netcfg.IPv6.WireSize)
		prefix := req.UnpackUint8()
		req.UnpackUint8() // address status, informational on write
		if !req.FullyUnpacked() {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		if rsvd != 0 {
			return ipmi.CompletionCodeInvalidField, nil
		}
		params, code := h.resolve(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		if enabled != 0 {
			addr, err := netcfg.IPv6.AddrFromWire(bytes)
			if err != nil {
				return ipmi.CompletionCodeInvalidField, nil
			}
			if err := h.net.ReconfigureIfAddr6(params, set, addr, prefix); err != nil {
				h.channelLog(channel).Error("set lan: reconfiguring IPv6 address", "set", set, "error", err)
				return ipmi.CompletionCodeUnspecified, nil
			}
		} else {
			if err := h.net.DeconfigureIfAddr6(params, set); err != nil {
				h.channelLog(channel).Error("set lan: removing IPv6 address", "set", set, "error", err)
				return ipmi.CompletionCodeUnspecified, nil
			}
		}
		return ipmi.CompletionCodeOK, nil

	case LanParamIPv6RouterControl:
		control := req.UnpackUint8()
		if !req.FullyUnpacked() {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		_, mode, code := h.resolveWithDHCP(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		// Router discovery tracks the DHCP mode; only the matching flag
		// is accepted.
		expected := uint8(1) << ipv6RouterControlBitStatic
		if mode.V6() {
			expected = 1 << ipv6RouterControlBitDynamic
		}
		if control != expected {
			return ipmi.CompletionCodeInvalidField, nil
		}
		return ipmi.CompletionCodeOK, nil

	case LanParamIPv6Router1IP:
		params, code := h.resolve(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		return h.setGateway(channel, params, netcfg.IPv6, req), nil

	case LanParamIPv6Router1MAC:
		params, code := h.resolve(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		return h.setGatewayMAC(channel, params, netcfg.IPv6, req), nil

	case LanParamIPv6Router1PfxLen:
		prefix := req.UnpackUint8()
		if !req.FullyUnpacked() {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		if prefix != 0 {
			return ipmi.CompletionCodeInvalidField, nil
		}
		return ipmi.CompletionCodeOK, nil

	case LanParamIPv6Router1PfxVal:
		req.UnpackBytes(netcfg.IPv6.WireSize)
		if !req.FullyUnpacked() {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		// Any value is accepted since the prefix length is pinned to 0.
		return ipmi.CompletionCodeOK, nil

	case LanParamCipherPrivLevels:
		rsvd := req.UnpackUint8()
		var privs [cipher.MaxRecords]uint8
		for i := range privs {
			privs[i] = uint8(req.UnpackBits(4))
		}
		if !req.FullyUnpacked() {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		if rsvd != 0 {
			return ipmi.CompletionCodeInvalidField, nil
		}
		if err := h.ciphers.SetPrivileges(channel, privs); err != nil {
			if errors.Is(err, cipher.ErrInvalidPrivilege) {
				return ipmi.CompletionCodeInvalidField, nil
			}
			h.channelLog(channel).Error("set lan: storing cipher privileges", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		return ipmi.CompletionCodeOK, nil
	}

	if param >= oemParamStart && param <= oemParamEnd {
		return h.oem.SetLAN(channel, param, req), nil
	}
	return ipmi.CompletionCodeParamNotSupported, nil
}

// GetLAN handles Get LAN Configuration Parameters. Every successful response
// leads with the parameter revision byte.
func (h *Handler) GetLAN(msg *ipmi.IPMIMessage) (ipmi.CompletionCode, []byte) {
	req := ipmi.NewPayload(msg.Data)
	channel := uint8(req.UnpackBits(4))
	reserved := req.UnpackBits(3)
	revOnly := req.UnpackBits(1)
	param := req.UnpackUint8()
	set := req.UnpackUint8()
	block := req.UnpackUint8()
	if req.Err() != nil {
		return ipmi.CompletionCodeReqDataLenInvalid, nil
	}

	ret := ipmi.NewPayload(nil)
	ret.PackUint8(lanConfigRevision)
	if revOnly != 0 {
		return ipmi.CompletionCodeOK, ret.Bytes()
	}

	if reserved != 0 || !h.channels.IsValid(channel) {
		h.log.Error("get lan: invalid field in request", "channel", channel)
		return ipmi.CompletionCodeInvalidField, nil
	}

	switch LanParam(param) {
	case LanParamSetStatus:
		ret.PackBits(2, uint16(h.getSetStatus(channel)))
		ret.PackBits(6, 0)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamAuthSupport:
		ret.PackBits(6, 0)
		ret.PackBits(2, 0)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamAuthEnables:
		// one byte per privilege level: callback, user, operator, admin, OEM
		for i := 0; i < 5; i++ {
			ret.PackBits(6, 0)
			ret.PackBits(2, 0)
		}
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamIP:
		params, code := h.resolve(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		ifaddr, err := h.net.IfAddr4(params)
		if err != nil {
			h.channelLog(channel).Error("get lan: reading IPv4 address", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		ret.PackBytes(wireAddrOrZero(netcfg.IPv4, ifaddr))
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamIPSrc:
		_, mode, code := h.resolveWithDHCP(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		src := IPSrcStatic
		if mode.V4() {
			src = IPSrcDHCP
		}
		ret.PackBits(4, uint16(src))
		ret.PackBits(4, 0)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamMAC:
		params, code := h.resolve(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		mac, err := h.net.MAC(params)
		if err != nil {
			h.channelLog(channel).Error("get lan: reading MAC", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		ret.PackBytes(mac)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamSubnetMask:
		params, code := h.resolve(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		ifaddr, err := h.net.IfAddr4(params)
		if err != nil {
			h.channelLog(channel).Error("get lan: reading IPv4 address", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		prefix := netcfg.IPv4.DefaultPrefix
		if ifaddr != nil {
			prefix = ifaddr.Prefix
		}
		mask, err := netcfg.PrefixToNetmask(prefix)
		if err != nil {
			return ipmi.CompletionCodeUnspecified, nil
		}
		ret.PackBytes(mask[:])
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamGateway1:
		return h.getGateway(channel, netcfg.IPv4, ret)

	case LanParamGateway1MAC:
		return h.getGatewayMAC(channel, netcfg.IPv4, ret)

	case LanParamVLANID:
		params, code := h.resolve(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		vlan, err := h.net.VLANID(params)
		if err != nil {
			h.channelLog(channel).Error("get lan: reading VLAN id", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		if vlan != 0 {
			vlan |= netcfg.VLANEnableFlag
		} else {
			vlan = h.getLastDisabledVlan(channel)
		}
		ret.PackUint16(vlan)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamCipherSupport:
		if !h.channels.HasSession(channel) {
			return ipmi.CompletionCodeInvalidField, nil
		}
		suites, err := h.ciphers.Suites()
		if err != nil || len(suites) == 0 {
			h.log.Error("get lan: loading cipher suite list", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		ret.PackUint8(uint8(len(suites) - 1))
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamCipherEntries:
		if !h.channels.HasSession(channel) {
			return ipmi.CompletionCodeInvalidField, nil
		}
		suites, err := h.ciphers.Suites()
		if err != nil || len(suites) == 0 {
			h.log.Error("get lan: loading cipher suite list", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		ret.PackBytes(suites)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamIPFamilySupport:
		support := uint8(1<<ipFamilySupportBitDual | 1<<ipFamilySupportBitV6Alerts)
		ret.PackUint8(support)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamIPFamilyEnables:
		ret.PackUint8(uint8(IPFamilyEnablesDualStack))
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamIPv6Status:
		ret.PackUint8(netcfg.MaxIPv6StaticAddresses)
		ret.PackUint8(netcfg.MaxIPv6DynamicAddresses)
		ret.PackUint8(1<<ipv6StatusBitDHCP | 1<<ipv6StatusBitSLAAC)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamIPv6StaticAddrs:
		if set >= netcfg.MaxIPv6StaticAddresses {
			return ipmi.CompletionCodeParameterOutOfRange, nil
		}
		return h.getIPv6Address(channel, set, netcfg.OriginsV6Static, ret)

	case LanParamIPv6DynamicAddrs:
		if set >= netcfg.MaxIPv6DynamicAddresses {
			return ipmi.CompletionCodeParameterOutOfRange, nil
		}
		return h.getIPv6Address(channel, set, netcfg.OriginsV6Dynamic, ret)

	case LanParamIPv6RouterControl:
		_, mode, code := h.resolveWithDHCP(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		control := uint8(1) << ipv6RouterControlBitStatic
		if mode.V6() {
			control = 1 << ipv6RouterControlBitDynamic
		}
		ret.PackUint8(control)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamIPv6Router1IP:
		params, mode, code := h.resolveWithDHCP(channel)
		if code != ipmi.CompletionCodeOK {
			return code, nil
		}
		wire := make([]byte, netcfg.IPv6.WireSize)
		// A statically configured router is only reported when router
		// discovery is not dynamic.
		if !mode.V6() {
			gateway, ok, err := h.net.Gateway(params, netcfg.IPv6)
			if err != nil {
				h.channelLog(channel).Error("get lan: reading IPv6 gateway", "error", err)
				return ipmi.CompletionCodeUnspecified, nil
			}
			if ok {
				wire = netcfg.IPv6.AddrToWire(gateway)
			}
		}
		ret.PackBytes(wire)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamIPv6Router1MAC:
		return h.getGatewayMAC(channel, netcfg.IPv6, ret)

	case LanParamIPv6Router1PfxLen:
		ret.PackUint8(0)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamIPv6Router1PfxVal:
		ret.PackBytes(make([]byte, netcfg.IPv6.WireSize))
		return ipmi.CompletionCodeOK, ret.Bytes()

	case LanParamCipherPrivLevels:
		privs, err := h.ciphers.Privileges(channel)
		if err != nil {
			h.channelLog(channel).Error("get lan: loading cipher privileges", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		ret.PackUint8(0)
		for _, p := range privs {
			ret.PackBits(4, uint16(p))
		}
		return ipmi.CompletionCodeOK, ret.Bytes()
	}

	if param >= oemParamStart && param <= oemParamEnd {
		return h.oem.GetLAN(channel, param, set, block)
	}
	return ipmi.CompletionCodeParamNotSupported, nil
}

// resolve maps a channel to its network objects, translating lookup failures
// to completion codes.
func (h *Handler) resolve(channel uint8) (*netcfg.ChannelParams, ipmi.CompletionCode) {
	params, err := h.net.ResolveChannel(channel)
	if err != nil {
		h.channelLog(channel).Error("resolving channel", "error", err)
		return nil, ipmi.CompletionCodeUnspecified
	}
	return params, ipmi.CompletionCodeOK
}

// resolveWithDHCP resolves the channel and reads its current DHCP mode, used
// by the parameters whose behavior depends on it.
func (h *Handler) resolveWithDHCP(channel uint8) (*netcfg.ChannelParams, netcfg.DHCPMode, ipmi.CompletionCode) {
	params, code := h.resolve(channel)
	if code != ipmi.CompletionCodeOK {
		return nil, netcfg.DHCPNone, code
	}
	mode, err := h.net.DHCPMode(params)
	if err != nil {
		h.channelLog(channel).Error("reading DHCP mode", "error", err)
		return nil, netcfg.DHCPNone, ipmi.CompletionCodeUnspecified
	}
	return params, mode, ipmi.CompletionCodeOK
}

func (h *Handler) setGateway(channel uint8, params *netcfg.ChannelParams, family netcfg.Family, req *ipmi.Payload) ipmi.CompletionCode {
	bytes := req.UnpackBytes(family.WireSize)
	if !req.FullyUnpacked() {
		return ipmi.CompletionCodeReqDataLenInvalid
	}
	gateway, err := family.AddrFromWire(bytes)
	if err != nil {
		return ipmi.CompletionCodeInvalidField
	}
	if err := h.net.SetGateway(params, family, gateway); err != nil {
		h.channelLog(channel).Error("set lan: setting gateway", "family", family.Protocol, "error", err)
		return ipmi.CompletionCodeUnspecified
	}
	return ipmi.CompletionCodeOK
}

func (h *Handler) setGatewayMAC(channel uint8, params *netcfg.ChannelParams, family netcfg.Family, req *ipmi.Payload) ipmi.CompletionCode {
	mac := net.HardwareAddr(req.UnpackBytes(6))
	if !req.FullyUnpacked() {
		return ipmi.CompletionCodeReqDataLenInvalid
	}
	if err := h.net.ReconfigureGatewayMAC(params, family, mac); err != nil {
		h.channelLog(channel).Error("set lan: pinning gateway MAC", "family", family.Protocol, "error", err)
		return ipmi.CompletionCodeUnspecified
	}
	return ipmi.CompletionCodeOK
}

func (h *Handler) getGateway(channel uint8, family netcfg.Family, ret *ipmi.Payload) (ipmi.CompletionCode, []byte) {
	params, code := h.resolve(channel)
	if code != ipmi.CompletionCodeOK {
		return code, nil
	}
	gateway, ok, err := h.net.Gateway(params, family)
	if err != nil {
		h.channelLog(channel).Error("get lan: reading gateway", "family", family.Protocol, "error", err)
		return ipmi.CompletionCodeUnspecified, nil
	}
	wire := make([]byte, family.WireSize)
	if ok {
		wire = family.AddrToWire(gateway)
	}
	ret.PackBytes(wire)
	return ipmi.CompletionCodeOK, ret.Bytes()
}

func (h *Handler) getGatewayMAC(channel uint8, family netcfg.Family, ret *ipmi.Payload) (ipmi.CompletionCode, []byte) {
	params, code := h.resolve(channel)
	if code != ipmi.CompletionCodeOK {
		return code, nil
	}
	neighbor, err := h.net.GatewayNeighbor(params, family)
	if err != nil {
		h.channelLog(channel).Error("get lan: reading gateway neighbor", "family", family.Protocol, "error", err)
		return ipmi.CompletionCodeUnspecified, nil
	}
	mac := make([]byte, 6)
	if neighbor != nil {
		copy(mac, neighbor.MAC)
	}
	ret.PackBytes(mac)
	return ipmi.CompletionCodeOK, ret.Bytes()
}

// getIPv6Address renders one IPv6 address table slot: the set selector, a
// source/enabled byte, the address, prefix, and status.
func (h *Handler) getIPv6Address(channel uint8, set uint8, origins netcfg.OriginSet, ret *ipmi.Payload) (ipmi.CompletionCode, []byte) {
	params, code := h.resolve(channel)
	if code != ipmi.CompletionCodeOK {
		return code, nil
	}
	ifaddr, err := h.net.IfAddr(params, netcfg.IPv6, set, origins)
	if err != nil {
		h.channelLog(channel).Error("get lan: reading IPv6 address", "set", set, "error", err)
		return ipmi.CompletionCodeUnspecified, nil
	}

	source := IPv6SourceStatic
	enabled := uint16(0)
	wire := make([]byte, netcfg.IPv6.WireSize)
	prefix := netcfg.IPv6.DefaultPrefix
	status := IPv6AddressDisabled
	if ifaddr != nil {
		source = originToSource(ifaddr.Origin)
		enabled = 1
		wire = netcfg.IPv6.AddrToWire(ifaddr.Address)
		prefix = ifaddr.Prefix
		status = IPv6AddressActive
	}

	ret.PackUint8(set)
	ret.PackBits(4, uint16(source))
	ret.PackBits(3, 0)
	ret.PackBits(1, enabled)
	ret.PackBytes(wire)
	ret.PackUint8(prefix)
	ret.PackUint8(uint8(status))
	return ipmi.CompletionCodeOK, ret.Bytes()
}

func originToSource(o netcfg.Origin) IPv6Source {
	switch o {
	case netcfg.OriginDHCP:
		return IPv6SourceDHCP
	case netcfg.OriginSLAAC:
		return IPv6SourceSLAAC
	default:
		return IPv6SourceStatic
	}
}

// wireAddrOrZero renders the address in wire form, or an all-zero address
// when the entry is absent.
func wireAddrOrZero(family netcfg.Family, ifaddr *netcfg.IfAddr) []byte {
	if ifaddr == nil {
		return make([]byte, family.WireSize)
	}
	return family.AddrToWire(ifaddr.Address)
}
