package transport

import (
	"github.com/openbmc-go/netipmid/internal/ipmi"
)

const (
	solProgressMask   = 0x03
	solEnableMask     = 0x01
	solPrivilegeMask  = 0x0f
	solRetryCountMask = 0x07
	solAuthBit        = 6
	solEncryptBit     = 7
)

// SetSOL handles Set SOL Configuration Parameters. Parameter data is one
// byte, or two for the accumulate and retry pairs.
func (h *Handler) SetSOL(msg *ipmi.IPMIMessage) (ipmi.CompletionCode, []byte) {
	if len(msg.Data) < 3 || len(msg.Data) > 4 {
		return ipmi.CompletionCodeReqDataLenInvalid, nil
	}
	req := ipmi.NewPayload(msg.Data)
	req.AllowTrailing()
	channel := uint8(req.UnpackBits(4))
	reserved := req.UnpackBits(4)
	param := req.UnpackUint8()
	data1 := req.UnpackUint8()
	hasData2 := len(msg.Data) == 4
	var data2 uint8
	if hasData2 {
		data2 = req.UnpackUint8()
	}

	if reserved != 0 || !h.channels.IsValid(channel) || !h.channels.IsLAN(channel) {
		return ipmi.CompletionCodeInvalidField, nil
	}

	log := h.channelLog(channel)
	switch SolParam(param) {
	case SolParamProgress:
		if hasData2 {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		progress := data1 & solProgressMask
		current, err := h.sol.Progress(channel)
		if err != nil {
			log.Error("set sol: reading progress", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		if current == 1 && progress == 1 {
			return ipmi.CompletionCodeSetInProgressActive, nil
		}
		if err := h.sol.SetProgress(channel, progress); err != nil {
			log.Error("set sol: writing progress", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		return ipmi.CompletionCodeOK, nil

	case SolParamEnable:
		if hasData2 {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		if err := h.sol.SetEnabled(channel, data1&solEnableMask != 0); err != nil {
			log.Error("set sol: writing enable", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		return ipmi.CompletionCodeOK, nil

	case SolParamAuth:
		if hasData2 {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		privilege := data1 & solPrivilegeMask
		if privilege < solPrivilegeMin || privilege > solPrivilegeMax {
			return ipmi.CompletionCodeInvalidField, nil
		}
		if err := h.sol.SetPrivilege(channel, privilege); err != nil {
			log.Error("set sol: writing privilege", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		return ipmi.CompletionCodeOK, nil

	case SolParamAccumulate:
		if !hasData2 {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		if data2 == 0 {
			return ipmi.CompletionCodeInvalidField, nil
		}
		if err := h.sol.SetAccumulate(channel, data1, data2); err != nil {
			log.Error("set sol: writing accumulate interval", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		return ipmi.CompletionCodeOK, nil

	case SolParamRetry:
		if !hasData2 {
			return ipmi.CompletionCodeReqDataLenInvalid, nil
		}
		if err := h.sol.SetRetry(channel, data1&solRetryCountMask, data2); err != nil {
			log.Error("set sol: writing retry", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		return ipmi.CompletionCodeOK, nil

	case SolParamPort:
		return ipmi.CompletionCodeParamReadOnly, nil
	}

	return ipmi.CompletionCodeParamNotSupported, nil
}

// GetSOL handles Get SOL Configuration Parameters.
func (h *Handler) GetSOL(msg *ipmi.IPMIMessage) (ipmi.CompletionCode, []byte) {
	req := ipmi.NewPayload(msg.Data)
	channel := uint8(req.UnpackBits(4))
	reserved := req.UnpackBits(3)
	revOnly := req.UnpackBits(1)
	param := req.UnpackUint8()
	req.UnpackUint8() // set selector, unused
	req.UnpackUint8() // block selector, unused
	if req.Err() != nil {
		return ipmi.CompletionCodeReqDataLenInvalid, nil
	}

	if reserved != 0 || !h.channels.IsValid(channel) ||
		!h.channels.HasSession(channel) || !h.channels.IsLAN(channel) {
		return ipmi.CompletionCodeInvalidField, nil
	}

	ret := ipmi.NewPayload(nil)
	ret.PackUint8(lanConfigRevision)
	if revOnly != 0 {
		return ipmi.CompletionCodeOK, ret.Bytes()
	}

	log := h.channelLog(channel)
	switch SolParam(param) {
	case SolParamProgress:
		progress, err := h.sol.Progress(channel)
		if err != nil {
			log.Error("get sol: reading progress", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		ret.PackUint8(progress)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case SolParamEnable:
		enabled, err := h.sol.Enabled(channel)
		if err != nil {
			log.Error("get sol: reading enable", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		var b uint8
		if enabled {
			b = 1
		}
		ret.PackUint8(b)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case SolParamAuth:
		privilege, err := h.sol.Privilege(channel)
		if err != nil {
			log.Error("get sol: reading privilege", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		auth := privilege & solPrivilegeMask
		forceAuth, err := h.sol.ForceAuthentication(channel)
		if err != nil {
			log.Error("get sol: reading force authentication", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		if forceAuth {
			auth |= 1 << solAuthBit
		}
		forceEncrypt, err := h.sol.ForceEncryption(channel)
		if err != nil {
			log.Error("get sol: reading force encryption", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		if forceEncrypt {
			auth |= 1 << solEncryptBit
		}
		ret.PackUint8(auth)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case SolParamAccumulate:
		interval, threshold, err := h.sol.Accumulate(channel)
		if err != nil {
			log.Error("get sol: reading accumulate interval", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		ret.PackUint8(interval)
		ret.PackUint8(threshold)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case SolParamRetry:
		count, interval, err := h.sol.Retry(channel)
		if err != nil {
			log.Error("get sol: reading retry", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		ret.PackUint8(count & solRetryCountMask)
		ret.PackUint8(interval)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case SolParamChannel:
		ret.PackUint8(channel)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case SolParamPort:
		ret.PackUint16(ipmiStdPort)
		return ipmi.CompletionCodeOK, ret.Bytes()

	case SolParamNVBitRate, SolParamVBitRate:
		baud, err := h.sol.BaudRate()
		if err != nil {
			log.Error("get sol: reading baud rate", "error", err)
			return ipmi.CompletionCodeUnspecified, nil
		}
		ret.PackUint8(encodeBitRate(baud))
		return ipmi.CompletionCodeOK, ret.Bytes()
	}

	return ipmi.CompletionCodeParamNotSupported, nil
}

// encodeBitRate maps a console baud rate to the fixed SOL encoding set.
// Unknown rates report 0.
func encodeBitRate(baud uint32) uint8 {
	switch baud {
	case 9600:
		return 0x06
	case 19200:
		return 0x07
	case 38400:
		return 0x08
	case 57600:
		return 0x09
	case 115200:
		return 0x0a
	}
	return 0
}
