package transport

import "github.com/openbmc-go/netipmid/internal/ipmi"

// OEMHandler serves LAN configuration parameter ids 192 through 255. The
// standard handlers delegate to it after their own parameter switch falls
// through.
type OEMHandler interface {
	SetLAN(channel uint8, param uint8, req *ipmi.Payload) ipmi.CompletionCode
	GetLAN(channel uint8, param uint8, set uint8, block uint8) (ipmi.CompletionCode, []byte)
}

// notSupportedOEM rejects every OEM parameter.
type notSupportedOEM struct{}

func (notSupportedOEM) SetLAN(uint8, uint8, *ipmi.Payload) ipmi.CompletionCode {
	return ipmi.CompletionCodeParamNotSupported
}

func (notSupportedOEM) GetLAN(uint8, uint8, uint8, uint8) (ipmi.CompletionCode, []byte) {
	return ipmi.CompletionCodeParamNotSupported, nil
}
