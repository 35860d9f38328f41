package ipmi

// RegisterApp installs the minimal App netfn surface standard tooling probes
// before issuing Transport commands.
func RegisterApp(r *Router) {
	r.Register(NetFnApp, CmdGetDeviceID, func(*IPMIMessage) (CompletionCode, []byte) {
		return handleGetDeviceID()
	})
}

// handleGetDeviceID returns a static device identity: IPMI 2.0, no additional
// device support beyond LAN configuration.
func handleGetDeviceID() (CompletionCode, []byte) {
	return CompletionCodeOK, []byte{
		0x20,       // Device ID
		0x01,       // Device revision
		0x01,       // Firmware revision major
		0x00,       // Firmware revision minor
		0x02,       // IPMI version 2.0 (BCD)
		0x00,       // Additional device support
		0x00, 0x00, 0x00, // Manufacturer ID
		0x00, 0x00, // Product ID
	}
}
