package ipmi

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var commandsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ipmi_commands_total",
		Help: "IPMI commands processed, by netfn, command and completion code.",
	},
	[]string{"netfn", "cmd", "code"},
)

func observeCommand(netFn, cmd uint8, code CompletionCode) {
	commandsTotal.WithLabelValues(
		fmt.Sprintf("0x%02x", netFn),
		fmt.Sprintf("0x%02x", cmd),
		fmt.Sprintf("0x%02x", uint8(code)),
	).Inc()
}
