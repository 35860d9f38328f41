// lanctl is a small debug client for the LAN and SOL configuration
// parameter commands, speaking session-less IPMI v1.5 over UDP.
package main

import (
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/openbmc-go/netipmid/internal/ipmi"
)

var (
	target  string
	channel uint8
	timeout time.Duration
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lanctl",
		Short:         "Query and set BMC LAN/SOL configuration parameters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&target, "target", "127.0.0.1:623", "BMC RMCP address")
	rootCmd.PersistentFlags().Uint8Var(&channel, "channel", 1, "IPMI channel number")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Second, "response timeout")

	rootCmd.AddCommand(newGetLanCmd(), newSetLanCmd(), newGetSolCmd())
	return rootCmd
}

func newGetLanCmd() *cobra.Command {
	var set, block uint8
	cmd := &cobra.Command{
		Use:   "get-lan <parameter>",
		Short: "Get a LAN configuration parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			param, err := parseByte(args[0])
			if err != nil {
				return err
			}
			data := []byte{channel & 0x0f, param, set, block}
			return execute(ipmi.NetFnTransport, ipmi.CmdGetLANConfigParams, data)
		},
	}
	cmd.Flags().Uint8Var(&set, "set", 0, "set selector")
	cmd.Flags().Uint8Var(&block, "block", 0, "block selector")
	return cmd
}

func newSetLanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-lan <parameter> <hex-data>",
		Short: "Set a LAN configuration parameter from raw hex bytes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			param, err := parseByte(args[0])
			if err != nil {
				return err
			}
			value, err := hex.DecodeString(args[1])
			if err != nil {
				return fmt.Errorf("parsing hex data: %w", err)
			}
			data := append([]byte{channel & 0x0f, param}, value...)
			return execute(ipmi.NetFnTransport, ipmi.CmdSetLANConfigParams, data)
		},
	}
}

func newGetSolCmd() *cobra.Command {
	var set, block uint8
	cmd := &cobra.Command{
		Use:   "get-sol <parameter>",
		Short: "Get a SOL configuration parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			param, err := parseByte(args[0])
			if err != nil {
				return err
			}
			data := []byte{channel & 0x0f, param, set, block}
			return execute(ipmi.NetFnTransport, ipmi.CmdGetSOLConfigParams, data)
		},
	}
	cmd.Flags().Uint8Var(&set, "set", 0, "set selector")
	cmd.Flags().Uint8Var(&block, "block", 0, "block selector")
	return cmd
}

func parseByte(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("parsing parameter %q: %w", s, err)
	}
	return uint8(n), nil
}

// execute sends one request and prints the completion code and response
// data.
func execute(netFn, cmd uint8, data []byte) error {
	conn, err := net.Dial("udp", target)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", target, err)
	}
	defer conn.Close()

	req := ipmi.SerializeIPMIRequest(netFn, cmd, data, 0)
	if _, err := conn.Write(req); err != nil {
		return fmt.Errorf("sending request: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	_, payload, err := ipmi.ParseRMCPMessage(buf[:n])
	if err != nil {
		return fmt.Errorf("parsing RMCP response: %w", err)
	}
	_, msg, err := ipmi.ParseIPMI15Message(payload)
	if err != nil {
		return fmt.Errorf("parsing IPMI response: %w", err)
	}
	if len(msg.Data) == 0 {
		return fmt.Errorf("empty response")
	}

	code := ipmi.CompletionCode(msg.Data[0])
	fmt.Printf("completion code: 0x%02x\n", uint8(code))
	if len(msg.Data) > 1 {
		fmt.Printf("data: %s\n", hex.EncodeToString(msg.Data[1:]))
	}
	if code != ipmi.CompletionCodeOK {
		os.Exit(1)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
