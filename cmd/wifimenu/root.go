package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/wifimenu/internal/util"
)

var cfg *util.Config

// rootCmd represents the base command. Running it without a subcommand
// opens the network menu, which is the common invocation from a keybind.
var rootCmd = &cobra.Command{
	Use:   "wifimenu",
	Short: "Menu-driven Wi-Fi network manager",
	Long: `wifimenu is a keyboard-driven front end for NetworkManager:
- pick a network from a menu fed by a background scan daemon
- connect with bounded password retries and desktop notifications
- toggle the radio, share access via QR code, run a hotspot
- auto-start a VPN profile after connecting to configured networks

Bind "wifimenu" to a hotkey; run "wifimenu daemon" from your session
startup to keep the network list fresh.`,
	RunE: runMenu,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("log-level", "info",
		"log level (debug, info, warn, error)")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error
	cfg, err = util.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	util.InitLogger(cfg.LogLevel, cfg.LogFile)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("wifimenu version 1.0.0")
	},
}
