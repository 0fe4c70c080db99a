// Package engramcmder
package engramcmder

import (
	"github.com/spf13/cobra"

	citecmder "github.com/parchmentlabs/engram/cmd/engram/cite"
	configcmder "github.com/parchmentlabs/engram/cmd/engram/config"
	contextcmder "github.com/parchmentlabs/engram/cmd/engram/context"
	forgetcmder "github.com/parchmentlabs/engram/cmd/engram/forget"
	initcmder "github.com/parchmentlabs/engram/cmd/engram/init"
	learncmder "github.com/parchmentlabs/engram/cmd/engram/learn"
	listcmder "github.com/parchmentlabs/engram/cmd/engram/list"
	servecmder "github.com/parchmentlabs/engram/cmd/engram/serve"
	showcmder "github.com/parchmentlabs/engram/cmd/engram/show"
	statscmder "github.com/parchmentlabs/engram/cmd/engram/stats"
	versioncmder "github.com/parchmentlabs/engram/cmd/version"
)

const engramLongDesc string = `Engram is persistent memory for your local chat assistant.

Teach it a document once and it remembers the distilled knowledge:
  engram learn <file>    Compress a document into memory
  engram list            List everything in memory
  engram context         Print the knowledge block injected into prompts
  engram serve           Run the memory API and MCP server`

const engramShortDesc string = "Engram - Persistent memory for local chat"

func NewEngramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engram",
		Short: engramShortDesc,
		Long:  engramLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .engram/ directory")

	// Add subcommands
	cmd.AddCommand(learncmder.NewLearnCmd())
	cmd.AddCommand(forgetcmder.NewForgetCmd())
	cmd.AddCommand(listcmder.NewListCmd())
	cmd.AddCommand(showcmder.NewShowCmd())
	cmd.AddCommand(contextcmder.NewContextCmd())
	cmd.AddCommand(citecmder.NewCiteCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
