// Package contextcmder provides the context command for printing the
// knowledge block injected into chat system prompts.
package contextcmder

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parchmentlabs/engram/pkg/cliui"
	"github.com/parchmentlabs/engram/pkg/config"
	memoryutils "github.com/parchmentlabs/engram/pkg/memory/utils"
)

const contextLongDesc string = `Print the learned-knowledge block.

This is the exact text a chat frontend appends to its system prompt so
the model can draw on everything that has been learned. Prints nothing
when memory is empty.

Examples:
  engram context`

const contextShortDesc string = "Print the knowledge block for system prompts"

type contextCommander struct {
	storeDir string

	v *viper.Viper
}

func NewContextCmd() *cobra.Command {
	cmder := &contextCommander{}

	cmd := &cobra.Command{
		Use:   "context",
		Short: contextShortDesc,
		Long:  contextLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagStoreDir})

			cmder.v = v
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStoreDir, &cmder.storeDir)

	return cmd
}

func (c *contextCommander) run() error {
	manager, _, err := memoryutils.NewManager(&memoryutils.NewManagerOpts{
		StoreDir: c.v.GetString("store.dir"),
		QuotaKB:  c.v.GetUint("store.quota_kb"),
	})
	if err != nil {
		return err
	}
	defer manager.Close()

	block := manager.Context()
	if block == "" {
		fmt.Println(cliui.DimStyle.Render("Memory is empty; no context to inject."))
		return nil
	}

	fmt.Println(block)
	return nil
}
