// Package forgetcmder provides the forget command for removing documents
// from memory.
package forgetcmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parchmentlabs/engram/pkg/cliui"
	"github.com/parchmentlabs/engram/pkg/config"
	"github.com/parchmentlabs/engram/pkg/memory"
	memoryutils "github.com/parchmentlabs/engram/pkg/memory/utils"
)

const forgetLongDesc string = `Remove a document from persistent memory.

The record is deleted from the backing file and stops contributing to
the knowledge block. Use "engram list" to find document ids.

Examples:
  engram forget a1b2c3d4e5f6`

const forgetShortDesc string = "Remove a document from memory"

type forgetCommander struct {
	storeDir string

	v *viper.Viper
}

func NewForgetCmd() *cobra.Command {
	cmder := &forgetCommander{}

	cmd := &cobra.Command{
		Use:   "forget <id>",
		Short: forgetShortDesc,
		Long:  forgetLongDesc,
		Args:  cobra.ExactArgs(1),
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
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStoreDir, &cmder.storeDir)

	return cmd
}

func (c *forgetCommander) run(ctx context.Context, id string) error {
	manager, _, err := memoryutils.NewManager(&memoryutils.NewManagerOpts{
		StoreDir: c.v.GetString("store.dir"),
		QuotaKB:  c.v.GetUint("store.quota_kb"),
	})
	if err != nil {
		return err
	}
	defer manager.Close()

	if err := manager.Forget(ctx, id); err != nil {
		if errors.Is(err, memory.ErrNotFound) {
			return fmt.Errorf("no document with id %q", id)
		}
		return err
	}

	fmt.Printf("%s Forgot %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(id))
	return nil
}
