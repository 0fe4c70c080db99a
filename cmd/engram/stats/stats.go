// Package statscmder provides the stats command for reporting compression
// statistics.
package statscmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parchmentlabs/engram/pkg/cliui"
	"github.com/parchmentlabs/engram/pkg/config"
	"github.com/parchmentlabs/engram/pkg/memory"
	memoryutils "github.com/parchmentlabs/engram/pkg/memory/utils"
)

const statsLongDesc string = `Show compression statistics for a learned document.

Reports the size of the retained original text, the size of the
compressed record, and the resulting compression ratio.

Examples:
  engram stats a1b2c3d4e5f6`

const statsShortDesc string = "Show compression statistics for a document"

type statsCommander struct {
	storeDir string

	v *viper.Viper
}

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats <id>",
		Short: statsShortDesc,
		Long:  statsLongDesc,
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
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.run(args[0])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStoreDir, &cmder.storeDir)

	return cmd
}

func (c *statsCommander) run(id string) error {
	manager, _, err := memoryutils.NewManager(&memoryutils.NewManagerOpts{
		StoreDir: c.v.GetString("store.dir"),
		QuotaKB:  c.v.GetUint("store.quota_kb"),
	})
	if err != nil {
		return err
	}
	defer manager.Close()

	stats, err := manager.Stats(id)
	if err != nil {
		if errors.Is(err, memory.ErrNotFound) {
			return fmt.Errorf("no document with id %q", id)
		}
		return err
	}

	fmt.Printf("\n  %s %.2f KB\n", cliui.KeyStyle.Render("original  "), stats.OriginalKB)
	fmt.Printf("  %s %.2f KB\n", cliui.KeyStyle.Render("compressed"), stats.CompressedKB)
	fmt.Printf("  %s %.2fx (%.1f%% savings)\n\n",
		cliui.KeyStyle.Render("ratio     "),
		stats.Ratio,
		stats.SavingsPercent,
	)

	return nil
}
