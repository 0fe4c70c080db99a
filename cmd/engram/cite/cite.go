// Package citecmder provides the cite command for locating exact quotes
// in a document's retained text.
package citecmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parchmentlabs/engram/pkg/config"
	"github.com/parchmentlabs/engram/pkg/memory"
	memoryutils "github.com/parchmentlabs/engram/pkg/memory/utils"
)

const citeLongDesc string = `Find an exact quote in a document's retained text.

Searches the raw text kept alongside the compressed record (case
insensitive) and prints the match with surrounding context, so a claim
can be traced back to its source wording. Only the retained portion of
long documents is searchable.

Examples:
  engram cite a1b2c3d4e5f6 "quorum of replicas"`

const citeShortDesc string = "Locate an exact quote in a learned document"

type citeCommander struct {
	storeDir string

	v *viper.Viper
}

func NewCiteCmd() *cobra.Command {
	cmder := &citeCommander{}

	cmd := &cobra.Command{
		Use:   "cite <id> <quote>",
		Short: citeShortDesc,
		Long:  citeLongDesc,
		Args:  cobra.ExactArgs(2),
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
			return cmder.run(args[0], args[1])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStoreDir, &cmder.storeDir)

	return cmd
}

func (c *citeCommander) run(id, quote string) error {
	manager, _, err := memoryutils.NewManager(&memoryutils.NewManagerOpts{
		StoreDir: c.v.GetString("store.dir"),
		QuotaKB:  c.v.GetUint("store.quota_kb"),
	})
	if err != nil {
		return err
	}
	defer manager.Close()

	citation, err := manager.Cite(id, quote)
	if err != nil {
		switch {
		case errors.Is(err, memory.ErrNotFound):
			return fmt.Errorf("no document with id %q", id)
		case errors.Is(err, memory.ErrNoCitation):
			return fmt.Errorf("quote not found in %q", id)
		default:
			return err
		}
	}

	fmt.Printf("...%s...\n", citation)
	return nil
}
