// Package listcmder provides the list command for showing everything
// held in memory.
package listcmder

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parchmentlabs/engram/pkg/cliui"
	"github.com/parchmentlabs/engram/pkg/config"
	memoryutils "github.com/parchmentlabs/engram/pkg/memory/utils"
)

const listLongDesc string = `List every document held in persistent memory.

Shows the id, file name, truncated summary, and the number of extracted
concepts and facts for each record.

Examples:
  engram list`

const listShortDesc string = "List learned documents"

type listCommander struct {
	storeDir string

	v *viper.Viper
}

func NewListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
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

func (c *listCommander) run() error {
	manager, _, err := memoryutils.NewManager(&memoryutils.NewManagerOpts{
		StoreDir: c.v.GetString("store.dir"),
		QuotaKB:  c.v.GetUint("store.quota_kb"),
	})
	if err != nil {
		return err
	}
	defer manager.Close()

	listings := manager.List()
	if len(listings) == 0 {
		fmt.Println(cliui.DimStyle.Render("Nothing learned yet. Try: engram learn <file>"))
		return nil
	}

	for _, listing := range listings {
		fmt.Printf("%s  %s\n",
			cliui.KeyStyle.Render(listing.ID),
			cliui.TitleStyle.Render(listing.Name),
		)
		if listing.Summary != "" {
			fmt.Printf("              %s\n", listing.Summary)
		}
		fmt.Printf("              %s\n\n", cliui.DimStyle.Render(
			fmt.Sprintf("%d concepts, %d facts", listing.ConceptCount, listing.FactCount),
		))
	}

	fmt.Printf("%d document(s) in memory\n", len(listings))

	return nil
}
