// Package learncmder provides the learn command for compressing documents
// into persistent memory.
package learncmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parchmentlabs/engram/pkg/cliui"
	"github.com/parchmentlabs/engram/pkg/config"
	"github.com/parchmentlabs/engram/pkg/logger"
	memoryutils "github.com/parchmentlabs/engram/pkg/memory/utils"
)

const learnLongDesc string = `Compress a document into persistent memory.

Reads the file, distills it through the configured model into a compact
record (summary, key concepts, important facts), and stores it in the
memory backing file. Re-learning a file with the same name overwrites
the previous record instead of duplicating it.

If the model service is unreachable the document is still remembered
through a degraded extraction path.

Supported formats: .txt, .md, .markdown, .text, .pdf

Examples:
  engram learn notes.md
  engram learn paper.pdf --model llama3.2
  engram learn README.md docs/*.md --quota-kb 4000`

const learnShortDesc string = "Compress a document into memory"

type learnCommander struct {
	storeDir      string
	quotaKB       uint
	modelProvider string
	modelTarget   string
	modelName     string
	debug         bool

	v *viper.Viper
}

func NewLearnCmd() *cobra.Command {
	cmder := &learnCommander{}

	cmd := &cobra.Command{
		Use:   "learn <file>...",
		Short: learnShortDesc,
		Long:  learnLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagStoreDir,
				config.FlagQuotaKB,
				config.FlagModelProvider,
				config.FlagModelTarget,
				config.FlagModelName,
			})

			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context(), args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStoreDir, &cmder.storeDir)
	config.AddUintFlag(cmd, config.Flags, config.FlagQuotaKB, &cmder.quotaKB)
	config.AddStringFlag(cmd, config.Flags, config.FlagModelProvider, &cmder.modelProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagModelTarget, &cmder.modelTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagModelName, &cmder.modelName)

	return cmd
}

func (c *learnCommander) run(ctx context.Context, paths []string) error {
	// Keep the manager quiet unless debugging; its progress is already
	// shown by the step spinner.
	log := logger.Nop()
	if c.debug {
		log = logger.New(
			logger.WithDebug(true),
			logger.WithPretty(true),
			logger.WithWriter(os.Stderr),
		)
	}

	manager, _, err := memoryutils.NewManager(&memoryutils.NewManagerOpts{
		StoreDir:      c.v.GetString("store.dir"),
		QuotaKB:       c.v.GetUint("store.quota_kb"),
		ModelProvider: c.v.GetString("model.provider"),
		ModelTarget:   c.v.GetString("model.target"),
		ModelName:     c.v.GetString("model.name"),
		Logger:        log,
	})
	if err != nil {
		return err
	}
	defer manager.Close()

	for _, path := range paths {
		var id string
		err = cliui.Step(os.Stdout, fmt.Sprintf("Learning %s", path), func() error {
			var stepErr error
			id, stepErr = manager.Learn(ctx, path)
			return stepErr
		})
		if err != nil {
			return err
		}

		record, err := manager.Get(id)
		if err != nil {
			return err
		}

		fmt.Printf("\n  %s %s\n", cliui.KeyStyle.Render("id"), id)
		fmt.Printf("  %s %d concepts, %d facts\n\n",
			cliui.DimStyle.Render("extracted"),
			len(record.KeyConcepts),
			len(record.Facts),
		)
	}

	return nil
}
