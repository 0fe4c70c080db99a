// Package showcmder provides the show command for inspecting a single
// memory record.
package showcmder

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parchmentlabs/engram/pkg/cliui"
	"github.com/parchmentlabs/engram/pkg/config"
	"github.com/parchmentlabs/engram/pkg/memory"
	memoryutils "github.com/parchmentlabs/engram/pkg/memory/utils"
)

const showLongDesc string = `Show the full memory record for one document.

Renders the stored summary, key concepts, important facts, and glossary
as formatted markdown. Use "engram list" to find document ids.

Examples:
  engram show a1b2c3d4e5f6
  engram show a1b2c3d4e5f6 --raw`

const showShortDesc string = "Show a document's memory record"

type showCommander struct {
	storeDir string
	raw      bool

	v *viper.Viper
}

func NewShowCmd() *cobra.Command {
	cmder := &showCommander{}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: showShortDesc,
		Long:  showLongDesc,
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
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the retained raw text instead of the record")

	return cmd
}

func (c *showCommander) run(id string) error {
	manager, _, err := memoryutils.NewManager(&memoryutils.NewManagerOpts{
		StoreDir: c.v.GetString("store.dir"),
		QuotaKB:  c.v.GetUint("store.quota_kb"),
	})
	if err != nil {
		return err
	}
	defer manager.Close()

	record, err := manager.Get(id)
	if err != nil {
		if errors.Is(err, memory.ErrNotFound) {
			return fmt.Errorf("no document with id %q", id)
		}
		return err
	}

	if c.raw {
		fmt.Println(record.RawText)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(recordMarkdown(record))
	if err != nil {
		// Fall back to the unrendered markdown.
		fmt.Println(recordMarkdown(record))
		return nil
	}

	fmt.Print(rendered)
	return nil
}

// recordMarkdown formats a record as a markdown document for terminal
// rendering.
func recordMarkdown(record *memory.Record) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", record.Name)
	fmt.Fprintf(&sb, "`%s`\n\n", record.ID)

	if record.Summary != "" {
		fmt.Fprintf(&sb, "%s\n\n", record.Summary)
	}

	if len(record.KeyConcepts) > 0 {
		sb.WriteString("## Key Concepts\n\n")
		for _, concept := range record.KeyConcepts {
			fmt.Fprintf(&sb, "- %s\n", concept)
		}
		sb.WriteString("\n")
	}

	if len(record.Facts) > 0 {
		sb.WriteString("## Important Facts\n\n")
		for _, fact := range record.Facts {
			fmt.Fprintf(&sb, "- %s\n", fact)
		}
		sb.WriteString("\n")
	}

	if len(record.Glossary) > 0 {
		sb.WriteString("## Definitions\n\n")
		terms := make([]string, 0, len(record.Glossary))
		for term := range record.Glossary {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			fmt.Fprintf(&sb, "- **%s**: %s\n", term, record.Glossary[term])
		}
		sb.WriteString("\n")
	}

	if record.Structure != "" {
		fmt.Fprintf(&sb, "_%s_\n", record.Structure)
	}

	return sb.String()
}
