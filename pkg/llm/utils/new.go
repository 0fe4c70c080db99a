// Package llmutils is the llm utility package
package llmutils

import (
	"fmt"

	"github.com/parchmentlabs/engram/pkg/llm"
	"github.com/parchmentlabs/engram/pkg/llm/provider/ollama"
)

type NewGeneratorOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
}

func NewGenerator(o *NewGeneratorOpts) (llm.Generator, error) {
	switch o.ProviderType {
	case "ollama":
		return ollama.NewGenerator(ollama.GeneratorConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", o.ProviderType)
	}
}
