package llm

import "fmt"

// New constructs the configured completion provider. An unknown provider is
// a fatal configuration error: commands that need inference surface it at
// startup instead of masking it as a malformed-response condition.
func New(provider, model, apiKey, baseURL string) (Completer, error) {
	if model == "" {
		return nil, fmt.Errorf("no model configured (set model in config or pass --model)")
	}
	switch provider {
	case "ollama", "":
		return NewOllamaCompleter(model), nil
	case "openai":
		return NewOpenAICompleter(apiKey, baseURL, model), nil
	case "anthropic":
		return NewAnthropicCompleter(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (valid: ollama, openai, anthropic)", provider)
	}
}
