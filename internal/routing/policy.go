// Package routing implements the Routing Policy: a stateless, side-effect
// free function from task name to (provider, model).
package routing

import (
	"os"

	"github.com/BurntSushi/toml"

	"jobcore/internal/config"
	"jobcore/internal/logging"
)

// latencySensitiveTasks get the lowest-latency configured provider absent
// an override (spec §4.D).
var latencySensitiveTasks = map[string]bool{
	"suggest":       true,
	"copilot_agent": true,
}

// latencyPriority ranks providers from lowest to highest typical latency;
// used only for latency-sensitive tasks.
var latencyPriority = []config.Provider{
	config.ProviderGemini,
	config.ProviderXAI,
	config.ProviderZAI,
	config.ProviderAnthropic,
	config.ProviderOpenAI,
	config.ProviderOpenRouter,
}

// Override is one routing.toml entry: a task-specific provider/model pin.
type Override struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
}

// Table is the parsed routing.toml document: per-task overrides.
type Table struct {
	Overrides map[string]Override `toml:"overrides"`
}

// LoadTable reads a routing.toml override table from path. A missing file
// is not an error — it just means no overrides are configured.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return Table{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Table{}, nil
	}

	var table Table
	if _, err := toml.DecodeFile(path, &table); err != nil {
		return Table{}, err
	}
	logging.Routing("loaded routing table from %s: %d overrides", path, len(table.Overrides))
	return table, nil
}

// Policy selects (provider, model) per task name. It is stateless: every
// call reads only its own immutable fields, per spec §4.D.
type Policy struct {
	llm   config.LLMConfig
	table Table
}

// NewPolicy builds a Policy from a resolved LLMConfig and override table.
func NewPolicy(llm config.LLMConfig, table Table) *Policy {
	return &Policy{llm: llm, table: table}
}

// Select implements the routing function: taskName -> (provider, model).
// Precedence: an explicit routing.toml override for taskName, then the
// task-class default (latency-sensitive vs. structured-output), then
// config.LLMConfig.DetectProvider as the final fallback.
func (p *Policy) Select(taskName string) (config.Provider, string) {
	if override, ok := p.table.Overrides[taskName]; ok && override.Provider != "" {
		provider := config.Provider(override.Provider)
		model := override.Model
		if model == "" {
			model = p.llm.Get(provider).Model
		}
		logging.Routing("task=%s routed by override: provider=%s model=%s", taskName, provider, model)
		return provider, model
	}

	if latencySensitiveTasks[taskName] {
		if provider, cfg, ok := p.firstConfigured(latencyPriority); ok {
			logging.Routing("task=%s routed by latency priority: provider=%s model=%s", taskName, provider, cfg.Model)
			return provider, cfg.Model
		}
	}

	provider, cfg, ok := p.llm.DetectProvider()
	if !ok {
		logging.RoutingWarn("task=%s: no provider configured with an API key", taskName)
		return "", ""
	}
	logging.Routing("task=%s routed by default provider: provider=%s model=%s", taskName, provider, cfg.Model)
	return provider, cfg.Model
}

func (p *Policy) firstConfigured(order []config.Provider) (config.Provider, config.ProviderConfig, bool) {
	for _, candidate := range order {
		cfg := p.llm.Get(candidate)
		if cfg.APIKey != "" {
			return candidate, cfg, true
		}
	}
	return "", config.ProviderConfig{}, false
}
