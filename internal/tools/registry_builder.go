package tools

import (
	"fmt"

	"github.com/X-Luffy/Law-Agent/internal/config"
)

// BuildRegistry wires the mandatory tool catalog (spec §4.7) into a
// Registry using the runtime's tool configuration.
func BuildRegistry(cfg config.ToolsConfig) (*Registry, error) {
	r := NewRegistry()
	candidates := []Tool{
		NewWebSearch(cfg.BochaEndpoint, cfg.BochaAPIKey, 5),
		NewCalculator(),
		NewPythonExecutor(cfg.PythonTimeout),
		NewFileRead(cfg.FileReadRoot),
		NewDateTime(),
		NewWeather(cfg.WeatherEndpoint, cfg.WeatherAPIKey),
		NewWebCrawler(cfg.CrawlerMaxChars),
		NewDocumentGenerator(cfg.OutputDir),
	}
	for _, tool := range candidates {
		if err := r.Register(tool); err != nil {
			return nil, fmt.Errorf("tools: build registry: %w", err)
		}
	}
	return r, nil
}
