package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/X-Luffy/Law-Agent/internal/llm"
)

// Weather reports current conditions for a city (spec §4.7: "weather
// (city → conditions)"), authenticated via WEATHER_API_KEY (spec §6).
// When no key is configured the tool degrades to a clear error rather
// than silently fabricating a forecast.
type Weather struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type weatherResponse struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
		Humidity int `json:"humidity"`
	} `json:"current"`
}

func NewWeather(endpoint, apiKey string) *Weather {
	if endpoint == "" {
		endpoint = "https://api.weatherapi.com/v1/current.json"
	}
	return &Weather{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *Weather) Name() string        { return "weather" }
func (w *Weather) Description() string { return "Returns current weather conditions for a city." }

func (w *Weather) ToSchema() llm.ToolSchema {
	return llm.ToolSchema{
		Type: "function",
		Function: llm.FunctionSchema{
			Name:        w.Name(),
			Description: w.Description(),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"city": map[string]any{
						"type":        "string",
						"description": "City name, e.g. 深圳",
					},
				},
				"required": []string{"city"},
			},
		},
	}
}

func (w *Weather) Execute(ctx context.Context, input string) (string, error) {
	city := ExtractPrimaryArgument(input)
	if strings.TrimSpace(city) == "" {
		return "", fmt.Errorf("weather: empty city")
	}
	if w.apiKey == "" {
		return "", fmt.Errorf("weather: WEATHER_API_KEY not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("weather: build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", w.apiKey)
	q.Set("q", city)
	req.URL.RawQuery = q.Encode()

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather: provider returned status %d", resp.StatusCode)
	}

	var parsed weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("weather: decode response: %w", err)
	}

	return fmt.Sprintf("%s: %.1f°C, %s, humidity %d%%",
		parsed.Location.Name, parsed.Current.TempC, parsed.Current.Condition.Text, parsed.Current.Humidity), nil
}
