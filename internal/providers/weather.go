package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"lightnav/internal/metrics"
	"lightnav/internal/model"
)

const defaultWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// conditions that reduce driving visibility
var reducedVisibility = []string{"rain", "snow", "fog", "mist", "drizzle", "thunderstorm"}

// OpenWeather fetches current conditions from OpenWeatherMap. A missing key
// or upstream auth failure maps to ErrUnavailable.
type OpenWeather struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

func NewOpenWeather(apiKey string) *OpenWeather {
	return &OpenWeather{
		APIKey:  apiKey,
		BaseURL: defaultWeatherURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *OpenWeather) Current(ctx context.Context, lat, lon float64) (model.WeatherInfo, error) {
	if c.APIKey == "" {
		return model.WeatherInfo{}, ErrUnavailable
	}
	url := fmt.Sprintf("%s?lat=%f&lon=%f&appid=%s&units=metric", c.BaseURL, lat, lon, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.WeatherInfo{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Printf("weather provider: request failed: %v", err)
		return model.WeatherInfo{}, ErrUnavailable
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusUnauthorized {
		log.Printf("weather provider: invalid API key")
		return model.WeatherInfo{}, ErrUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues("openweather", "unavailable").Inc()
		return model.WeatherInfo{}, ErrUnavailable
	}
	var body struct {
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.WeatherInfo{}, err
	}
	if len(body.Weather) == 0 {
		return model.WeatherInfo{}, ErrUnavailable
	}
	info := model.WeatherInfo{
		Condition:   body.Weather[0].Main,
		Description: body.Weather[0].Description,
		TempC:       body.Main.Temp,
	}
	info.VisibilityReduced = VisibilityReduced(info.Condition)
	metrics.ProviderRequests.WithLabelValues("openweather", "ok").Inc()
	return info, nil
}

// VisibilityReduced reports whether a condition label implies reduced
// driving visibility.
func VisibilityReduced(condition string) bool {
	c := strings.ToLower(condition)
	for _, w := range reducedVisibility {
		if strings.Contains(c, w) {
			return true
		}
	}
	return false
}
