// Package weather 提供基于 Open-Meteo 的天气查询
// 先通过地理编码接口把地名解析成经纬度，再查询当前天气。
// Open-Meteo 免费开放，不需要 API Key
package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	geocodeEndpoint  = "https://geocoding-api.open-meteo.com/v1/search"
	forecastEndpoint = "https://api.open-meteo.com/v1/forecast"
)

// Report 一次天气查询的结果
type Report struct {
	Location    string  // 解析后的地名
	Temperature float64 // 摄氏气温
	Condition   string  // 天气类别的日文描述
}

// Client Open-Meteo 查询客户端
type Client struct {
	client *resty.Client
}

// NewClient 创建天气查询客户端
func NewClient() *Client {
	client := resty.New()
	client.SetTimeout(15 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; Shion/1.0)")
	return &Client{client: client}
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
}

// Current 查询指定地名的当前天气
func (c *Client) Current(ctx context.Context, location string) (*Report, error) {
	var geo geocodeResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"name":     location,
			"count":    "1",
			"language": "ja",
		}).
		SetResult(&geo).
		Get(geocodeEndpoint)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("HTTP error %d from geocoding API", resp.StatusCode())
	}
	if len(geo.Results) == 0 {
		return nil, fmt.Errorf("location not found: %s", location)
	}
	place := geo.Results[0]

	var forecast forecastResponse
	resp, err = c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":  fmt.Sprintf("%.4f", place.Latitude),
			"longitude": fmt.Sprintf("%.4f", place.Longitude),
			"current":   "temperature_2m,weather_code",
		}).
		SetResult(&forecast).
		Get(forecastEndpoint)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("HTTP error %d from forecast API", resp.StatusCode())
	}

	return &Report{
		Location:    place.Name,
		Temperature: forecast.Current.Temperature,
		Condition:   ConditionText(forecast.Current.WeatherCode),
	}, nil
}

// ConditionText 把 WMO 天气代码映射为日文类别
// 代码表见 https://open-meteo.com/en/docs（WMO Weather interpretation codes）
func ConditionText(code int) string {
	switch {
	case code == 0:
		return "快晴"
	case code <= 2:
		return "晴れ"
	case code == 3:
		return "くもり"
	case code <= 48:
		return "霧"
	case code <= 57:
		return "霧雨"
	case code <= 67:
		return "雨"
	case code <= 77:
		return "雪"
	case code <= 82:
		return "にわか雨"
	case code <= 86:
		return "にわか雪"
	case code <= 99:
		return "雷雨"
	default:
		return "不明"
	}
}
