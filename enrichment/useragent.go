package enrichment

import (
	"strings"

	"github.com/mssola/useragent"
)

// Device categories.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
)

// Client is the classification of a User-Agent header.
type Client struct {
	Browser *string
	OS      *string
	Device  *string
}

var tabletMarkers = []string{"ipad", "tablet", "kindle", "silk", "playbook"}

// ClassifyUserAgent extracts browser, OS and device category. An empty or
// unparsable header yields an empty Client.
func ClassifyUserAgent(header string) (c Client) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Client{}
	}

	defer func() {
		if recover() != nil {
			c = Client{}
		}
	}()

	ua := useragent.New(header)
	browser, _ := ua.Browser()
	osName := ua.OSInfo().Name

	return Client{
		Browser: nonEmpty(browser),
		OS:      nonEmpty(osName),
		Device:  nonEmpty(deviceCategory(ua, header)),
	}
}

func deviceCategory(ua *useragent.UserAgent, header string) string {
	if ua.Bot() {
		return DeviceBot
	}
	lower := strings.ToLower(header)
	for _, marker := range tabletMarkers {
		if strings.Contains(lower, marker) {
			return DeviceTablet
		}
	}
	// Android tablets omit the "Mobile" token.
	if strings.Contains(lower, "android") && !strings.Contains(lower, "mobile") {
		return DeviceTablet
	}
	if ua.Mobile() {
		return DeviceMobile
	}
	return DeviceDesktop
}
