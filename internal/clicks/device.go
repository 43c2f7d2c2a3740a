package clicks

import (
	"github.com/mileusna/useragent"

	"linkly/internal/entities"
)

// Client is the parsed form of a User-Agent header.
type Client struct {
	Device  string
	Browser string
	OS      string
}

// ParseUserAgent classifies ua. Tablets win over mobile, and anything else is a desktop.
func ParseUserAgent(ua string) Client {
	parsed := useragent.Parse(ua)

	client := Client{
		Device:  entities.DeviceDesktop,
		Browser: orUnknown(parsed.Name),
		OS:      orUnknown(parsed.OS),
	}
	switch {
	case parsed.Tablet:
		client.Device = entities.DeviceTablet
	case parsed.Mobile:
		client.Device = entities.DeviceMobile
	}
	return client
}

func orUnknown(s string) string {
	if s == "" {
		return entities.Unknown
	}
	return s
}
