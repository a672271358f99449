package utils

import (
	"strconv"
	"strings"

	"github.com/ArowuTest/raffle-explorer/internal/models"
)

var (
	tabletMarkers = []string{"ipad", "tablet", "kindle", "silk/", "playbook"}
	phoneMarkers  = []string{"iphone", "ipod", "windows phone", "blackberry", "opera mini", "mobile"}
)

// ParseDeviceClass maps a device query value to a DeviceClass
func ParseDeviceClass(value string) (models.DeviceClass, bool) {
	switch models.DeviceClass(strings.ToLower(strings.TrimSpace(value))) {
	case models.DevicePhone:
		return models.DevicePhone, true
	case models.DeviceTablet:
		return models.DeviceTablet, true
	case models.DeviceDesktop:
		return models.DeviceDesktop, true
	}
	return "", false
}

// DeviceClassFromUserAgent guesses the device class of a client, desktop when unsure
func DeviceClassFromUserAgent(userAgent string) models.DeviceClass {
	ua := strings.ToLower(userAgent)
	if ua == "" {
		return models.DeviceDesktop
	}
	for _, marker := range tabletMarkers {
		if strings.Contains(ua, marker) {
			return models.DeviceTablet
		}
	}
	// Android tablets omit "mobile"
	if strings.Contains(ua, "android") {
		if strings.Contains(ua, "mobile") {
			return models.DevicePhone
		}
		return models.DeviceTablet
	}
	for _, marker := range phoneMarkers {
		if strings.Contains(ua, marker) {
			return models.DevicePhone
		}
	}
	return models.DeviceDesktop
}

// ResolveDeviceClass prefers an explicit device value over the user agent
func ResolveDeviceClass(query, userAgent string) models.DeviceClass {
	if device, ok := ParseDeviceClass(query); ok {
		return device
	}
	return DeviceClassFromUserAgent(userAgent)
}

// ParseBool reads a flag query value. Empty means false; "1", "true", "yes" and "on" mean true.
func ParseBool(value string) (bool, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "":
		return false, nil
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(value)
}
