package utils

import (
	"testing"

	"github.com/ArowuTest/raffle-explorer/internal/models"
)

func TestDeviceClassFromUserAgent(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      models.DeviceClass
	}{
		{"empty", "", models.DeviceDesktop},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148", models.DevicePhone},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 17_4 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148", models.DeviceTablet},
		{"android phone", "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/124.0 Mobile Safari/537.36", models.DevicePhone},
		{"android tablet", "Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 Chrome/124.0 Safari/537.36", models.DeviceTablet},
		{"desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/124.0 Safari/537.36", models.DeviceDesktop},
		{"curl", "curl/8.5.0", models.DeviceDesktop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeviceClassFromUserAgent(tt.userAgent); got != tt.want {
				t.Errorf("DeviceClassFromUserAgent() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolveDeviceClass(t *testing.T) {
	iphone := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) Mobile/15E148"
	if got := ResolveDeviceClass("Tablet", iphone); got != models.DeviceTablet {
		t.Errorf("explicit device ignored: %s", got)
	}
	if got := ResolveDeviceClass("watch", iphone); got != models.DevicePhone {
		t.Errorf("unknown device value should fall back to the user agent: %s", got)
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		value   string
		want    bool
		wantErr bool
	}{
		{"", false, false},
		{"true", true, false},
		{"1", true, false},
		{"yes", true, false},
		{"ON", true, false},
		{"false", false, false},
		{"0", false, false},
		{"off", false, false},
		{" true", true, false},
		{"TRUE ", true, false},
		{" False\t", false, false},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		got, err := ParseBool(tt.value)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseBool(%q) = %v, %v; want %v, err %v", tt.value, got, err, tt.want, tt.wantErr)
		}
	}
}
