package cloudcity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frankcohen/cloudcity"
)

func TestServerMode_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		mode  cloudcity.ServerMode
		valid bool
	}{
		{name: "browse mode is valid", mode: cloudcity.ModeBrowse, valid: true},
		{name: "device mode is valid", mode: cloudcity.ModeDevice, valid: true},
		{name: "empty mode is invalid", mode: "", valid: false},
		{name: "uppercase mode is invalid", mode: "BROWSE", valid: false},
		{name: "unknown mode is invalid", mode: "store", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.mode.IsValid())
		})
	}
}

func TestServerMode_DefaultPort(t *testing.T) {
	assert.Equal(t, 8088, cloudcity.ModeBrowse.DefaultPort())
	assert.Equal(t, 80, cloudcity.ModeDevice.DefaultPort())
}

func TestParseServerMode(t *testing.T) {
	mode, err := cloudcity.ParseServerMode("device")
	assert.NoError(t, err)
	assert.Equal(t, cloudcity.ModeDevice, mode)

	_, err = cloudcity.ParseServerMode("spa")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "valid modes: browse, device")
}
