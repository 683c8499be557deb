package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRejectsInternalModeOnNonLoopbackHost(t *testing.T) {
	cfg := New()
	cfg.Network.Mode = ModeInternal
	cfg.Network.Internal.Enabled = true
	cfg.Network.Internal.Host = "0.0.0.0"

	assert.Error(t, cfg.Validate())
}

func TestValidateAcceptsInternalModeOnLoopback(t *testing.T) {
	cfg := New()
	cfg.Network.Mode = ModeInternal
	cfg.Network.Internal.Enabled = true
	cfg.Network.Internal.Host = "127.0.0.1"

	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsExternalModeWhenExternalDisabled(t *testing.T) {
	cfg := New()
	cfg.Network.Mode = ModeExternal
	cfg.Network.External.Enabled = false

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsDualModeWithNothingEnabled(t *testing.T) {
	cfg := New()
	cfg.Network.Mode = ModeDual
	cfg.Network.Internal.Enabled = false
	cfg.Network.External.Enabled = false

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := New()
	cfg.Network.Mode = Mode("bogus")

	assert.Error(t, cfg.Validate())
}

func TestNewDefaultsPassValidation(t *testing.T) {
	cfg := New()
	assert.NoError(t, cfg.Validate())
}
