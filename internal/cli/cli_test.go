package cli

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestParseFlagsReadsCoreOptions(t *testing.T) {
	cfg, err := ParseFlags([]string{"-i", "in.s", "-o", "out.nes", "-chr", "chr.s", "-mirror", "-verify"})
	assert.NoError(t, err)
	assert.Equal(t, "in.s", cfg.Input)
	assert.Equal(t, "out.nes", cfg.Output)
	assert.Equal(t, "chr.s", cfg.CHR)
	assert.True(t, cfg.VerticalMirroring)
	assert.True(t, cfg.Verify)
}

func TestParseFlagsDefaultsAreOff(t *testing.T) {
	cfg, err := ParseFlags([]string{"-i", "in.s", "-o", "out.nes"})
	assert.NoError(t, err)
	assert.True(t, !cfg.VerticalMirroring)
	assert.True(t, !cfg.Verify)
	assert.True(t, !cfg.Debug)
	assert.True(t, !cfg.Quiet)
}

func TestParseFlagsRejectsMissingInput(t *testing.T) {
	_, err := ParseFlags([]string{"-o", "out.nes"})
	assert.Error(t, err)
}

func TestParseFlagsRejectsMissingOutput(t *testing.T) {
	_, err := ParseFlags([]string{"-i", "in.s"})
	assert.Error(t, err)
}

func TestUsageErrorShowUsageDoesNotPanic(t *testing.T) {
	_, err := ParseFlags([]string{"-o", "out.nes"})
	assert.Error(t, err)

	usageErr, ok := err.(*UsageError)
	assert.True(t, ok)
	usageErr.ShowUsage()
}
