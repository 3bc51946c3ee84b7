package logger

import (
	"bytes"
	"testing"

	. "github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, name := range LevelNames {
		level, err := ParseLevel(name)
		NoError(t, err)
		if name != "disabled" {
			Equal(t, name, level.String())
		}
	}

	_, err := ParseLevel("verbose")
	Error(t, err)
}

func TestNewLoggerWithWriter(t *testing.T) {
	var out bytes.Buffer
	log := NewLoggerWithWriter(&out, "copier", InfoLevel, false)

	log.Debug().Msg("hidden")
	log.Info().Int("cell", 3).Msg("visible")

	NotContains(t, out.String(), "hidden")
	Contains(t, out.String(), `"component":"copier"`)
	Contains(t, out.String(), `"cell":3`)
}
