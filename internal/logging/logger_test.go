package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitLevelAndOutput(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})

	Info().Msg("hidden")
	Warn().Str("table", "dim_pais").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info event should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"table":"dim_pais"`) || !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("Expected JSON warn event, got: %s", out)
	}
}

func TestInitDefaultsToInfo(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	for _, level := range []string{"", "verbose"} {
		var buf bytes.Buffer
		Init(Config{Level: level, Output: &buf})
		Debug().Msg("debug")
		Info().Msg("info")
		if strings.Contains(buf.String(), `"message":"debug"`) || !strings.Contains(buf.String(), `"message":"info"`) {
			t.Errorf("Level %q should behave as info: %s", level, buf.String())
		}
	}
}

func TestStage(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})

	log := Stage("warehouse")
	log.Info().Msg("done")
	if !strings.Contains(buf.String(), `"stage":"warehouse"`) {
		t.Errorf("Expected stage field, got: %s", buf.String())
	}
}
