package cmd

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestLogger_Level(t *testing.T) {
	log := logger()
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("default level = %s, want info", log.GetLevel())
	}

	*verbose = true
	defer func() { *verbose = false }()
	log = logger()
	if log.GetLevel() != zerolog.DebugLevel {
		t.Errorf("verbose level = %s, want debug", log.GetLevel())
	}
}
