package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compazz/posbridge/config"
)

func TestInitJobBadLocationFallsBack(t *testing.T) {
	cfg := new(config.AppConfig)
	*cfg = *config.DefaultAppConfig
	cfg.System.Location = "Not/AZone"

	a := NewApplication(cfg)
	a.initJob()
	defer a.sched.Stop()

	require.NotNil(t, a.sched)
	assert.Equal(t, time.Local, a.sched.Location())
}
