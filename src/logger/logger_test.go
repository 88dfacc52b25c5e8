package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Run("json format and explicit level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		Setup(buf, "debug", "json")
		require.Equal(t, log.DebugLevel, log.GetLevel())

		buf.Reset()
		log.WithField("symbol", "AAPL").Info("tick")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "tick", entry["msg"])
		require.Equal(t, "AAPL", entry["symbol"])
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		Setup(&bytes.Buffer{}, "verbose", "text")
		require.Equal(t, log.InfoLevel, log.GetLevel())
	})
}
