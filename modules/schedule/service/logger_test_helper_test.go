package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iai-group/arxivdigest-go/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}
