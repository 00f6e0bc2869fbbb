package rules

import (
	"strings"

	"github.com/acadex/transferrules/internal/conflict"
)

// capturedLog buffers conflict-log output for assertions.
type capturedLog struct {
	*conflict.Log
	sb *strings.Builder
}

func newCapturedLog() *capturedLog {
	var sb strings.Builder
	return &capturedLog{Log: conflict.NewWriter(&sb), sb: &sb}
}

func (c *capturedLog) String() string {
	c.Flush()
	return c.sb.String()
}
