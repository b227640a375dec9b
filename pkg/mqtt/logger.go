package mqtt

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
)

// pahoLogger implements paho's log.Logger on top of logr, so paho output ends
// up in the structured log instead of stdout.
type pahoLogger struct {
	logger logr.Logger
}

func (l pahoLogger) Println(v ...any) {
	l.logger.Info(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l pahoLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}
