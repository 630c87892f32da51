package infra

import (
	"fmt"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Isolate runs f and converts a panic into a logged error, so one broken
// update cannot take the whole worker pool down.
func Isolate(entry *log.Entry, f func()) (panicked bool) {
	defer func() {
		if err := recover(); err != nil {
			panicked = true
			entry.WithFields(log.Fields{
				"panic":  fmt.Sprintf("%v", err),
				"source": identifyPanic(),
			}).Error("recovered from panic")
		}
	}()
	f()
	return false
}

func identifyPanic() string {
	var name, file string
	var line int
	var pc [16]uintptr

	n := runtime.Callers(3, pc[:])
	for _, pc := range pc[:n] {
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		file, line = fn.FileLine(pc)
		name = fn.Name()
		if !strings.HasPrefix(name, "runtime.") {
			break
		}
	}

	switch {
	case name != "":
		return fmt.Sprintf("%v:%v", name, line)
	case file != "":
		return fmt.Sprintf("%v:%v", file, line)
	}

	return fmt.Sprintf("pc:%x", pc)
}
