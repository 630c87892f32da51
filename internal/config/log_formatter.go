package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	red         = 31
	green       = 32
	yellow      = 33
	blue        = 36
	gray        = 37
	lightGreen  = 92
	lightYellow = 93
	cyan        = 96
)

// Formatter prints entries as key=value pairs on a single line, colored
// unless Plain is set. Fields are sorted so lines diff well.
type Formatter struct {
	Plain bool
}

func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	var b strings.Builder

	f.write(&b, "level", levelColor(entry.Level), strings.ToUpper(entry.Level.String())[:4])
	f.write(&b, "ts", lightYellow, entry.Time.Format("2006-01-02 15:04:05.000"))
	if entry.HasCaller() {
		f.write(&b, "source", lightYellow, fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line))
	}

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := formatValue(entry.Data[k])
		if s == "" {
			continue
		}
		f.write(&b, k, valueColor(s), s)
	}
	f.write(&b, "msg", lightGreen, strconv.Quote(entry.Message))

	output := strings.NewReplacer("\r", "\\r", "\n", "\\n").Replace(b.String())
	return []byte(output + "\n"), nil
}

func (f *Formatter) write(b *strings.Builder, key string, color int, value string) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	if f.Plain {
		fmt.Fprintf(b, "%s=%s", key, value)
		return
	}
	fmt.Fprintf(b, "\x1b[%dm%s\x1b[0m=\x1b[%dm%s\x1b[0m", cyan, key, color, value)
}

func formatValue(val any) string {
	if err, ok := val.(error); ok {
		val = err.Error()
	}
	m, err := json.Marshal(val)
	if err != nil {
		return ""
	}
	return string(m)
}

func levelColor(level log.Level) int {
	switch level {
	case log.DebugLevel, log.TraceLevel:
		return gray
	case log.WarnLevel:
		return yellow
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		return red
	default:
		return blue
	}
}

func valueColor(s string) int {
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return green
	}
	if strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"") {
		return lightYellow
	}
	return cyan
}
