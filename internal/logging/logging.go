package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type CustomLogFormatter struct {
	log.TextFormatter
	correlationID string
}

func NewFormatter(runID string) *CustomLogFormatter {
	return &CustomLogFormatter{correlationID: runID}
}

// override the TextFormatter.Format method as we need the customFormat in logging.
func (f *CustomLogFormatter) Format(entry *log.Entry) ([]byte, error) {
	var fields string
	timestamp := entry.Time.Format("2006-01-02T15:04:05.000-07:00")

	if len(entry.Data) > 0 {
		fieldStr := make([]string, 0, len(entry.Data))
		for k, v := range entry.Data {
			fieldStr = append(fieldStr, fmt.Sprintf("%v=%v", k, v))
		}
		sort.Strings(fieldStr)
		fields = " " + strings.Join(fieldStr, " ")
	}

	logMessage := fmt.Sprintf("%s %s %s %s%s\n",
		timestamp,
		strings.ToUpper(entry.Level.String()),
		f.correlationID,
		entry.Message,
		fields,
	)
	return []byte(logMessage), nil
}

// Setup installs the formatter on the standard logger. An empty runID gets a fresh one,
// which is returned so callers can tag their own output with it.
func Setup(level string, runID string) (string, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return "", err
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(lvl)
	log.SetFormatter(NewFormatter(runID))
	return runID, nil
}
