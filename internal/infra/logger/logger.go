package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init настраивает глобальный zerolog логгер.
// format: "console" для человекочитаемого вывода, "json" для сборщиков логов.
func Init(level, format string) (zerolog.Logger, error) {
	return initWithWriter(level, format, os.Stdout)
}

func initWithWriter(level, format string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("failed to parse log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	writer := out
	if format == "console" {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
	}

	logger := zerolog.New(writer).With().Timestamp().Str("service", "exambot").Logger()
	log.Logger = logger
	return logger, nil
}
