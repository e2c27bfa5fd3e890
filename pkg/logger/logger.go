package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool   `split_words:"true" default:"false"`
	PrettyFormat bool   `split_words:"true" default:"false"`
	Service      string `default:"financial-document-analyzer"`
}

var DefaultConfig = &Config{
	Debug:        false,
	PrettyFormat: false,
	Service:      "financial-document-analyzer",
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

// Init replaces the global logger. Loggers pulled with log.Ctx from a context
// that carries none fall back to it.
func Init(opts ...Config) {
	conf := safe(opts...)
	log.Logger = New(os.Stdout, *conf)
	zerolog.DefaultContextLogger = &log.Logger
}

// New builds a logger writing to w with the level and format from conf.
func New(w io.Writer, conf Config) zerolog.Logger {
	if conf.PrettyFormat {
		out := w
		w = zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) { cw.Out = out })
	}

	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if conf.Service != "" {
		ctx = ctx.Str("service", conf.Service)
	}
	return ctx.Caller().Stack().Logger()
}
