/*
Copyright 2025 The apigwctl contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package log

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Format string

const (
	FormatJSON    Format = "JSON"
	FormatConsole Format = "Console"
)

// AvailableFormats lists the formats a user can choose on the CLI.
var AvailableFormats = []Format{FormatJSON, FormatConsole}

func (f *Format) Set(s string) error {
	for _, available := range AvailableFormats {
		if strings.EqualFold(s, string(available)) {
			*f = available
			return nil
		}
	}

	return fmt.Errorf("invalid format %q, must be one of %v", s, AvailableFormats)
}

func (f Format) String() string {
	return string(f)
}

func (f Format) Type() string {
	return "string"
}

// NewDefault returns a non-debug, JSON-formatted logger.
func NewDefault() *zap.SugaredLogger {
	return New(false, FormatJSON)
}

// New returns a sugared zap logger in the given format. Debug enables the
// debug level and caller annotations.
func New(debug bool, format Format) *zap.SugaredLogger {
	// this basically mimics New<type>Config, but with a custom sink
	sink := zapcore.AddSync(zapcore.Lock(os.Stderr))

	// Level - We only support setting Info+ or Debug+
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		lvl = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	encCfg := zap.NewProductionEncoderConfig()
	// Having a dateformat makes it more easy to look at logs outside of something like Kibana
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	// production config encodes durations as a float of the seconds value, but we want a more
	// readable, precise representation
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	var enc zapcore.Encoder
	if format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	opts := []zap.Option{
		zap.AddStacktrace(zap.ErrorLevel),
		zap.ErrorOutput(sink),
	}
	if debug {
		opts = append(opts, zap.AddCaller())
	}

	coreLog := zapcore.NewCore(enc, sink, lvl)

	return zap.New(coreLog, opts...).Sugar()
}

// NewLogrus returns a logger for code paths that print directly for human
// consumption, like interactive CLI runs.
func NewLogrus() *logrus.Logger {
	logger := logrus.New()
	logger.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	}

	return logger
}
