// Copyright (c) 2024-2025, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package logger implements leveled logging for the radio driver and its
// tooling, plus assert helpers used to check driver invariants.
package logger

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the log level used across the driver. Values extend the OT
// logging.h levels.
type Level int8

const (
	TraceLevel   Level = 6
	DebugLevel   Level = 5
	InfoLevel    Level = 4
	NoteLevel    Level = 3
	WarnLevel    Level = 2
	ErrorLevel   Level = 1
	PanicLevel   Level = 0
	OffLevel     Level = -1
	MinLevel           = OffLevel
	DefaultLevel       = InfoLevel
)

var (
	cfg          zap.Config
	zaplogger    *zap.Logger
	currentLevel Level
	zapLevels    = []zapcore.Level{zapcore.FatalLevel, zapcore.PanicLevel, zapcore.ErrorLevel,
		zapcore.WarnLevel, zapcore.InfoLevel, zapcore.InfoLevel, zapcore.DebugLevel, zapcore.DebugLevel}
)

func init() {
	cfgJson := []byte(`{
		"level": "debug",
		"outputPaths": ["stderr"],
		"errorOutputPaths": ["stderr"],
		"encoding": "console",
		"encoderConfig": {
			"messageKey": "message",
			"levelKey": "level",
			"levelEncoder": "lowercase"
		}
	}`)
	currentLevel = DefaultLevel

	if err := json.Unmarshal(cfgJson, &cfg); err != nil {
		panic(err)
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	rebuildLoggerFromCfg()
}

// SetLevel sets the log level.
func SetLevel(lv Level) {
	currentLevel = lv
}

// GetLevel gets the current log level.
func GetLevel() Level {
	return currentLevel
}

func (lv Level) String() string {
	switch lv {
	case TraceLevel:
		return "trace"
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case NoteLevel:
		return "note"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case PanicLevel:
		return "panic"
	case OffLevel:
		return "off"
	default:
		return fmt.Sprintf("Level(%d)", int8(lv))
	}
}

// ParseLevel parses a level name as used in the CLI and config files.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "trace":
		return TraceLevel, true
	case "debug":
		return DebugLevel, true
	case "info":
		return InfoLevel, true
	case "note":
		return NoteLevel, true
	case "warn":
		return WarnLevel, true
	case "error":
		return ErrorLevel, true
	case "off":
		return OffLevel, true
	default:
		return DefaultLevel, false
	}
}

// SetOutput sets the output writer(s), e.g. []string{"stderr", "radiodrv.log"}.
func SetOutput(outputs []string) {
	cfg.OutputPaths = outputs
	rebuildLoggerFromCfg()
}

func rebuildLoggerFromCfg() {
	if newLogger, err := cfg.Build(); err == nil {
		if zaplogger != nil {
			_ = zaplogger.Sync()
		}
		zaplogger = newLogger
	} else {
		panic(err)
	}
}

// Logf outputs a formatted log message at the specified level.
func Logf(level Level, format string, args ...interface{}) {
	if level > currentLevel {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	zaplogger.Log(zapLevels[level-MinLevel], msg)
}

// TraceError prints the stack and the error.
func TraceError(format string, args ...interface{}) {
	Logf(ErrorLevel, string(debug.Stack()))
	Errorf(format, args...)
}

func Tracef(format string, args ...interface{}) {
	Logf(TraceLevel, format, args...)
}

func Debugf(format string, args ...interface{}) {
	Logf(DebugLevel, format, args...)
}

func Infof(format string, args ...interface{}) {
	Logf(InfoLevel, format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logf(WarnLevel, format, args...)
}

func Errorf(format string, args ...interface{}) {
	Logf(ErrorLevel, format, args...)
}

func Panicf(format string, args ...interface{}) {
	Logf(PanicLevel, format, args...)
	panic(fmt.Sprintf(format, args...))
}

func PanicIfError(err error, args ...interface{}) {
	if err != nil {
		if len(args) == 0 {
			Panicf("%v", err)
		}
		Panicf("%v", args)
	}
}

func FatalIfError(err error, args ...interface{}) {
	if err != nil {
		if len(args) > 0 {
			Logf(ErrorLevel, "%v", args)
		}
		Panicf("%v", err)
	}
}
