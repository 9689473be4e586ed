package mtopcorr

import (
	"fmt"
	"log/slog"
	"strings"
)

// SampleFlag is one "-sample name=file1,file2" command line value.
type SampleFlag struct {
	Name  string
	Files []string
}

// SampleFlags collects repeated -sample flags.
type SampleFlags struct {
	Samples []SampleFlag
}

func (f *SampleFlags) Set(valueStr string) error {
	name, files, ok := strings.Cut(valueStr, "=")
	if !ok || name == "" || files == "" {
		return fmt.Errorf("expected name=file[,file...], got %q", valueStr)
	}

	s := SampleFlag{Name: name}
	for _, file := range strings.Split(files, ",") {
		if file != "" {
			s.Files = append(s.Files, file)
		}
	}
	if len(s.Files) == 0 {
		return fmt.Errorf("sample %q has no files", name)
	}

	f.Samples = append(f.Samples, s)
	return nil
}

func (f *SampleFlags) String() string {
	var parts []string
	for _, s := range f.Samples {
		parts = append(parts, s.Name+"="+strings.Join(s.Files, ","))
	}
	return strings.Join(parts, " ")
}

// LevelFlag is a log level given by name.
type LevelFlag struct {
	Name  string
	Level slog.Level
}

// Levels are the accepted level names.
var Levels = []string{"CRITICAL", "ERROR", "WARNING", "INFO", "DEBUG", "TRACE", "NOTSET"}

func (f *LevelFlag) Set(valueStr string) error {
	name := strings.ToUpper(valueStr)
	switch name {
	case "CRITICAL", "ERROR":
		f.Level = slog.LevelError
	case "WARNING":
		f.Level = slog.LevelWarn
	case "INFO":
		f.Level = slog.LevelInfo
	case "DEBUG", "TRACE", "NOTSET":
		f.Level = slog.LevelDebug
	default:
		return fmt.Errorf("unknown log level %q (one of %s)", valueStr, strings.Join(Levels, ", "))
	}
	f.Name = name
	return nil
}

func (f *LevelFlag) String() string {
	if f.Name == "" {
		return "INFO"
	}
	return f.Name
}
