package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tailscale/hujson"
)

// parseJSONC reads a config file of flag values. Comments and trailing
// commas are allowed:
//
//	{
//	  // storage
//	  "store": "bolt",
//	  "db": "shopping.db",
//	}
func parseJSONC(r io.Reader, set func(name, value string) error) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	// Numbers stay as written so large integers never turn into 1e+06
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()
	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	for name, value := range values {
		var s string
		switch v := value.(type) {
		case json.Number:
			s = v.String()
		case string:
			s = v
		default:
			s = fmt.Sprint(v)
		}
		if err := set(name, s); err != nil {
			return err
		}
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
