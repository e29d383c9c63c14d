// Package snapshot reads and writes ledger snapshots as JSON or TOML documents.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/savingsjars/backend/internal/models"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// ParseFormat accepts "json" or "toml" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatTOML:
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported snapshot format %q (want json or toml)", s)
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// ContentType is the HTTP media type for the format.
func (f Format) ContentType() string {
	if f == FormatTOML {
		return "application/toml"
	}
	return "application/json"
}

func Encode(w io.Writer, snap models.Snapshot, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode json snapshot: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(snap); err != nil {
			return fmt.Errorf("encode toml snapshot: %w", err)
		}
	default:
		return fmt.Errorf("unsupported snapshot format %q", format)
	}
	return nil
}

func Decode(r io.Reader, format Format) (models.Snapshot, error) {
	var snap models.Snapshot
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return snap, fmt.Errorf("decode json snapshot: %w", err)
		}
	case FormatTOML:
		meta, err := toml.NewDecoder(r).Decode(&snap)
		if err != nil {
			return snap, fmt.Errorf("decode toml snapshot: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return snap, fmt.Errorf("decode toml snapshot: unknown key %s", undecoded[0])
		}
	default:
		return snap, fmt.Errorf("unsupported snapshot format %q", format)
	}
	return snap, nil
}
