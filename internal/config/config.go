package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds run settings for the CLI and the render engine. Authored
// content lives in the scenario file, not here.
type Config struct {
	ScenarioPath string
	OutputDir    string
	AudioDir     string
	BackdropDir  string // optional per-scene stills for previews
	Workers      int    // 0 = pick from available CPUs and memory
	PreviewEvery int    // write a preview PNG every N frames
	PreviewWidth int    // preview raster width, height follows the aspect ratio
	ThumbWidth   int    // contact sheet thumbnail width
	SheetColumns int    // contact sheet columns
	QRStamp      bool   // stamp a frame QR code on previews
	ShowStats    bool
	BuildVersion string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		OutputDir:    "output",
		PreviewEvery: 30,
		PreviewWidth: 960,
		ThumbWidth:   320,
		SheetColumns: 6,
		QRStamp:      true,
		BuildVersion: "dev",
	}
}

// Load returns Default overridden by NARRACOMP_* environment variables.
func Load() Config {
	cfg := Default()
	cfg.ScenarioPath = envStr("NARRACOMP_SCENARIO", cfg.ScenarioPath)
	cfg.OutputDir = envStr("NARRACOMP_OUTPUT_DIR", cfg.OutputDir)
	cfg.AudioDir = envStr("NARRACOMP_AUDIO_DIR", cfg.AudioDir)
	cfg.BackdropDir = envStr("NARRACOMP_BACKDROP_DIR", cfg.BackdropDir)
	cfg.Workers = envInt("NARRACOMP_WORKERS", cfg.Workers)
	cfg.PreviewEvery = envInt("NARRACOMP_PREVIEW_EVERY", cfg.PreviewEvery)
	cfg.PreviewWidth = envInt("NARRACOMP_PREVIEW_WIDTH", cfg.PreviewWidth)
	cfg.ThumbWidth = envInt("NARRACOMP_THUMB_WIDTH", cfg.ThumbWidth)
	cfg.SheetColumns = envInt("NARRACOMP_SHEET_COLUMNS", cfg.SheetColumns)
	cfg.QRStamp = envBool("NARRACOMP_QR_STAMP", cfg.QRStamp)
	cfg.ShowStats = envBool("NARRACOMP_SHOW_STATS", cfg.ShowStats)
	return cfg
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
