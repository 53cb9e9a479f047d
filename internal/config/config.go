/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	Theme string `yaml:"theme"` // "system" | "light" | "dark"
	// DataDir holds the autosaved document, its backups and history.
	DataDir string `yaml:"data_dir"`
}

type EditorConfig struct {
	TapSlop            float64 `yaml:"tap_slop"`
	LongPressMs        int     `yaml:"long_press_ms"`
	PaletteGlyphSize   float64 `yaml:"palette_glyph_size"`
	MinZoom            float64 `yaml:"min_zoom"`
	MaxZoom            float64 `yaml:"max_zoom"`
	AutosaveDebounceMs int     `yaml:"autosave_debounce_ms"`
	UndoDepth          int     `yaml:"undo_depth"`
}

type StorageConfig struct {
	// Document is the autosave file; relative paths resolve against DataDir.
	Document    string `yaml:"document"`
	History     string `yaml:"history"`
	HistoryKeep int    `yaml:"history_keep"`
	KeepBackups int    `yaml:"keep_backups"`
}

type SyncConfig struct {
	// DSN is a Postgres connection string without password; the password
	// lives in the OS keychain.
	DSN          string `yaml:"dsn"`
	DocumentName string `yaml:"document_name"`
	TimeoutMs    int    `yaml:"timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type PaletteConfig struct {
	Name   string `yaml:"name"`
	Emojis string `yaml:"emojis"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	General       GeneralConfig   `yaml:"general"`
	Editor        EditorConfig    `yaml:"editor"`
	Storage       StorageConfig   `yaml:"storage"`
	Sync          SyncConfig      `yaml:"sync"`
	Logging       LoggingConfig   `yaml:"logging"`
	Palettes      []PaletteConfig `yaml:"palettes,omitempty"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: "system"},
		Editor: EditorConfig{
			TapSlop:            6,
			LongPressMs:        1000,
			PaletteGlyphSize:   40,
			MinZoom:            0.05,
			MaxZoom:            20,
			AutosaveDebounceMs: 500,
			UndoDepth:          100,
		},
		Storage: StorageConfig{Document: "Autosaved.emojiart", HistoryKeep: 200, KeepBackups: 20},
		Sync:    SyncConfig{DocumentName: "Autosaved", TimeoutMs: 5000},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath   = "EMA_CONFIG"
	EnvDataDir      = "EMA_DATA_DIR"
	EnvDocument     = "EMA_DOCUMENT"
	EnvSyncDSN      = "EMA_SYNC_DSN"
	EnvSyncDocument = "EMA_SYNC_DOCUMENT"
	EnvTapSlop      = "EMA_TAP_SLOP"
	EnvLongPressMs  = "EMA_LONG_PRESS_MS"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "EMA_LOG_LEVEL"
	EnvLogFormat = "EMA_LOG_FORMAT"
	EnvLogSource = "EMA_LOG_SOURCE"
	EnvLogFile   = "EMA_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "EmojiArt"
	keyringSyncPW  = "sync_password"
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) {
	v, err := keyring.Get(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (osKeyring) Set(service, key, value string) error { return keyring.Set(service, key, value) }

func (osKeyring) Delete(service, key string) error {
	if err := keyring.Delete(service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// appDir returns the per-user base directory for kind ("config" or "data").
func appDir(kind string) (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "EmojiArt")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "EmojiArt")
	default:
		home := os.Getenv("HOME")
		if home == "" {
			return "", errors.New("cannot resolve home directory")
		}
		if kind == "data" {
			if x := os.Getenv("XDG_DATA_HOME"); x != "" {
				return filepath.Join(x, "emojiart"), nil
			}
			return filepath.Join(home, ".local", "share", "emojiart"), nil
		}
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			return filepath.Join(x, "emojiart"), nil
		}
		base = filepath.Join(home, ".config", "emojiart")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path, or EMA_CONFIG when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := appDir("config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also returns the sync password from the keyring (never kept inside the struct).
func Load() (AppConfig, string, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), "", err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file. A missing file yields defaults; a
// malformed one is an error.
func LoadFrom(path string) (AppConfig, string, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, "", fmt.Errorf("read config: %w", err)
	}
	applyEnvOverrides(&cfg)
	pw, _ := tokenStore.Get(keyringService, keyringSyncPW)
	return cfg, pw, nil
}

// Save writes the user config YAML and persists the sync password into the OS keyring (if non-empty).
func Save(cfg AppConfig, syncPassword string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg, syncPassword)
}

func SaveTo(path string, cfg AppConfig, syncPassword string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if syncPassword != "" {
		if err := tokenStore.Set(keyringService, keyringSyncPW, syncPassword); err != nil {
			return fmt.Errorf("store sync password: %w", err)
		}
	}
	return nil
}

// ForgetSyncPassword removes the stored sync password.
func ForgetSyncPassword() error { return tokenStore.Delete(keyringService, keyringSyncPW) }

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if s := strings.TrimSpace(src.General.Theme); s != "" {
		dst.General.Theme = s
	}
	if s := strings.TrimSpace(src.General.DataDir); s != "" {
		dst.General.DataDir = s
	}
	// editor: only positive values replace defaults
	e, se := &dst.Editor, src.Editor
	if se.TapSlop > 0 {
		e.TapSlop = se.TapSlop
	}
	if se.LongPressMs > 0 {
		e.LongPressMs = se.LongPressMs
	}
	if se.PaletteGlyphSize > 0 {
		e.PaletteGlyphSize = se.PaletteGlyphSize
	}
	if se.MinZoom > 0 {
		e.MinZoom = se.MinZoom
	}
	if se.MaxZoom > 0 {
		e.MaxZoom = se.MaxZoom
	}
	if se.AutosaveDebounceMs > 0 {
		e.AutosaveDebounceMs = se.AutosaveDebounceMs
	}
	if se.UndoDepth > 0 {
		e.UndoDepth = se.UndoDepth
	}
	if s := strings.TrimSpace(src.Storage.Document); s != "" {
		dst.Storage.Document = s
	}
	if s := strings.TrimSpace(src.Storage.History); s != "" {
		dst.Storage.History = s
	}
	if src.Storage.HistoryKeep > 0 {
		dst.Storage.HistoryKeep = src.Storage.HistoryKeep
	}
	if src.Storage.KeepBackups != 0 {
		dst.Storage.KeepBackups = src.Storage.KeepBackups
	}
	if s := strings.TrimSpace(src.Sync.DSN); s != "" {
		dst.Sync.DSN = s
	}
	if s := strings.TrimSpace(src.Sync.DocumentName); s != "" {
		dst.Sync.DocumentName = s
	}
	if src.Sync.TimeoutMs > 0 {
		dst.Sync.TimeoutMs = src.Sync.TimeoutMs
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if len(src.Palettes) > 0 {
		dst.Palettes = append([]PaletteConfig(nil), src.Palettes...)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.General.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDocument)); v != "" {
		cfg.Storage.Document = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSyncDSN)); v != "" {
		cfg.Sync.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSyncDocument)); v != "" {
		cfg.Sync.DocumentName = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTapSlop)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Editor.TapSlop = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLongPressMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.LongPressMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env := map[string]string{
		"general.data_dir":     EnvDataDir,
		"storage.document":     EnvDocument,
		"sync.dsn":             EnvSyncDSN,
		"sync.document_name":   EnvSyncDocument,
		"editor.tap_slop":      EnvTapSlop,
		"editor.long_press_ms": EnvLongPressMs,
		"logging.level":        EnvLogLevel,
		"logging.format":       EnvLogFormat,
		"logging.source":       EnvLogSource,
		"logging.file":         EnvLogFile,
	}[key]
	if env != "" && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// ResolveDataDir returns the configured data directory or the per-user default.
func (c AppConfig) ResolveDataDir() (string, error) {
	if c.General.DataDir != "" {
		return c.General.DataDir, nil
	}
	return appDir("data")
}

// DocumentPath resolves the autosave document location.
func (c AppConfig) DocumentPath() (string, error) {
	if filepath.IsAbs(c.Storage.Document) {
		return c.Storage.Document, nil
	}
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.Document), nil
}

func (e EditorConfig) LongPress() time.Duration {
	return time.Duration(e.LongPressMs) * time.Millisecond
}

func (e EditorConfig) AutosaveDelay() time.Duration {
	return time.Duration(e.AutosaveDebounceMs) * time.Millisecond
}

func (s SyncConfig) Timeout() time.Duration {
	if s.TimeoutMs <= 0 {
		return time.Duration(Defaults().Sync.TimeoutMs) * time.Millisecond
	}
	return time.Duration(s.TimeoutMs) * time.Millisecond
}
