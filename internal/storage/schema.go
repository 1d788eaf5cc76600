package storage

// SettingsSchema is the SQL schema for settings.db.
const SettingsSchema = `
CREATE TABLE IF NOT EXISTS settings (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

-- Single-value cells (active/viewing pattern). Kept apart from settings so
-- that writes to them never reach settings subscribers.
CREATE TABLE IF NOT EXISTS atoms (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL DEFAULT '',
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// dsnPragmas configures SQLite for a small, frequently rewritten database.
// Transactions take the write lock on BEGIN so a read-modify-write never has
// to upgrade its lock while another connection is writing.
const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"

// Setting keys.
const (
	KeyActiveFooter                 = "activeFooter"
	KeyKeybindings                  = "keybindings"
	KeyIsLineNumbersDisplayed       = "isLineNumbersDisplayed"
	KeyIsActiveLineHighlighted      = "isActiveLineHighlighted"
	KeyIsAutoCompletionEnabled      = "isAutoCompletionEnabled"
	KeyIsTooltipEnabled             = "isTooltipEnabled"
	KeyIsFlashEnabled               = "isFlashEnabled"
	KeyIsLineWrappingEnabled        = "isLineWrappingEnabled"
	KeyIsPatternHighlightingEnabled = "isPatternHighlightingEnabled"
	KeyTheme                        = "theme"
	KeyFontFamily                   = "fontFamily"
	KeyFontSize                     = "fontSize"
	KeyLatestCode                   = "latestCode"
	KeyIsZen                        = "isZen"
	KeySoundsFilter                 = "soundsFilter"
	KeyPanelPosition                = "panelPosition"
	KeyUserPatterns                 = "userPatterns"
	KeyAudioDeviceName              = "audioDeviceName"
)

// DefaultAudioDeviceName is the audio device used until one is picked.
const DefaultAudioDeviceName = "System Standard"

// DefaultSettings are seeded into a fresh database. Existing keys are never
// overwritten.
var DefaultSettings = map[string]string{
	KeyActiveFooter:                 "intro",
	KeyKeybindings:                  "codemirror",
	KeyIsLineNumbersDisplayed:       "true",
	KeyIsActiveLineHighlighted:      "true",
	KeyIsAutoCompletionEnabled:      "false",
	KeyIsTooltipEnabled:             "false",
	KeyIsFlashEnabled:               "true",
	KeyIsLineWrappingEnabled:        "false",
	KeyIsPatternHighlightingEnabled: "true",
	KeyTheme:                        "strudelTheme",
	KeyFontFamily:                   "monospace",
	KeyFontSize:                     "18",
	KeyLatestCode:                   "",
	KeyIsZen:                        "false",
	KeySoundsFilter:                 "all",
	KeyPanelPosition:                "right",
	KeyUserPatterns:                 "{}",
	KeyAudioDeviceName:              DefaultAudioDeviceName,
}
