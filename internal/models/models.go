package models

// Collection names.
const (
	CollectionUser     = "user"
	CollectionExamples = "examples"
)

// Pattern is a stored unit of live-coding source plus metadata.
type Pattern struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	CreatedAt  int64  `json:"created_at,omitempty"`
	Collection string `json:"collection,omitempty"`
}

// Entry is what pattern operations hand back to callers that refresh their
// view afterwards. An empty ID means "no pattern"; Data may be nil.
type Entry struct {
	ID   string   `json:"id"`
	Data *Pattern `json:"data"`
}

// Cursor reports the active and viewing patterns of a session.
type Cursor struct {
	Active  string `json:"active"`
	Viewing string `json:"viewing"`
}

// Settings is the typed view of the persisted settings map.
type Settings struct {
	ActiveFooter                 string             `json:"activeFooter"`
	Keybindings                  string             `json:"keybindings"`
	IsLineNumbersDisplayed       bool               `json:"isLineNumbersDisplayed"`
	IsActiveLineHighlighted      bool               `json:"isActiveLineHighlighted"`
	IsAutoCompletionEnabled      bool               `json:"isAutoCompletionEnabled"`
	IsTooltipEnabled             bool               `json:"isTooltipEnabled"`
	IsFlashEnabled               bool               `json:"isFlashEnabled"`
	IsLineWrappingEnabled        bool               `json:"isLineWrappingEnabled"`
	IsPatternHighlightingEnabled bool               `json:"isPatternHighlightingEnabled"`
	Theme                        string             `json:"theme"`
	FontFamily                   string             `json:"fontFamily"`
	FontSize                     float64            `json:"fontSize"`
	LatestCode                   string             `json:"latestCode"`
	IsZen                        bool               `json:"isZen"`
	SoundsFilter                 string             `json:"soundsFilter"`
	PanelPosition                string             `json:"panelPosition"`
	AudioDeviceName              string             `json:"audioDeviceName"`
	UserPatterns                 map[string]Pattern `json:"userPatterns"`
}

// ImportResult summarizes an import run.
type ImportResult struct {
	FilesApplied     int      `json:"files_applied"`
	FilesSkipped     int      `json:"files_skipped"`
	FilesFailed      int      `json:"files_failed"`
	PatternsImported int      `json:"patterns_imported"`
	Errors           []string `json:"errors,omitempty"`
}

// ExportFile is a serialized user collection ready to be written out.
type ExportFile struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}
