package storage

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/models"
)

// Settings returns the typed view of the settings map.
func (s *SettingsStore) Settings() (*models.Settings, error) {
	raw, err := s.Get()
	if err != nil {
		return nil, err
	}
	get := func(k string) string {
		if v, ok := raw[k]; ok {
			return v
		}
		return DefaultSettings[k]
	}

	// Number("") is 0 and garbage is NaN upstream; both read as 0 here.
	fontSize, _ := strconv.ParseFloat(get(KeyFontSize), 64)

	userPatterns := make(map[string]models.Pattern)
	if err := json.Unmarshal([]byte(get(KeyUserPatterns)), &userPatterns); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyUserPatterns, err)
	}
	for k, p := range userPatterns {
		if p.ID == "" {
			p.ID = k
			userPatterns[k] = p
		}
	}

	out := &models.Settings{
		ActiveFooter:                 get(KeyActiveFooter),
		Keybindings:                  get(KeyKeybindings),
		IsLineNumbersDisplayed:       isTrue(get(KeyIsLineNumbersDisplayed)),
		IsActiveLineHighlighted:      isTrue(get(KeyIsActiveLineHighlighted)),
		IsAutoCompletionEnabled:      isTrue(get(KeyIsAutoCompletionEnabled)),
		IsTooltipEnabled:             isTrue(get(KeyIsTooltipEnabled)),
		IsFlashEnabled:               isTrue(get(KeyIsFlashEnabled)),
		IsLineWrappingEnabled:        isTrue(get(KeyIsLineWrappingEnabled)),
		IsPatternHighlightingEnabled: isTrue(get(KeyIsPatternHighlightingEnabled)),
		Theme:                        get(KeyTheme),
		FontFamily:                   get(KeyFontFamily),
		FontSize:                     fontSize,
		LatestCode:                   get(KeyLatestCode),
		IsZen:                        isTrue(get(KeyIsZen)),
		SoundsFilter:                 get(KeySoundsFilter),
		PanelPosition:                get(KeyPanelPosition),
		AudioDeviceName:              get(KeyAudioDeviceName),
		UserPatterns:                 userPatterns,
	}
	// The panel can only sit on the side while a footer tab is open.
	if out.ActiveFooter == "" {
		out.PanelPosition = "bottom"
	}
	return out, nil
}

// SetActiveFooter selects the footer tab.
func (s *SettingsStore) SetActiveFooter(tab string) error {
	return s.SetKey(KeyActiveFooter, tab)
}

// SetLatestCode remembers the last evaluated code.
func (s *SettingsStore) SetLatestCode(code string) error {
	return s.SetKey(KeyLatestCode, code)
}

// SetIsZen toggles zen mode.
func (s *SettingsStore) SetIsZen(active bool) error {
	return s.SetKey(KeyIsZen, strconv.FormatBool(active))
}

func isTrue(v string) bool {
	return v == "true"
}
