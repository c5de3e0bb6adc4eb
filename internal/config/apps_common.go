package config

// editorApps returns the cross-platform editor configurations. A
// transcript is a plain JSONL file, so any text editor can open it.
func editorApps() []AppConfig {
	return []AppConfig{
		{
			ID:      "vscode",
			Name:    "VS Code",
			Exec:    []string{"code", "{}"},
			Enabled: checkCommandExists("code"),
		},
		{
			ID:      "cursor",
			Name:    "Cursor",
			Exec:    []string{"cursor", "{}"},
			Enabled: checkCommandExists("cursor"),
		},
		{
			ID:      "zed",
			Name:    "Zed",
			Exec:    []string{"zed", "{}"},
			Enabled: checkCommandExists("zed"),
		},
		{
			ID:      "sublime",
			Name:    "Sublime Text",
			Exec:    []string{"subl", "{}"},
			Enabled: checkCommandExists("subl"),
		},
		{
			ID:      "nvim",
			Name:    "Neovim",
			Exec:    []string{"nvim", "{}"},
			Enabled: checkCommandExists("nvim"),
		},
	}
}
