package xdg

import (
	"os"
	"path/filepath"
)

// Dirs resolves the XDG base directories contester reads config from and
// writes exports to.
type Dirs struct {
	configHome string
	dataHome   string
	configDirs []string
}

// New reads the XDG_* variables and falls back to the defaults of the
// base directory specification.
func New() *Dirs {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = "/tmp"
		}
	}

	d := &Dirs{
		configHome: os.Getenv("XDG_CONFIG_HOME"),
		dataHome:   os.Getenv("XDG_DATA_HOME"),
	}
	if d.configHome == "" {
		d.configHome = filepath.Join(homeDir, ".config")
	}
	if d.dataHome == "" {
		d.dataHome = filepath.Join(homeDir, ".local", "share")
	}

	if env := os.Getenv("XDG_CONFIG_DIRS"); env != "" {
		d.configDirs = filepath.SplitList(env)
	} else {
		d.configDirs = []string{"/etc/xdg"}
	}
	return d
}

func (d *Dirs) AppConfigDir(app string) string {
	return filepath.Join(d.configHome, app)
}

func (d *Dirs) AppDataDir(app string) string {
	return filepath.Join(d.dataHome, app)
}

// FindConfig returns the first existing app/name in the user config home
// followed by the system config dirs, or the user config path if none exists.
func (d *Dirs) FindConfig(app, name string) string {
	userPath := filepath.Join(d.configHome, app, name)
	for _, dir := range append([]string{d.configHome}, d.configDirs...) {
		p := filepath.Join(dir, app, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return userPath
}

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
