package browser

import (
	"os"
	"path/filepath"
)

// chromeExecPatterns are searched in order when no exec_path is configured.
// Nix store globs cover images built with nixpacks.
var chromeExecPatterns = []string{
	"/nix/store/*/bin/google-chrome",
	"/nix/store/*/bin/google-chrome-stable",
	"/nix/store/*/bin/chromium",
	"/nix/store/*/bin/chromium-browser",
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium-browser",
	"/opt/google/chrome/chrome",
	"/usr/bin/chromium",
	"/snap/bin/chromium",
}

// FindChromeExecPath returns the first executable Chrome binary in the known
// system locations, or "" to leave the lookup to chromedp
func FindChromeExecPath() string {
	return findExecutable(chromeExecPatterns)
}

// findExecutable expands each glob pattern and returns the first regular,
// executable file it matches
func findExecutable(patterns []string) string {
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if info.Mode().Perm()&0111 != 0 {
				return path
			}
		}
	}
	return ""
}
