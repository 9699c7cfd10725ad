package infrastructure

import "os"

// fileExists checks if a regular file exists at path
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
