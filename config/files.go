package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file into the process environment without
// overriding variables that are already set.
func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// FileResolver finds config and env files.
type FileResolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles finds config and env files for a service.
// Returns explicit paths if provided, otherwise searches for them.
func (fr *FileResolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}

	if resolved.ConfigFile == "" {
		resolved.ConfigFile = fr.findConfigFile(serviceName)
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = fr.findEnvFile(serviceName)
	}

	return resolved
}

// findConfigFile searches for config.yml or config.yaml in standard locations.
func (fr *FileResolver) findConfigFile(serviceName string) string {
	dirs := []string{
		fmt.Sprintf("./cmd/%s", serviceName),
		fmt.Sprintf("../cmd/%s", serviceName),
		fmt.Sprintf("./config/%s", serviceName),
		"./config",
		"../config",
		".",
	}
	if short := shortName(serviceName); short != serviceName {
		dirs = append([]string{fmt.Sprintf("./cmd/%s", short)}, dirs...)
	}

	for _, dir := range dirs {
		for _, file := range []string{"config.yml", "config.yaml"} {
			path := dir + "/" + file
			if fr.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

// findEnvFile searches for .env.<service> and .env next to the likely config
// locations.
func (fr *FileResolver) findEnvFile(serviceName string) string {
	dirs := []string{
		fmt.Sprintf("./cmd/%s", serviceName),
		fmt.Sprintf("./config/%s", serviceName),
		"./config",
		".",
		"..",
	}

	for _, name := range []string{".env." + serviceName, ".env"} {
		for _, dir := range dirs {
			path := dir + "/" + name
			if fr.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

// shortName drops everything up to the last dash: "acme-billing" -> "billing".
func shortName(serviceName string) string {
	if idx := strings.LastIndex(serviceName, "-"); idx != -1 {
		return serviceName[idx+1:]
	}
	return serviceName
}
