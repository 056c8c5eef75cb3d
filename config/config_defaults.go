package config

import (
	"github.com/crytic/abibind/bindgen"
	"github.com/crytic/abibind/compilation"
	"github.com/rs/zerolog"
)

// GetDefaultProjectConfig obtains a default configuration for a project. It populates a default artifacts config
// based on the provided platform, or a nil one if an empty string is provided.
func GetDefaultProjectConfig(platform string) (*ProjectConfig, error) {
	var (
		artifactConfig *compilation.ArtifactConfig
		err            error
	)
	if platform != "" {
		artifactConfig, err = compilation.NewArtifactConfig(platform)
		if err != nil {
			return nil, err
		}
	}

	projectConfig := &ProjectConfig{
		Artifacts: artifactConfig,
		Generation: GenerationConfig{
			OutputDirectory: "bindings",
			Package:         bindgen.DefaultPackage,
			Contracts:       []string{},
			Aliases:         make(map[string]map[string]string),
			RuntimePackage:  bindgen.DefaultRuntimePackage,
			CommonPackage:   bindgen.DefaultCommonPackage,
			CacheEnabled:    true,
			CacheFile:       ".abibind-cache.db",
		},
		Logging: LoggingConfig{
			Level:        zerolog.InfoLevel,
			LogDirectory: "",
			NoColor:      false,
		},
	}

	return projectConfig, nil
}
