package compilation

import (
	"encoding/json"

	"github.com/crytic/abibind/compilation/platforms"
	"github.com/crytic/abibind/compilation/types"
	"github.com/pkg/errors"
)

// ArtifactConfig describes the configuration options used to load the compiled contracts of a project.
type ArtifactConfig struct {
	// Platform references an identifier indicating which artifact platform to load from.
	// PlatformConfig is a structure dependent on the defined Platform.
	Platform string `json:"platform"`

	// PlatformConfig describes the Platform-specific configuration needed to load artifacts.
	PlatformConfig *json.RawMessage `json:"platformConfig"`
}

// NewArtifactConfig returns an ArtifactConfig with default values for a given platform identifier.
// If an error occurs, it is returned instead.
func NewArtifactConfig(platform string) (*ArtifactConfig, error) {
	if !IsSupportedArtifactPlatform(platform) {
		return nil, errors.Errorf("could not get default artifact config: platform '%s' is unsupported", platform)
	}
	return NewArtifactConfigFromLoader(GetDefaultArtifactLoader(platform))
}

// NewArtifactConfigFromLoader takes a platforms.ArtifactLoader and wraps it in a generic ArtifactConfig. This allows
// many platform config types to be serialized/deserialized to their appropriate types and supported generally.
func NewArtifactConfigFromLoader(loader platforms.ArtifactLoader) (*ArtifactConfig, error) {
	b, err := json.Marshal(loader)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	platformConfigMsg := (*json.RawMessage)(&b)

	return &ArtifactConfig{Platform: loader.Platform(), PlatformConfig: platformConfigMsg}, nil
}

// Loader deserializes the inner platform config into the platforms.ArtifactLoader of the configured platform.
func (c *ArtifactConfig) Loader() (platforms.ArtifactLoader, error) {
	if !IsSupportedArtifactPlatform(c.Platform) {
		return nil, errors.Errorf("could not load artifacts: platform '%s' is unsupported", c.Platform)
	}

	// json.Unmarshal needs a concrete structure to populate, so start from the platform defaults.
	loader := GetDefaultArtifactLoader(c.Platform)
	if c.PlatformConfig != nil {
		if err := json.Unmarshal(*c.PlatformConfig, loader); err != nil {
			return nil, errors.Wrapf(err, "could not parse the '%s' platform config", c.Platform)
		}
	}
	return loader, nil
}

// SetTarget updates the target of the inner platform config.
func (c *ArtifactConfig) SetTarget(target string) error {
	loader, err := c.Loader()
	if err != nil {
		return err
	}
	loader.SetTarget(target)

	updated, err := NewArtifactConfigFromLoader(loader)
	if err != nil {
		return err
	}
	*c = *updated
	return nil
}

// Load deserializes the inner platform config and uses it to load the compiled contracts of the project.
func (c *ArtifactConfig) Load() ([]types.Compilation, error) {
	loader, err := c.Loader()
	if err != nil {
		return nil, err
	}
	return loader.Load()
}
