package compilation

import (
	"fmt"
	"sort"

	"github.com/crytic/abibind/compilation/platforms"
)

// defaultArtifactLoaderGenerator is a mapping of platform identifier to generator functions which can be used to
// create a default configuration for the given platform. Each platform which provides a generator in this mapping will
// be considered a supported artifact platform for an ArtifactConfig. Items are populated in the init method.
var defaultArtifactLoaderGenerator map[string]func() platforms.ArtifactLoader

// init populates defaultArtifactLoaderGenerator with the supported platforms.
func init() {
	generators := []func() platforms.ArtifactLoader{
		func() platforms.ArtifactLoader { return platforms.NewHardhatArtifactConfig(".") },
		func() platforms.ArtifactLoader { return platforms.NewSolcArtifactConfig("combined.json") },
		func() platforms.ArtifactLoader { return platforms.NewTruffleArtifactConfig(".") },
	}

	defaultArtifactLoaderGenerator = make(map[string]func() platforms.ArtifactLoader)
	for _, generator := range generators {
		platformId := generator().Platform()

		// Each platform should have a unique identifier.
		if _, platformIdExists := defaultArtifactLoaderGenerator[platformId]; platformIdExists {
			panic(fmt.Errorf("the artifact platform '%s' is registered with more than one provider", platformId))
		}
		defaultArtifactLoaderGenerator[platformId] = generator
	}
}

// GetSupportedArtifactPlatforms obtains the sorted list of platform identifiers supported by this package.
func GetSupportedArtifactPlatforms() []string {
	platformIds := make([]string, 0, len(defaultArtifactLoaderGenerator))
	for k := range defaultArtifactLoaderGenerator {
		platformIds = append(platformIds, k)
	}
	sort.Strings(platformIds)
	return platformIds
}

// IsSupportedArtifactPlatform returns a boolean status indicating if a platform identifier is supported within this
// package.
func IsSupportedArtifactPlatform(platform string) bool {
	_, ok := defaultArtifactLoaderGenerator[platform]
	return ok
}

// GetDefaultArtifactLoader obtains an ArtifactLoader from the default generator for the provided platform.
func GetDefaultArtifactLoader(platform string) platforms.ArtifactLoader {
	return defaultArtifactLoaderGenerator[platform]()
}
