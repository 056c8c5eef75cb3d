package platforms

import "github.com/crytic/abibind/compilation/types"

// ArtifactLoader describes the interface all artifact platform configs must implement. A loader reads the build
// output a platform already produced, it never compiles.
type ArtifactLoader interface {
	Load() ([]types.Compilation, error)
	Platform() string
	GetTarget() string
	SetTarget(string)
}
