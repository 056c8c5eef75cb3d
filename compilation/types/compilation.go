package types

import (
	"golang.org/x/exp/slices"
)

// Compilation represents the artifacts of a smart contract compilation.
type Compilation struct {
	// Sources describes the CompiledSource objects provided in a compilation, housing information regarding source
	// files and the contracts they define.
	Sources map[string]CompiledSource
}

// NamedContract pairs a CompiledContract with the name and source path it was declared under.
type NamedContract struct {
	// Name is the contract name as declared in the source.
	Name string

	// SourcePath is the path of the source file declaring the contract.
	SourcePath string

	// Contract is the compiled contract definition.
	Contract *CompiledContract
}

// NewCompilation returns a new, empty Compilation object.
func NewCompilation() *Compilation {
	return &Compilation{
		Sources: make(map[string]CompiledSource),
	}
}

// AddContract adds a contract to the source at the given path, creating the source if it does not exist yet.
func (c *Compilation) AddContract(sourcePath string, name string, contract CompiledContract) {
	if _, ok := c.Sources[sourcePath]; !ok {
		c.Sources[sourcePath] = CompiledSource{
			Contracts: make(map[string]CompiledContract),
		}
	}
	c.Sources[sourcePath].Contracts[name] = contract
}

// Contracts returns every contract across all sources of the provided compilations, sorted by contract name and then
// source path, so callers iterate in a deterministic order.
func Contracts(compilations []Compilation) []NamedContract {
	contracts := make([]NamedContract, 0)
	for _, compilation := range compilations {
		for sourcePath, source := range compilation.Sources {
			for name := range source.Contracts {
				contract := source.Contracts[name]
				contracts = append(contracts, NamedContract{
					Name:       name,
					SourcePath: sourcePath,
					Contract:   &contract,
				})
			}
		}
	}

	slices.SortFunc(contracts, func(a, b NamedContract) int {
		if a.Name != b.Name {
			if a.Name < b.Name {
				return -1
			}
			return 1
		}
		if a.SourcePath < b.SourcePath {
			return -1
		} else if a.SourcePath > b.SourcePath {
			return 1
		}
		return 0
	})
	return contracts
}
