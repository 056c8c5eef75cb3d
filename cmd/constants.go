package cmd

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = "abibind.json"

// DefaultArtifactPlatform describes the default artifact platform to use if one is not provided
const DefaultArtifactPlatform = "hardhat"

// TargetFlagDescription describes the usage of the target flag
const TargetFlagDescription = "target project directory, or combined-json output / Solidity file for solc"
