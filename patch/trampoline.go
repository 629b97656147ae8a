package patch

// TrampolineFile is the CI configuration file the built-in rules target.
const TrampolineFile = ".trampolinerc"

// TrampolineRules returns the built-in rules that adjust .trampolinerc
// for environment tests: the required envvar declaration is emptied, and
// ENVIRONMENT/RUNTIME are passed down to the test container.
//
// The first rule's replacement is a fixed point of its own pattern, so
// re-running it never changes the file again. The second rule assumes a
// pristine pass_down_envvars declaration; once applied, its pattern
// matches the rewritten line and re-running would append the entries
// again. Callers are expected to run rules against freshly staged files.
func TrampolineRules() []Rule {
	return []Rule{
		{
			File:    TrampolineFile,
			Pattern: `required_envvars[^)]*\)`,
			Replace: `required_envvars+=()`,
		},
		{
			File:    TrampolineFile,
			Pattern: `pass_down_envvars\+=\(`,
			Replace: "pass_down_envvars+=(\n    \"ENVIRONMENT\"\n    \"RUNTIME\"",
		},
	}
}
