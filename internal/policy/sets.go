package policy

import "crucible/internal/stack"

// commonRules are allowed in every workspace regardless of detected stack.
var commonRules = []string{
	"ls", "cat", "head", "tail", "wc",
	"grep", "rg", "find", "sort", "uniq",
	"echo", "pwd", "env", "which", "file", "stat", "du", "diff",
	"git status", "git log", "git diff", "git show", "git branch",
}

// techRules maps each detected technology to the command prefixes it
// unlocks.
var techRules = map[stack.Tech][]string{
	stack.TechGo: {
		"go build", "go test", "go vet", "go run", "go fmt", "go mod tidy", "go list",
		"gofmt", "goimports", "staticcheck",
	},
	stack.TechRust: {
		"cargo check", "cargo build", "cargo test", "cargo fmt", "cargo clippy", "cargo run",
	},
	stack.TechNode: {
		"npm install", "npm test", "npm run", "npm ci",
		"npx", "node", "yarn", "pnpm", "tsc", "eslint", "prettier",
	},
	stack.TechPython: {
		"python", "python3", "pip install", "pip list",
		"pytest", "ruff", "mypy", "black", "uv",
	},
	stack.TechJVM: {
		"mvn compile", "mvn test", "mvn package", "gradle build", "gradle test",
		"java -version", "javac",
	},
	stack.TechCPP: {
		"make", "cmake", "ninja", "gcc", "g++", "clang", "clang-format",
	},
}

// ForStack builds the session allowlist: the common rules, the rules for
// every detected technology, and any extra rules from configuration. An
// empty detection means the stack is unknown, which unlocks every known
// tech set rather than none: blocking all build tools in an unrecognized
// repo helps nobody.
func ForStack(techs []stack.Tech, extra []string) *Allowlist {
	rules := append([]string(nil), commonRules...)

	if len(techs) == 0 {
		for _, tech := range stack.All() {
			rules = append(rules, techRules[tech]...)
		}
	} else {
		for _, tech := range techs {
			rules = append(rules, techRules[tech]...)
		}
	}

	rules = append(rules, extra...)
	return NewAllowlist(rules)
}
