// Package tsconfig reads TypeScript compiler configuration files: JSON with
// comments and trailing commas, inheritance through "extends", and per-key
// merging of compilerOptions. Only the options the build planner consults are
// decoded; everything else is kept raw.
package tsconfig
