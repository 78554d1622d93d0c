// Package handlers implements the per-node-kind evaluation logic bound
// into the handler registry during compilation (spec §4.1 step 5, §4.4).
// One file per concern, the same layout the teacher uses for its builtin
// packages: pseudo.go (POST/QUERY/PARAMS/DATA/ANSWER_LOCAL/ANSWER_REMOTE),
// reference.go (REFERENCE including @scope/@self), logic.go (AND/OR/XOR/
// NOT/TEST), pipeline.go, iterate.go, format.go, conditional.go,
// validation.go (VALIDATION), structural.go (JOURNEY/STEP/BLOCK/FIELD),
// transition.go (ACCESS/ACTION/SUBMIT/NEXT), function.go (CONDITION/
// TRANSFORMER/EFFECT dispatch), factory.go (the node-shape -> handler
// lookup table both the compiler and runtime overlays use).
package handlers
