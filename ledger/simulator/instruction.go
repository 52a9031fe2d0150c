package simulator

import (
	"math/rand/v2"
)

const (
	// MinAmount is the smallest amount a generated instruction transfers.
	MinAmount = 1

	// MaxAmount is the largest amount a generated instruction transfers.
	MaxAmount = 99
)

// Instruction is one transfer attempt: move Amount from account From to account To.
type Instruction struct {
	From   int
	To     int
	Amount int
}

// InstructionGenerator draws the instruction for one attempt.
// Each worker calls it with its own generator, so implementations must not share mutable state
// between calls unless they synchronize it themselves.
type InstructionGenerator interface {
	Next(rng *rand.Rand, accounts int) Instruction
}

// InstructionGeneratorFunc adapts a plain function to InstructionGenerator.
type InstructionGeneratorFunc func(rng *rand.Rand, accounts int) Instruction

// Next calls f.
func (f InstructionGeneratorFunc) Next(rng *rand.Rand, accounts int) Instruction {
	return f(rng, accounts)
}

// UniformInstructions draws From and To uniformly from [0, accounts) and Amount uniformly from [MinAmount, MaxAmount].
var UniformInstructions InstructionGenerator = InstructionGeneratorFunc(func(rng *rand.Rand, accounts int) Instruction {
	return Instruction{
		From:   rng.IntN(accounts),
		To:     rng.IntN(accounts),
		Amount: MinAmount + rng.IntN(MaxAmount-MinAmount+1),
	}
})
