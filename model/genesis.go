package model

// GenesisDifficulty is the network-wide, lifetime-constant PoW target
// (spec.md §3: "a fixed difficulty constant chosen to target a reasonable
// block rate for the deployment"). 20 leading zero bits puts a CPU miner's
// expected attempts at about a million (2^20) — fast enough for a local
// devnet. The test suites use a 0-bit difficulty instead.
var GenesisDifficulty = DifficultyFromLeadingZeroBits(20)

// Genesis returns the fixed, reproducible genesis block every node starts
// from: zero parent, GenesisDifficulty, no content, height 0 (spec.md §6).
func Genesis() *Block {
	header := &BlockHeader{
		Parent:     Hash{},
		Nonce:      0,
		Difficulty: GenesisDifficulty,
		Timestamp:  0,
		MerkleRoot: Hash{},
	}

	return NewBlock(header, nil)
}
