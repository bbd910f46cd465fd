package model

// Block is a header plus its ordered content, grounded on the teacher's
// model.Block field layout (header, content, derived size) simplified from
// teranode's UTXO/subtree representation to the spec's flat transaction
// list — there is no coinbase, no subtree batching, and no persisted store
// behind it (spec.md Non-goals: no transaction execution, no persistence).
type Block struct {
	Header  *BlockHeader
	Content []SignedTransaction
}

// NewBlock constructs a Block from an already-built header and content.
func NewBlock(header *BlockHeader, content []SignedTransaction) *Block {
	return &Block{Header: header, Content: content}
}

// Hash is the block's identity: its header's hash (spec.md §3).
func (b *Block) Hash() Hash {
	return b.Header.Hash()
}

// Size is the serialized byte length of the block.
func (b *Block) Size() int {
	n := len(b.Header.Bytes())
	for _, tx := range b.Content {
		n += len(tx.Bytes())
	}
	return n
}
