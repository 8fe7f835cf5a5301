package lzhuf

// charCodec is the adaptive Huffman model over the combined
// literal-byte / match-length alphabet. The tree is rebuilt after every
// coded symbol from the running frequency table, so encoder and decoder
// stay in lockstep as long as they process the same symbol sequence.
type charCodec struct {
	freq []int
	tree *huffTree
}

func newCharCodec() *charCodec {
	c := &charCodec{freq: make([]int, symbolCount)}
	c.rebuild()
	return c
}

func (c *charCodec) rebuild() {
	c.tree = buildHuffTree(c.freq)
}

func (c *charCodec) update(symbol int) {
	c.freq[symbol]++
	c.rebuild()
}

func (c *charCodec) encode(w *bitWriter, symbol int) {
	c.tree.Encode(w, symbol)
	c.update(symbol)
}

func (c *charCodec) decode(r *bitReader) int {
	symbol := c.tree.Decode(r)
	c.update(symbol)
	return symbol
}
