package compactblock_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/vocdoni/zvote/compactblock"
)

// encodeBlockForTest hand-encodes a CompactBlock using the same field
// numbers wire.go's decoder expects, standing in for what a real
// lightwalletd-compatible server would send over the wire.
func encodeBlockForTest(b compactblock.CompactBlock) []byte {
	var out []byte
	out = protowire.AppendTag(out, 1, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(b.Height))
	for _, tx := range b.Vtx {
		var txBytes []byte
		txBytes = protowire.AppendTag(txBytes, 1, protowire.BytesType)
		txBytes = protowire.AppendBytes(txBytes, tx.Hash)
		for _, a := range tx.Actions {
			var actBytes []byte
			actBytes = protowire.AppendTag(actBytes, 1, protowire.BytesType)
			actBytes = protowire.AppendBytes(actBytes, a.CvNet[:])
			actBytes = protowire.AppendTag(actBytes, 2, protowire.BytesType)
			actBytes = protowire.AppendBytes(actBytes, a.Nullifier[:])
			actBytes = protowire.AppendTag(actBytes, 3, protowire.BytesType)
			actBytes = protowire.AppendBytes(actBytes, a.Rk[:])
			actBytes = protowire.AppendTag(actBytes, 4, protowire.BytesType)
			actBytes = protowire.AppendBytes(actBytes, a.Cmx[:])
			actBytes = protowire.AppendTag(actBytes, 5, protowire.BytesType)
			actBytes = protowire.AppendBytes(actBytes, a.Epk[:])
			actBytes = protowire.AppendTag(actBytes, 6, protowire.BytesType)
			actBytes = protowire.AppendBytes(actBytes, a.Enc[:])

			txBytes = protowire.AppendTag(txBytes, 2, protowire.BytesType)
			txBytes = protowire.AppendBytes(txBytes, actBytes)
		}
		out = protowire.AppendTag(out, 2, protowire.BytesType)
		out = protowire.AppendBytes(out, txBytes)
	}
	return out
}

func TestEncodeDecodeBlockRoundTrip(t *testing.T) {
	c := qt.New(t)

	action := compactblock.CompactAction{}
	for i := range action.CvNet {
		action.CvNet[i] = byte(i)
	}
	for i := range action.Enc {
		action.Enc[i] = byte(i + 1)
	}

	block := compactblock.CompactBlock{
		Height: 12345,
		Vtx: []compactblock.CompactTx{
			{Hash: []byte{0xaa, 0xbb}, Actions: []compactblock.CompactAction{action}},
		},
	}

	encoded := encodeBlockForTest(block)
	decoded, err := compactblock.DecodeCompactBlock(encoded)
	c.Assert(err, qt.IsNil)
	c.Assert(decoded.Height, qt.Equals, block.Height)
	c.Assert(decoded.Vtx, qt.DeepEquals, block.Vtx)
}

func TestEncodeBlockRangeRequest(t *testing.T) {
	c := qt.New(t)
	data := compactblock.EncodeBlockRange(100, 200, 0)
	c.Assert(len(data) > 0, qt.IsTrue)
}
