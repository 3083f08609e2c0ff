// Package compactblock implements the gRPC compact-block source of
// spec.md §6: CompactTxStreamer.GetBlockRange, streaming CompactBlock
// messages the reference-data ingester walks. No generated
// protoc-gen-go stub for lightwalletd's service exists anywhere in the
// pack (grpc itself is only an indirect, opentelemetry-pulled-in
// dependency of the teacher — see DESIGN.md), so request/response
// messages are hand-encoded with google.golang.org/protobuf/encoding/
// protowire directly against zvote's own wire field numbering (see the
// field constants in wire.go), and the stream itself
// is driven through grpc.ClientConn.NewStream with a raw byte-passthrough
// codec instead of a generated client stub.
package compactblock

// CompactAction is the subset of an Orchard action's fields a compact
// block carries (spec.md §6); only these six matter to the ingester.
type CompactAction struct {
	CvNet     [32]byte
	Nullifier [32]byte
	Rk        [32]byte
	Cmx       [32]byte
	Epk       [32]byte
	Enc       [52]byte // the COMPACT_NOTE_SIZE ciphertext prefix
}

// CompactTx is one transaction's worth of Orchard actions within a block.
type CompactTx struct {
	Hash    []byte
	Actions []CompactAction
}

// CompactBlock is one block's worth of transactions, as streamed by
// GetBlockRange.
type CompactBlock struct {
	Height uint32
	Vtx    []CompactTx
}
