package compactblock

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/vocdoni/zvote/errs"
)

// Field numbers for the hand-rolled wire schema. These are zvote's own
// numbering (lightwalletd's real compact_formats.proto omits cv_net/rk
// from its wire format entirely; spec.md's CompactAction additionally
// requires them), not a reproduction of an external .proto file.
const (
	fieldBlockRangeStart   = 1
	fieldBlockRangeEnd     = 2
	fieldBlockRangeSpamThr = 3

	fieldBlockHeight = 1
	fieldBlockVtx    = 2

	fieldTxHash    = 1
	fieldTxActions = 2

	fieldActionCvNet     = 1
	fieldActionNullifier = 2
	fieldActionRk        = 3
	fieldActionCmx       = 4
	fieldActionEpk       = 5
	fieldActionEnc       = 6
)

// EncodeBlockRange marshals the GetBlockRange request.
func EncodeBlockRange(start, end uint64, spamFilterThreshold uint32) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldBlockRangeStart, protowire.VarintType)
	b = protowire.AppendVarint(b, start)
	b = protowire.AppendTag(b, fieldBlockRangeEnd, protowire.VarintType)
	b = protowire.AppendVarint(b, end)
	b = protowire.AppendTag(b, fieldBlockRangeSpamThr, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(spamFilterThreshold))
	return b
}

// DecodeCompactBlock parses one CompactBlock message.
func DecodeCompactBlock(data []byte) (CompactBlock, error) {
	var cb CompactBlock
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return CompactBlock{}, errs.New(errs.InvalidEncoding, "compactblock: malformed block tag")
		}
		data = data[n:]
		switch num {
		case fieldBlockHeight:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return CompactBlock{}, errs.New(errs.InvalidEncoding, "compactblock: malformed height")
			}
			cb.Height = uint32(v)
			data = data[n:]
		case fieldBlockVtx:
			if typ != protowire.BytesType {
				return CompactBlock{}, errs.New(errs.InvalidEncoding, "compactblock: malformed vtx entry")
			}
			sub, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return CompactBlock{}, errs.New(errs.InvalidEncoding, "compactblock: malformed vtx entry")
			}
			tx, err := decodeCompactTx(sub)
			if err != nil {
				return CompactBlock{}, err
			}
			cb.Vtx = append(cb.Vtx, tx)
			data = data[n:]
		default:
			n := skipField(data, typ)
			if n < 0 {
				return CompactBlock{}, errs.New(errs.InvalidEncoding, "compactblock: unknown field")
			}
			data = data[n:]
		}
	}
	return cb, nil
}

func decodeCompactTx(data []byte) (CompactTx, error) {
	var tx CompactTx
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return CompactTx{}, errs.New(errs.InvalidEncoding, "compactblock: malformed tx tag")
		}
		data = data[n:]
		switch num {
		case fieldTxHash:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return CompactTx{}, errs.New(errs.InvalidEncoding, "compactblock: malformed tx hash")
			}
			tx.Hash = append([]byte(nil), v...)
			data = data[n:]
		case fieldTxActions:
			sub, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return CompactTx{}, errs.New(errs.InvalidEncoding, "compactblock: malformed action entry")
			}
			act, err := decodeCompactAction(sub)
			if err != nil {
				return CompactTx{}, err
			}
			tx.Actions = append(tx.Actions, act)
			data = data[n:]
		default:
			n := skipField(data, typ)
			if n < 0 {
				return CompactTx{}, errs.New(errs.InvalidEncoding, "compactblock: unknown field")
			}
			data = data[n:]
		}
	}
	return tx, nil
}

func decodeCompactAction(data []byte) (CompactAction, error) {
	var a CompactAction
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return CompactAction{}, errs.New(errs.InvalidEncoding, "compactblock: malformed action tag")
		}
		data = data[n:]
		if typ != protowire.BytesType {
			nn := skipField(data, typ)
			if nn < 0 {
				return CompactAction{}, errs.New(errs.InvalidEncoding, "compactblock: unknown field")
			}
			data = data[nn:]
			continue
		}
		v, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return CompactAction{}, errs.New(errs.InvalidEncoding, "compactblock: malformed action field")
		}
		switch num {
		case fieldActionCvNet:
			if len(v) != 32 {
				return CompactAction{}, errs.New(errs.Programmer, "compactblock: cv_net wrong length")
			}
			copy(a.CvNet[:], v)
		case fieldActionNullifier:
			if len(v) != 32 {
				return CompactAction{}, errs.New(errs.Programmer, "compactblock: nullifier wrong length")
			}
			copy(a.Nullifier[:], v)
		case fieldActionRk:
			if len(v) != 32 {
				return CompactAction{}, errs.New(errs.Programmer, "compactblock: rk wrong length")
			}
			copy(a.Rk[:], v)
		case fieldActionCmx:
			if len(v) != 32 {
				return CompactAction{}, errs.New(errs.Programmer, "compactblock: cmx wrong length")
			}
			copy(a.Cmx[:], v)
		case fieldActionEpk:
			if len(v) != 32 {
				return CompactAction{}, errs.New(errs.Programmer, "compactblock: epk wrong length")
			}
			copy(a.Epk[:], v)
		case fieldActionEnc:
			if len(v) != 52 {
				return CompactAction{}, errs.New(errs.Programmer, "compactblock: enc wrong length")
			}
			copy(a.Enc[:], v)
		}
		data = data[n:]
	}
	return a, nil
}

func skipField(data []byte, typ protowire.Type) int {
	n := protowire.ConsumeFieldValue(0, typ, data)
	return n
}
