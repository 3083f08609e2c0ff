package compactblock

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"

	"github.com/vocdoni/zvote/errs"
)

const getBlockRangeMethod = "/cash.z.wallet.sdk.rpc.CompactTxStreamer/GetBlockRange"

// rawBytes is marshaled/unmarshaled as-is by rawCodec: it lets this
// package drive grpc's stream transport without a protoc-gen-go client
// stub, since the request/response encoding itself is hand-rolled in
// wire.go.
type rawBytes []byte

// rawCodec is a pass-through grpc.Codec: Marshal/Unmarshal just move
// bytes, leaving the actual protobuf-compatible wire format up to the
// caller (wire.go's Encode/Decode functions).
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	b, ok := v.(rawBytes)
	if !ok {
		return nil, errs.New(errs.Programmer, "compactblock: rawCodec given non-rawBytes value")
	}
	return b, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	p, ok := v.(*rawBytes)
	if !ok {
		return errs.New(errs.Programmer, "compactblock: rawCodec given non-*rawBytes target")
	}
	*p = append((*p)[:0], data...)
	return nil
}

func (rawCodec) Name() string { return "zvote-raw" }

func init() {
	encoding.RegisterCodec(rawCodec{})
}

// Client is a thin wrapper around a gRPC connection to a lightwalletd-
// compatible CompactTxStreamer endpoint.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to target (host:port), without transport security —
// lightwalletd deployments this client talks to are expected to sit
// behind a TLS-terminating proxy or run on a trusted local network; a
// production deployment would swap insecure.NewCredentials() for a real
// TLS config.
func Dial(ctx context.Context, target string) (*Client, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, errs.Wrap(errs.Io, "compactblock: dial failed", err)
	}
	return &Client{conn: conn}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// GetBlockRange streams CompactBlocks for [start, end] inclusive,
// invoking onBlock for each one in height order. Cancelling ctx aborts
// at the next received message (spec.md §5 "Cancellation ... aborts at
// the next suspension").
func (c *Client) GetBlockRange(ctx context.Context, start, end uint64, onBlock func(CompactBlock) error) error {
	desc := &grpc.StreamDesc{
		StreamName:    "GetBlockRange",
		ServerStreams: true,
	}
	stream, err := c.conn.NewStream(ctx, desc, getBlockRangeMethod, grpc.CallContentSubtype(rawCodec{}.Name()))
	if err != nil {
		return errs.Wrap(errs.Io, "compactblock: open stream failed", err)
	}

	req := rawBytes(EncodeBlockRange(start, end, 0))
	if err := stream.SendMsg(req); err != nil {
		return errs.Wrap(errs.Io, "compactblock: send request failed", err)
	}
	if err := stream.CloseSend(); err != nil {
		return errs.Wrap(errs.Io, "compactblock: close send failed", err)
	}

	for {
		var resp rawBytes
		if err := stream.RecvMsg(&resp); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errs.Wrap(errs.Io, "compactblock: stream recv failed", err)
		}
		cb, err := DecodeCompactBlock(resp)
		if err != nil {
			return err
		}
		if err := onBlock(cb); err != nil {
			return err
		}
	}
}
