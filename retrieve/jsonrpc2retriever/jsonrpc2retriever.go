// Package jsonrpc2retriever is a concrete retrieve hook (spec.md §4.7)
// that fetches an unknown URI's contents from a peer process over
// JSON-RPC2 framing, grounded on cmd/tony-lsp/main.go's
// jsonrpc2.NewStream/jsonrpc2.NewConn wiring (there used for an editor's
// LSP connection; here for a plain "fetch resource by URI" RPC).
package jsonrpc2retriever

import (
	"context"
	"fmt"
	"io"

	"go.lsp.dev/jsonrpc2"

	"github.com/signadot/jsonref/resource"
	"github.com/signadot/jsonref/retrieve/textretriever"
)

// Method is the RPC method name a peer must implement: given
// {"uri": "..."} it must return {"contents": "..."}, where contents is the
// resource's raw JSON text as a string.
const Method = "jsonref/fetchResource"

type fetchParams struct {
	URI string `json:"uri"`
}

type fetchResult struct {
	Contents string `json:"contents"`
}

// Retriever issues Method calls over an established jsonrpc2.Conn and
// parses the returned JSON text the same way textretriever.JSONParse
// would, so the result composes with registry.WithRetrieve identically.
type Retriever struct {
	conn jsonrpc2.Conn
}

// Dial wraps an already-open, bidirectional stream (e.g. a TCP
// connection, or stdio when this process is itself being driven as a
// peer) as a JSON-RPC2 connection and starts its read loop.
func Dial(ctx context.Context, rw io.ReadWriteCloser) *Retriever {
	stream := jsonrpc2.NewStream(rw)
	conn := jsonrpc2.NewConn(stream)
	conn.Go(ctx, refuseInboundCalls)
	return &Retriever{conn: conn}
}

// refuseInboundCalls is the jsonrpc2.Handler for this connection: a
// retrieve hook only ever issues outbound Method calls, it never serves
// any (a peer calling back into it is a protocol error).
func refuseInboundCalls(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	return reply(ctx, nil, fmt.Errorf("jsonrpc2retriever: no inbound method %q is served", req.Method()))
}

// Retrieve has the shape registry.Retrieve requires.
func (r *Retriever) Retrieve(uri string) (resource.Resource, error) {
	ctx := context.Background()
	var result fetchResult
	if _, err := r.conn.Call(ctx, Method, fetchParams{URI: uri}, &result); err != nil {
		return resource.Resource{}, fmt.Errorf("jsonrpc2retriever: fetching %s: %w", uri, err)
	}
	contents, err := textretriever.JSONParse([]byte(result.Contents))
	if err != nil {
		return resource.Resource{}, fmt.Errorf("jsonrpc2retriever: parsing %s: %w", uri, err)
	}
	res, ok := resource.FromContents(contents)
	if !ok {
		return resource.Resource{}, fmt.Errorf("jsonrpc2retriever: %s: cannot determine specification", uri)
	}
	return res, nil
}

// Close shuts down the underlying connection.
func (r *Retriever) Close() error {
	return r.conn.Close()
}
