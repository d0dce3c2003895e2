package mcpquic

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/quic-go/quic-go"
)

// Client is an MCP client over a single QUIC stream.
type Client struct {
	conn      *quic.Conn
	stream    *quic.Stream
	mcpClient *client.Client
}

// Connect dials a QUIC endpoint, negotiates the MCP ALPN, sends the magic
// preamble and runs the MCP initialize handshake.
func Connect(ctx context.Context, addr string, tlsCfg *tls.Config) (*Client, error) {
	if tlsCfg == nil {
		tlsCfg = ClientTLSConfig(true)
	}

	c := &Client{}

	conn, err := quic.DialAddr(ctx, addr, tlsCfg, ProductionQUICConfig())
	if err != nil {
		return nil, &ConnectionError{RemoteAddr: addr, Err: err}
	}

	alpn := conn.ConnectionState().TLS.NegotiatedProtocol
	if alpn != ALPNProtocolMCP {
		conn.CloseWithError(ConnErrorUnsupportedALPN, "bad ALPN")
		return nil, fmt.Errorf("%w: got %q, want %q", ErrUnsupportedALPN, alpn, ALPNProtocolMCP)
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(ConnErrorProtocolViolation, "stream open failed")
		return nil, &ConnectionError{RemoteAddr: addr, Err: err}
	}

	if err := SendMagicBytes(stream); err != nil {
		stream.Close()
		conn.CloseWithError(ConnErrorProtocolViolation, "magic bytes failed")
		return nil, &ConnectionError{RemoteAddr: addr, Err: err}
	}

	c.conn = conn
	c.stream = stream

	stdioTransport := transport.NewIO(stream, &writeCloser{stream}, nopReadCloser{})
	mcpClient := client.NewClient(stdioTransport)

	if err := mcpClient.Start(ctx); err != nil {
		c.closeTransport()
		return nil, fmt.Errorf("mcp start: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "visitledger-quic-client",
		Version: "1.0.0",
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := mcpClient.Initialize(initCtx, initReq); err != nil {
		c.closeTransport()
		return nil, fmt.Errorf("mcp initialize: %w", err)
	}

	c.mcpClient = mcpClient
	return c, nil
}

// ListTools returns the tools exposed by the server.
func (c *Client) ListTools(ctx context.Context) (*mcp.ListToolsResult, error) {
	if c.mcpClient == nil {
		return nil, fmt.Errorf("client not connected")
	}
	return c.mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
}

// CallTool invokes a named tool with the given arguments.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	if c.mcpClient == nil {
		return nil, fmt.Errorf("client not connected")
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return c.mcpClient.CallTool(ctx, req)
}

// Ping checks the connection liveness at the MCP layer.
func (c *Client) Ping(ctx context.Context) error {
	if c.mcpClient == nil {
		return fmt.Errorf("client not connected")
	}
	return c.mcpClient.Ping(ctx)
}

// Close shuts down the MCP client, the stream and the QUIC connection.
func (c *Client) Close() error {
	var firstErr error
	if c.mcpClient != nil {
		if err := c.mcpClient.Close(); err != nil {
			firstErr = err
		}
		c.mcpClient = nil
	}
	if err := c.closeTransport(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (c *Client) closeTransport() error {
	var firstErr error
	if c.stream != nil {
		if err := c.stream.Close(); err != nil {
			firstErr = err
		}
		c.stream = nil
	}
	if c.conn != nil {
		if err := c.conn.CloseWithError(ConnErrorNoError, "client closing"); err != nil && firstErr == nil {
			firstErr = err
		}
		c.conn = nil
	}
	return firstErr
}

// writeCloser adapts the write side of a quic.Stream to io.WriteCloser.
type writeCloser struct{ stream *quic.Stream }

func (w *writeCloser) Write(p []byte) (int, error) { return (*w.stream).Write(p) }
func (w *writeCloser) Close() error                { return (*w.stream).Close() }

// nopReadCloser satisfies the transport's logging reader with an empty stream.
type nopReadCloser struct{}

func (nopReadCloser) Read([]byte) (int, error) { return 0, io.EOF }
func (nopReadCloser) Close() error             { return nil }
