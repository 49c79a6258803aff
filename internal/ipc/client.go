package ipc

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"strings"
	"time"

	"equalmedia/internal/avatar"
	"equalmedia/internal/captions"
	"equalmedia/internal/config"
	"equalmedia/internal/document"
	"equalmedia/internal/narration"
	"equalmedia/internal/services"
)

// Client provides RPC access to the sandbox daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		err := c.conn.Close()
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		return err
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, req, resp any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	call := c.client.Go(ServiceName+"."+method, req, resp, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case done := <-call.Done:
		return decodeRemoteError(done.Error)
	}
}

func requestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := services.RequestIDFromContext(ctx)
	return id
}

// CreateRectangle draws the demo rectangle.
func (c *Client) CreateRectangle(ctx context.Context) (document.InsertSummary, error) {
	var resp InsertResponse
	err := c.call(ctx, "CreateRectangle", CreateRectangleRequest{RequestID: requestID(ctx)}, &resp)
	return resp.Summary, err
}

// AddCaptionsToDocument inserts captions.
func (c *Client) AddCaptionsToDocument(ctx context.Context, caps []captions.Caption) (document.InsertSummary, error) {
	var resp InsertResponse
	err := c.call(ctx, "AddCaptionsToDocument", AddCaptionsRequest{RequestID: requestID(ctx), Captions: caps}, &resp)
	return resp.Summary, err
}

// AddAudioNarrationToDocument inserts the narration indicator. Audio bytes
// are not sent; the sandbox only renders the duration.
func (c *Client) AddAudioNarrationToDocument(ctx context.Context, n narration.AudioNarration) (document.InsertSummary, error) {
	var resp InsertResponse
	err := c.call(ctx, "AddAudioNarrationToDocument", AddNarrationRequest{RequestID: requestID(ctx), Narration: n.WithoutAudio()}, &resp)
	return resp.Summary, err
}

// AddSignLanguageAvatarToDocument inserts an avatar placeholder.
func (c *Client) AddSignLanguageAvatarToDocument(ctx context.Context, a avatar.SignLanguageAvatar, cfg *avatar.Config) (document.InsertSummary, error) {
	var resp InsertResponse
	err := c.call(ctx, "AddSignLanguageAvatarToDocument", AddAvatarRequest{RequestID: requestID(ctx), Avatar: a, Config: cfg}, &resp)
	return resp.Summary, err
}

// ExtractTextFromDocument returns the document text fragments.
func (c *Client) ExtractTextFromDocument(ctx context.Context) ([]string, error) {
	var resp ExtractTextResponse
	if err := c.call(ctx, "ExtractTextFromDocument", ExtractTextRequest{RequestID: requestID(ctx)}, &resp); err != nil {
		return nil, err
	}
	if resp.Texts == nil {
		resp.Texts = []string{}
	}
	return resp.Texts, nil
}

// Document returns a scene snapshot.
func (c *Client) Document(ctx context.Context) (*DocumentResponse, error) {
	var resp DocumentResponse
	if err := c.call(ctx, "Document", DocumentRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetAPIConfig merges credentials into the daemon and returns them redacted.
func (c *Client) SetAPIConfig(ctx context.Context, partial config.APIConfigUpdate) (config.APIConfig, error) {
	var resp SetAPIConfigResponse
	err := c.call(ctx, "SetAPIConfig", SetAPIConfigRequest{RequestID: requestID(ctx), Config: partial}, &resp)
	return resp.Config, err
}

// Status retrieves the daemon status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call(ctx, "Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoteError is an error returned by the daemon. It unwraps to the services
// sentinel named at the start of its message, if any.
type RemoteError struct {
	Message string
	marker  error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.marker
}

var remoteMarkers = []error{
	services.ErrConfiguration,
	services.ErrValidation,
	services.ErrNotFound,
	services.ErrConflict,
	services.ErrTimeout,
	services.ErrExternalAPI,
	services.ErrTransient,
}

func decodeRemoteError(err error) error {
	var serverErr rpc.ServerError
	if !errors.As(err, &serverErr) {
		return err
	}
	msg := string(serverErr)
	remote := &RemoteError{Message: msg}
	for _, marker := range remoteMarkers {
		prefix := marker.Error()
		if msg == prefix || strings.HasPrefix(msg, prefix+":") {
			remote.marker = marker
			break
		}
	}
	return remote
}
