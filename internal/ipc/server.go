package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"sync"

	"equalmedia/internal/daemon"
	"equalmedia/internal/logging"
	"equalmedia/internal/services"
)

// Server exposes the sandbox via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path, replacing any
// stale socket file.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create socket directory: %w", err)
	}
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("restrict socket permissions: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	rpcServer := rpc.NewServer()
	svc := &service{daemon: d, logger: logger, ctx: serverCtx}
	if err := rpcServer.RegisterName(ServiceName, svc); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the sandbox if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file. Connected clients are
// served until they disconnect.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"))
	}
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) requestContext(requestID, feature string) context.Context {
	ctx := services.WithRequestID(s.ctx, requestID)
	return services.WithFeature(ctx, feature)
}

func (s *service) CreateRectangle(req CreateRectangleRequest, resp *InsertResponse) error {
	summary, err := s.daemon.Proxy().CreateRectangle(s.requestContext(req.RequestID, services.FeatureDocument))
	resp.Summary = summary
	return err
}

func (s *service) AddCaptionsToDocument(req AddCaptionsRequest, resp *InsertResponse) error {
	summary, err := s.daemon.Proxy().AddCaptionsToDocument(s.requestContext(req.RequestID, services.FeatureCaptions), req.Captions)
	resp.Summary = summary
	return err
}

func (s *service) AddAudioNarrationToDocument(req AddNarrationRequest, resp *InsertResponse) error {
	summary, err := s.daemon.Proxy().AddAudioNarrationToDocument(s.requestContext(req.RequestID, services.FeatureNarration), req.Narration)
	resp.Summary = summary
	return err
}

func (s *service) AddSignLanguageAvatarToDocument(req AddAvatarRequest, resp *InsertResponse) error {
	summary, err := s.daemon.Proxy().AddSignLanguageAvatarToDocument(s.requestContext(req.RequestID, services.FeatureAvatar), req.Avatar, req.Config)
	resp.Summary = summary
	return err
}

func (s *service) ExtractTextFromDocument(req ExtractTextRequest, resp *ExtractTextResponse) error {
	texts, err := s.daemon.Proxy().ExtractTextFromDocument(s.requestContext(req.RequestID, services.FeatureDocument))
	if err != nil {
		return err
	}
	resp.Texts = texts
	return nil
}

func (s *service) Document(_ DocumentRequest, resp *DocumentResponse) error {
	*resp = s.daemon.Document()
	return nil
}

func (s *service) SetAPIConfig(req SetAPIConfigRequest, resp *SetAPIConfigResponse) error {
	merged := s.daemon.SetAPIConfig(services.WithRequestID(s.ctx, req.RequestID), req.Config)
	resp.Config = merged.Redacted()
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	*resp = s.daemon.Status(s.ctx)
	return nil
}
