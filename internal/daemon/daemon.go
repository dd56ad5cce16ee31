// Package daemon serves the MCP dispatcher on a unix socket, one JSON-RPC
// connection per client.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/x-mcp/internal/logger"
	"github.com/alucardeht/x-mcp/internal/mcp"
)

var log = logger.ForComponent("daemon")

type Daemon struct {
	socketPath string
	listener   *SocketListener
	lock       *LockFile
	handler    *mcp.Handler

	connMu      sync.Mutex
	connections map[*jsonrpc2.Conn]string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
	startTime    time.Time
}

func New(socketPath string, handler *mcp.Handler) *Daemon {
	return &Daemon{
		socketPath:  socketPath,
		listener:    NewSocketListener(socketPath),
		lock:        NewLockFile(socketPath + ".lock"),
		handler:     handler,
		connections: make(map[*jsonrpc2.Conn]string),
		shutdown:    make(chan struct{}),
	}
}

// Start takes the socket lock, binds the socket and begins accepting.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.lock.Acquire(); err != nil {
		return err
	}
	if err := d.listener.Start(); err != nil {
		d.lock.Release()
		return fmt.Errorf("failed to listen on %s: %w", d.socketPath, err)
	}

	d.startTime = time.Now()
	log.Info("daemon listening", "socket", d.socketPath)

	d.wg.Add(1)
	go d.acceptConnections(ctx)
	return nil
}

// Serve runs until ctx is cancelled, then shuts down.
func (d *Daemon) Serve(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-d.shutdown:
	}
	d.Shutdown()
	return nil
}

func (d *Daemon) acceptConnections(ctx context.Context) {
	defer d.wg.Done()

	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.shutdown:
				return
			default:
			}
			log.Warn("accept failed", "error", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}

		id := uuid.NewString()
		stream := jsonrpc2.NewBufferedStream(conn, jsonrpc2.PlainObjectCodec{})
		rpc := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(d.handle))

		d.connMu.Lock()
		d.connections[rpc] = id
		d.connMu.Unlock()
		log.Debug("client connected", "conn", id)

		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			<-rpc.DisconnectNotify()

			d.connMu.Lock()
			delete(d.connections, rpc)
			d.connMu.Unlock()
			log.Debug("client disconnected", "conn", id)
		}()
	}
}

func (d *Daemon) handle(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	var params json.RawMessage
	if req.Params != nil {
		params = *req.Params
	}

	if req.Notif {
		d.handler.Handle(ctx, &mcp.Request{Method: req.Method, Params: params})
		return nil, nil
	}

	result, rpcErr := d.handler.Dispatch(ctx, req.Method, params)
	if rpcErr != nil {
		return nil, &jsonrpc2.Error{Code: rpcErr.Code, Message: rpcErr.Message}
	}
	return result, nil
}

func (d *Daemon) Shutdown() {
	d.shutdownOnce.Do(func() {
		close(d.shutdown)
		d.listener.Close()

		d.connMu.Lock()
		for conn := range d.connections {
			conn.Close()
		}
		d.connMu.Unlock()

		d.wg.Wait()

		if err := os.Remove(d.socketPath); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove socket", "socket", d.socketPath, "error", err)
		}
		d.lock.Release()
		log.Info("daemon stopped", "socket", d.socketPath)
	})
}

func (d *Daemon) SocketPath() string {
	return d.socketPath
}

func (d *Daemon) Uptime() time.Duration {
	return time.Since(d.startTime)
}

func (d *Daemon) ConnectionCount() int {
	d.connMu.Lock()
	defer d.connMu.Unlock()
	return len(d.connections)
}
