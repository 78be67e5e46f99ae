// FILE: logscribe/src/internal/scribe/client.go
package scribe

import (
	"context"
	"net"
	"time"

	"github.com/apache/thrift/lib/go/thrift"
)

// MethodLog is the only RPC the output issues
const MethodLog = "Log"

// Configuration returns the thrift settings a Scribe peer speaks: framed
// transport, non-strict binary protocol, one timeout for every socket op.
func Configuration(timeout time.Duration) *thrift.TConfiguration {
	return &thrift.TConfiguration{
		ConnectTimeout:     timeout,
		SocketTimeout:      timeout,
		TBinaryStrictRead:  thrift.BoolPtr(false),
		TBinaryStrictWrite: thrift.BoolPtr(false),
	}
}

// Wrap layers the framed transport and binary protocol over an open
// connection. Closing the returned transport closes conn.
func Wrap(conn net.Conn, conf *thrift.TConfiguration) (thrift.TTransport, thrift.TProtocol) {
	socket := thrift.NewTSocketFromConnConf(conn, conf)
	transport := thrift.NewTFramedTransportConf(socket, conf)
	protocol := thrift.NewTBinaryProtocolConf(transport, conf)
	return transport, protocol
}

// Client is a synchronous scribe service client. It is not safe for
// concurrent use; callers own one client per connection.
type Client struct {
	iprot thrift.TProtocol
	oprot thrift.TProtocol
	seqID int32
}

// NewClient creates a client that reads and writes through the same protocol
func NewClient(prot thrift.TProtocol) *Client {
	return &Client{iprot: prot, oprot: prot}
}

// Log sends one batch and waits for the collector's result code
func (c *Client) Log(ctx context.Context, messages []*LogEntry) (ResultCode, error) {
	if err := c.send(ctx, messages); err != nil {
		return 0, err
	}
	return c.recv(ctx)
}

func (c *Client) send(ctx context.Context, messages []*LogEntry) error {
	c.seqID++

	if err := c.oprot.WriteMessageBegin(ctx, MethodLog, thrift.CALL, c.seqID); err != nil {
		return err
	}
	args := LogArgs{Messages: messages}
	if err := args.Write(ctx, c.oprot); err != nil {
		return err
	}
	if err := c.oprot.WriteMessageEnd(ctx); err != nil {
		return err
	}
	return c.oprot.Flush(ctx)
}

func (c *Client) recv(ctx context.Context) (ResultCode, error) {
	method, messageType, seqID, err := c.iprot.ReadMessageBegin(ctx)
	if err != nil {
		return 0, err
	}
	if method != MethodLog {
		return 0, thrift.NewTApplicationException(thrift.WRONG_METHOD_NAME,
			"Log failed: wrong method name "+method)
	}
	if seqID != c.seqID {
		return 0, thrift.NewTApplicationException(thrift.BAD_SEQUENCE_ID,
			"Log failed: out of sequence response")
	}

	switch messageType {
	case thrift.EXCEPTION:
		exc := thrift.NewTApplicationException(thrift.UNKNOWN_APPLICATION_EXCEPTION, "Unknown Exception")
		if err := exc.Read(ctx, c.iprot); err != nil {
			return 0, err
		}
		if err := c.iprot.ReadMessageEnd(ctx); err != nil {
			return 0, err
		}
		return 0, exc
	case thrift.REPLY:
	default:
		return 0, thrift.NewTApplicationException(thrift.INVALID_MESSAGE_TYPE_EXCEPTION,
			"Log failed: invalid message type")
	}

	var result LogResult
	if err := result.Read(ctx, c.iprot); err != nil {
		return 0, err
	}
	if err := c.iprot.ReadMessageEnd(ctx); err != nil {
		return 0, err
	}

	if !result.IsSetSuccess() {
		return 0, thrift.NewTApplicationException(thrift.MISSING_RESULT,
			"Log failed: unknown result")
	}
	return *result.Success, nil
}
