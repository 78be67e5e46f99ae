// FILE: logscribe/src/internal/scribe/types.go
package scribe

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// ResultCode is the collector's answer to a Log call
type ResultCode int64

const (
	ResultCodeOK       ResultCode = 0
	ResultCodeTryLater ResultCode = 1
)

func (c ResultCode) String() string {
	switch c {
	case ResultCodeOK:
		return "OK"
	case ResultCodeTryLater:
		return "TRY_LATER"
	}
	return fmt.Sprintf("ResultCode(%d)", int64(c))
}

// LogEntry is one category/message pair on the wire.
// Message is declared as a thrift string; binary and string share the same
// encoding, so raw bytes pass through unchanged.
type LogEntry struct {
	Category string
	Message  []byte
}

func (p *LogEntry) Read(ctx context.Context, iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read error: ", p), err)
	}

	for {
		_, fieldType, fieldID, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%T field %d read error: ", p, fieldID), err)
		}
		if fieldType == thrift.STOP {
			break
		}

		switch {
		case fieldID == 1 && fieldType == thrift.STRING:
			v, err := iprot.ReadString(ctx)
			if err != nil {
				return thrift.PrependError("error reading field 1: ", err)
			}
			p.Category = v
		case fieldID == 2 && fieldType == thrift.STRING:
			v, err := iprot.ReadBinary(ctx)
			if err != nil {
				return thrift.PrependError("error reading field 2: ", err)
			}
			p.Message = v
		default:
			if err := iprot.Skip(ctx, fieldType); err != nil {
				return err
			}
		}

		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}

	if err := iprot.ReadStructEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read struct end error: ", p), err)
	}
	return nil
}

func (p *LogEntry) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "LogEntry"); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct begin error: ", p), err)
	}

	if err := oprot.WriteFieldBegin(ctx, "category", thrift.STRING, 1); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write field begin error 1:category: ", p), err)
	}
	if err := oprot.WriteString(ctx, p.Category); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T.category (1) field write error: ", p), err)
	}
	if err := oprot.WriteFieldEnd(ctx); err != nil {
		return err
	}

	if err := oprot.WriteFieldBegin(ctx, "message", thrift.STRING, 2); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write field begin error 2:message: ", p), err)
	}
	if err := oprot.WriteBinary(ctx, p.Message); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T.message (2) field write error: ", p), err)
	}
	if err := oprot.WriteFieldEnd(ctx); err != nil {
		return err
	}

	if err := oprot.WriteFieldStop(ctx); err != nil {
		return thrift.PrependError("write field stop error: ", err)
	}
	return oprot.WriteStructEnd(ctx)
}

func (p *LogEntry) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("LogEntry(%s, %d bytes)", p.Category, len(p.Message))
}

// LogArgs is the argument struct of scribe.Log
type LogArgs struct {
	Messages []*LogEntry
}

func (p *LogArgs) Read(ctx context.Context, iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read error: ", p), err)
	}

	for {
		_, fieldType, fieldID, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%T field %d read error: ", p, fieldID), err)
		}
		if fieldType == thrift.STOP {
			break
		}

		if fieldID == 1 && fieldType == thrift.LIST {
			if err := p.readMessages(ctx, iprot); err != nil {
				return err
			}
		} else if err := iprot.Skip(ctx, fieldType); err != nil {
			return err
		}

		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}

	return iprot.ReadStructEnd(ctx)
}

func (p *LogArgs) readMessages(ctx context.Context, iprot thrift.TProtocol) error {
	_, size, err := iprot.ReadListBegin(ctx)
	if err != nil {
		return thrift.PrependError("error reading list begin: ", err)
	}

	p.Messages = make([]*LogEntry, 0, size)
	for i := 0; i < size; i++ {
		entry := &LogEntry{}
		if err := entry.Read(ctx, iprot); err != nil {
			return thrift.PrependError(fmt.Sprintf("%T error reading struct: ", entry), err)
		}
		p.Messages = append(p.Messages, entry)
	}

	if err := iprot.ReadListEnd(ctx); err != nil {
		return thrift.PrependError("error reading list end: ", err)
	}
	return nil
}

func (p *LogArgs) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "Log_args"); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct begin error: ", p), err)
	}

	if err := oprot.WriteFieldBegin(ctx, "messages", thrift.LIST, 1); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write field begin error 1:messages: ", p), err)
	}
	if err := oprot.WriteListBegin(ctx, thrift.STRUCT, len(p.Messages)); err != nil {
		return thrift.PrependError("error writing list begin: ", err)
	}
	for _, entry := range p.Messages {
		if err := entry.Write(ctx, oprot); err != nil {
			return thrift.PrependError(fmt.Sprintf("%T error writing struct: ", entry), err)
		}
	}
	if err := oprot.WriteListEnd(ctx); err != nil {
		return thrift.PrependError("error writing list end: ", err)
	}
	if err := oprot.WriteFieldEnd(ctx); err != nil {
		return err
	}

	if err := oprot.WriteFieldStop(ctx); err != nil {
		return thrift.PrependError("write field stop error: ", err)
	}
	return oprot.WriteStructEnd(ctx)
}

// LogResult is the result struct of scribe.Log
type LogResult struct {
	Success *ResultCode
}

func (p *LogResult) IsSetSuccess() bool {
	return p.Success != nil
}

func (p *LogResult) Read(ctx context.Context, iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read error: ", p), err)
	}

	for {
		_, fieldType, fieldID, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%T field %d read error: ", p, fieldID), err)
		}
		if fieldType == thrift.STOP {
			break
		}

		if fieldID == 0 && fieldType == thrift.I32 {
			v, err := iprot.ReadI32(ctx)
			if err != nil {
				return thrift.PrependError("error reading field 0: ", err)
			}
			code := ResultCode(v)
			p.Success = &code
		} else if err := iprot.Skip(ctx, fieldType); err != nil {
			return err
		}

		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}

	return iprot.ReadStructEnd(ctx)
}

func (p *LogResult) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "Log_result"); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct begin error: ", p), err)
	}

	if p.IsSetSuccess() {
		if err := oprot.WriteFieldBegin(ctx, "success", thrift.I32, 0); err != nil {
			return thrift.PrependError(fmt.Sprintf("%T write field begin error 0:success: ", p), err)
		}
		if err := oprot.WriteI32(ctx, int32(*p.Success)); err != nil {
			return thrift.PrependError(fmt.Sprintf("%T.success (0) field write error: ", p), err)
		}
		if err := oprot.WriteFieldEnd(ctx); err != nil {
			return err
		}
	}

	if err := oprot.WriteFieldStop(ctx); err != nil {
		return thrift.PrependError("write field stop error: ", err)
	}
	return oprot.WriteStructEnd(ctx)
}
