package log

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/holiman/uint256"

	elog "github.com/ethereum/go-ethereum/log"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/eth"
)

const timeFormatMs = "2006-01-02T15:04:05.000-0700"

type leveler struct{ minLevel slog.Level }

func (l *leveler) Level() slog.Level {
	return l.minLevel
}

// JSONMsHandlerWithLevel emits one JSON object per record, with millisecond timestamps.
func JSONMsHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: replaceJSONMs,
		Level:       &leveler{level},
	})
}

func LogfmtMsHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: replaceLogfmtMs,
		Level:       &leveler{level},
	})
}

func replaceLogfmtMs(_ []string, attr slog.Attr) slog.Attr {
	return replaceMs(attr, true)
}

func replaceJSONMs(_ []string, attr slog.Attr) slog.Attr {
	return replaceMs(attr, false)
}

// weiKeys name attributes that always carry an amount of wei.
var weiKeys = map[string]bool{"cost": true, "value": true, "balance": true}

func isWeiKey(key string) bool {
	return weiKeys[key] || strings.HasSuffix(key, "_wei")
}

// weiGroup renders an amount both in wei and in ether, as cost.wei=... cost.eth=...
func weiGroup(key string, wei *big.Int) slog.Attr {
	return slog.Group(key, slog.String("wei", wei.String()), slog.String("eth", eth.FormatEther(wei)))
}

// replaceMs renders big integers as decimal strings so that values above 2^53
// survive JSON consumers intact. Wei amounts also get their ether value.
func replaceMs(attr slog.Attr, logfmt bool) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() == slog.KindTime {
			if logfmt {
				return slog.String("t", attr.Value.Time().Format(timeFormatMs))
			}
			return slog.Attr{Key: "t", Value: attr.Value}
		}
	case slog.LevelKey:
		if l, ok := attr.Value.Any().(slog.Level); ok {
			return slog.Any("lvl", elog.LevelString(l))
		}
	}

	switch v := attr.Value.Any().(type) {
	case time.Time:
		if logfmt {
			attr = slog.String(attr.Key, v.Format(timeFormatMs))
		}
	case *big.Int:
		if v == nil {
			attr.Value = slog.StringValue("<nil>")
		} else if isWeiKey(attr.Key) {
			attr = weiGroup(attr.Key, v)
		} else {
			attr.Value = slog.StringValue(v.String())
		}
	case *uint256.Int:
		if v == nil {
			attr.Value = slog.StringValue("<nil>")
		} else if isWeiKey(attr.Key) {
			attr = weiGroup(attr.Key, v.ToBig())
		} else {
			attr.Value = slog.StringValue(v.Dec())
		}
	case fmt.Stringer:
		if v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil()) {
			attr.Value = slog.StringValue("<nil>")
		} else {
			attr.Value = slog.StringValue(v.String())
		}
	}
	return attr
}
