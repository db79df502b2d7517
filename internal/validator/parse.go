package validator

import (
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/io7m/ironpage-sub000/internal/document"
	"github.com/io7m/ironpage-sub000/internal/schema"
)

// timestampMinutes is RFC 3339 without the seconds field.
const timestampMinutes = "2006-01-02T15:04Z07:00"

// Parse converts raw into the native representation of the primitive type.
func Parse(t schema.PrimitiveType, raw string) (document.Typed, error) {
	switch t {
	case schema.Boolean:
		return parseBoolean(raw)
	case schema.Integer:
		return parseInteger(raw)
	case schema.Real:
		return parseReal(raw)
	case schema.String:
		return document.String(raw), nil
	case schema.Timestamp:
		return parseTimestamp(raw)
	case schema.URI:
		return parseURI(raw)
	case schema.UUID:
		return parseUUID(raw)
	default:
		return nil, fmt.Errorf("unsupported primitive type %s", t)
	}
}

func parseBoolean(raw string) (document.Typed, error) {
	switch raw {
	case "true":
		return document.Boolean(true), nil
	case "false":
		return document.Boolean(false), nil
	default:
		return nil, errors.New("expected true or false")
	}
}

func parseInteger(raw string) (document.Typed, error) {
	i, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, errors.New("expected a decimal integer")
	}
	return document.Integer{Value: i}, nil
}

func parseReal(raw string) (document.Typed, error) {
	lower := strings.ToLower(raw)
	if strings.Contains(raw, "_") || strings.Contains(lower, "0x") {
		return nil, errors.New("expected a decimal number")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, errors.New("expected a decimal number")
	}
	return document.Real(f), nil
}

func parseTimestamp(raw string) (document.Typed, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return document.Timestamp(t), nil
	}
	if t, err := time.Parse(timestampMinutes, raw); err == nil {
		return document.Timestamp(t), nil
	}
	return nil, errors.New("expected an RFC 3339 date-time with an explicit offset")
}

func parseURI(raw string) (document.Typed, error) {
	for _, r := range raw {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return nil, fmt.Errorf("URI contains forbidden character %q", r)
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed URI: %w", err)
	}
	return document.URI{Value: u}, nil
}

func parseUUID(raw string) (document.Typed, error) {
	if len(raw) != 36 {
		return nil, errors.New("expected a UUID in 8-4-4-4-12 form")
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed UUID: %w", err)
	}
	return document.UUID(u), nil
}
