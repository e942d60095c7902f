package output

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip39"

	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

// Encoding selects how binary results are rendered.
type Encoding string

// Supported encodings.
const (
	EncodingHex      Encoding = "hex"
	EncodingBase64   Encoding = "base64"
	EncodingRaw      Encoding = "raw"
	EncodingMnemonic Encoding = "mnemonic"
)

// ParseEncoding parses an encoding name.
func ParseEncoding(s string) (Encoding, error) {
	switch enc := Encoding(strings.ToLower(strings.TrimSpace(s))); enc {
	case EncodingHex, EncodingBase64, EncodingRaw, EncodingMnemonic:
		return enc, nil
	case "b64":
		return EncodingBase64, nil
	default:
		return "", coreerr.WithSuggestion(
			coreerr.WithDetails(coreerr.ErrInvalidInput, map[string]string{"encoding": s}),
			"use one of: hex, base64, raw, mnemonic",
		)
	}
}

// IsText reports whether the encoding yields printable text.
func (e Encoding) IsText() bool {
	return e != EncodingRaw
}

// Encode renders data. Mnemonic encoding produces a BIP-39 English word
// list and needs 16, 20, 24, 28 or 32 bytes.
func Encode(data []byte, enc Encoding) (string, error) {
	switch enc {
	case EncodingHex:
		return hex.EncodeToString(data), nil
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(data), nil
	case EncodingRaw:
		return string(data), nil
	case EncodingMnemonic:
		words, err := bip39.NewMnemonic(data)
		if err != nil {
			return "", coreerr.WithSuggestion(
				coreerr.WithDetails(coreerr.WithCause(coreerr.ErrInvalidInput, err), map[string]string{
					"length": strconv.Itoa(len(data)),
				}),
				"mnemonic encoding needs 16, 20, 24, 28 or 32 bytes",
			)
		}
		return words, nil
	default:
		_, err := ParseEncoding(string(enc))
		return "", err
	}
}

// Decode reverses Encode for the text encodings.
func Decode(s string, enc Encoding) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	switch enc {
	case EncodingHex:
		data, err = hex.DecodeString(strings.TrimSpace(s))
	case EncodingBase64:
		data, err = base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	case EncodingRaw:
		return []byte(s), nil
	case EncodingMnemonic:
		data, err = bip39.EntropyFromMnemonic(strings.Join(strings.Fields(s), " "))
	default:
		_, err := ParseEncoding(string(enc))
		return nil, err
	}

	if err != nil {
		return nil, coreerr.WithCause(coreerr.ErrInvalidInput, err)
	}
	return data, nil
}
