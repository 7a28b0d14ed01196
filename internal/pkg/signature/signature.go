// Package signature implements the HMAC scheme protecting payment completion
// notifications. The header format is "t=<unix>,v1=<hex>", where v1 is the
// HMAC-SHA256 of "<unix>.<payload>" under the shared webhook secret.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedHeader = errors.New("signature: malformed header")
	ErrMismatch        = errors.New("signature: mismatch")
	ErrTooOld          = errors.New("signature: timestamp outside tolerance")
)

// Sign produces a signature header for payload at the given time.
func Sign(secret string, payload []byte, at time.Time) string {
	ts := at.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(digest(secret, payload, ts)))
}

// Verify checks header against payload. A non-positive tolerance disables the
// timestamp check.
func Verify(secret string, payload []byte, header string, tolerance time.Duration) error {
	ts, sig, err := parseHeader(header)
	if err != nil {
		return err
	}

	if tolerance > 0 {
		age := time.Since(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return ErrTooOld
		}
	}

	expected := digest(secret, payload, ts)
	if !hmac.Equal(expected, sig) {
		return ErrMismatch
	}
	return nil
}

func parseHeader(header string) (int64, []byte, error) {
	var ts int64
	var sig []byte
	seenTS, seenSig := false, false

	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return 0, nil, ErrMalformedHeader
		}
		switch key {
		case "t":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, ErrMalformedHeader
			}
			ts, seenTS = n, true
		case "v1":
			raw, err := hex.DecodeString(value)
			if err != nil {
				return 0, nil, ErrMalformedHeader
			}
			sig, seenSig = raw, true
		}
	}

	if !seenTS || !seenSig {
		return 0, nil, ErrMalformedHeader
	}
	return ts, sig, nil
}

func digest(secret string, payload []byte, ts int64) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return mac.Sum(nil)
}
