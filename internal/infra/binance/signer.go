package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"
)

// Signer handles Binance futures API request signing. Signed endpoints take
// an HMAC-SHA256 hex signature over the query string, plus the API key in a
// header.
type Signer struct {
	apiKey    string
	apiSecret string
}

// NewSigner creates a new Signer instance.
func NewSigner(apiKey, apiSecret string) *Signer {
	return &Signer{apiKey: apiKey, apiSecret: apiSecret}
}

// SignQuery appends timestamp and signature parameters to the given query
// values and returns the encoded query string, ready to send.
func (s *Signer) SignQuery(params url.Values) string {
	params.Set("timestamp", fmt.Sprintf("%d", time.Now().UnixMilli()))
	encoded := params.Encode()
	return encoded + "&signature=" + computeHmacSha256Hex(encoded, s.apiSecret)
}

// AuthHeaders returns the headers every signed request carries.
func (s *Signer) AuthHeaders() map[string]string {
	return map[string]string{
		"X-MBX-APIKEY": s.apiKey,
		"Content-Type": "application/x-www-form-urlencoded",
	}
}

func computeHmacSha256Hex(message, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}
