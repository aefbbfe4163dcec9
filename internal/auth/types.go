package auth

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// RefreshRequest is the body POSTed to the refresh endpoint
type RefreshRequest struct {
	SystemToken  string `json:"systemToken"`
	APIToken     string `json:"apiToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse is the refresh endpoint's success envelope
type RefreshResponse struct {
	Data *RefreshData `json:"data"`
}

// RefreshData carries the issued access token. Pointer fields distinguish absent from zero.
type RefreshData struct {
	AccessToken *string     `json:"accessToken"`
	Expiration  *Expiration `json:"expiration"`
}

// Expiration is an epoch-seconds timestamp. The service sends it as a JSON
// integer, but a quoted decimal string is accepted as well.
type Expiration int64

func (e *Expiration) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	quoted := len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"'
	if quoted {
		raw = bytes.TrimSpace(raw[1 : len(raw)-1])
	}

	if v, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		*e = Expiration(v)
		return nil
	}

	// fractional JSON numbers are truncated toward zero
	if !quoted {
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			*e = Expiration(int64(f))
			return nil
		}
	}
	return fmt.Errorf("expiration %s is not an integer", string(data))
}
