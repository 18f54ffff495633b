package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// HTTPOracle talks to a remote randomness coordinator over HTTP. The
// coordinator issues request ids synchronously and later delivers the
// randomness by POSTing to this server's /api/oracle/callback endpoint,
// signing each delivery with the key behind its registered address.
type HTTPOracle struct {
	baseURL     string
	callbackURL string
	identity    common.Address
	client      *http.Client
}

type requestRandomnessRequest struct {
	CallbackURL string `json:"callbackUrl"`
}

type requestRandomnessResponse struct {
	RequestID string `json:"requestId"`
}

// NewHTTPOracle creates a client for a remote coordinator
func NewHTTPOracle(baseURL, callbackURL string, identity common.Address) *HTTPOracle {
	return &HTTPOracle{
		baseURL:     baseURL,
		callbackURL: callbackURL,
		identity:    identity,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

// Identity returns the coordinator's registered callback address
func (o *HTTPOracle) Identity() common.Address {
	return o.identity
}

// RequestRandomness asks the coordinator for a fresh draw
func (o *HTTPOracle) RequestRandomness(ctx context.Context) (common.Hash, error) {
	body, _ := json.Marshal(requestRandomnessRequest{CallbackURL: o.callbackURL})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/randomness", bytes.NewReader(body))
	if err != nil {
		return common.Hash{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := o.client.Do(req)
	if err != nil {
		return common.Hash{}, fmt.Errorf("oracle request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return common.Hash{}, fmt.Errorf("oracle request http %d", res.StatusCode)
	}

	var out requestRandomnessResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return common.Hash{}, fmt.Errorf("oracle response: %w", err)
	}

	return common.HexToHash(out.RequestID), nil
}
