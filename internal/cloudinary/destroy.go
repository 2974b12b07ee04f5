package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

type destroyResponse struct {
	Result string `json:"result"`
}

// DeleteFile removes an asset with a signed destroy call. It runs only on
// the server, where the API secret is available.
func (c *Client) DeleteFile(ctx context.Context, resourceType ResourceType, publicID string) error {
	if c.apiKey == "" || c.apiSecret == "" {
		return ErrDeletionNotConfigured
	}
	if publicID == "" {
		return &ValidationError{Field: "public_id", Message: "is required"}
	}
	if resourceType == "" || resourceType == ResourceAuto {
		resourceType = ResourceImage
	}
	if !resourceType.Valid() {
		return &ValidationError{Field: "resource_type", Message: fmt.Sprintf("unknown resource type %q", resourceType)}
	}

	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("api_key", c.apiKey)
	form.Set("signature", sign(params, c.apiSecret))

	endpoint := fmt.Sprintf("%s/v1_1/%s/%s/destroy", c.apiBaseURL, c.cloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "delete file", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "read delete response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var hostErr hostErrorBody
		_ = json.Unmarshal(body, &hostErr)
		msg := hostErr.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("delete failed with status %d", resp.StatusCode)
		}
		return newHostError(resp.StatusCode, msg)
	}

	var result destroyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return newHostError(resp.StatusCode, fmt.Sprintf("failed to decode delete response: %v", err))
	}
	if result.Result != "ok" {
		return newHostError(resp.StatusCode, fmt.Sprintf("delete of %s returned %q", publicID, result.Result))
	}
	return nil
}

// sign produces the host's request signature: the sorted key=value pairs
// joined with '&', followed by the secret, hashed with SHA-1.
func sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
