// Package captcha calls the third-party human-verification endpoint. The
// service answers a single question: did a human produce this response token?
package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-blog-app/internal/apperr"
	"go-blog-app/internal/config"
)

// Verifier checks challenge response tokens against the verification endpoint.
type Verifier struct {
	secret    string
	verifyURL string
	client    *http.Client
}

// New creates a Verifier from configuration.
func New(cfg config.CaptchaConfig) *Verifier {
	return &Verifier{
		secret:    cfg.SecretKey,
		verifyURL: cfg.VerifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// verifyResponse is the subset of the endpoint's JSON answer we care about.
type verifyResponse struct {
	Success bool `json:"success"`
}

// Verify form-posts the response token to the verification endpoint and
// returns its boolean verdict. Transport and decoding failures are
// verification errors, not storage errors: an unreachable oracle means
// "not verified".
func (v *Verifier) Verify(ctx context.Context, responseToken string) (bool, error) {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", responseToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return false, &apperr.Error{Kind: apperr.KindVerification, Message: "building verification request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, &apperr.Error{Kind: apperr.KindVerification, Message: "calling verification endpoint", Err: err}
	}
	defer resp.Body.Close()

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, &apperr.Error{Kind: apperr.KindVerification, Message: "decoding verification response", Err: err}
	}
	return result.Success, nil
}
