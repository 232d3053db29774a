package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sustaingain/backend/usecase"
)

// PhotoVerifier classifies completion photos against a remote inference
// endpoint. A label overlapping the task title or category counts as a
// match.
type PhotoVerifier struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

func NewPhotoVerifier(baseURL string, timeout time.Duration, logger *zap.Logger) *PhotoVerifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoVerifier{
		client:  &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		baseURL: baseURL,
		timeout: timeout,
		logger:  logger,
	}
}

type classifyRequest struct {
	PhotoRef string `json:"photo_ref"`
}

type classifyResponse struct {
	Labels []string `json:"labels"`
}

// Classify asks the inference service for labels and matches them against
// the task's title and category words.
func (v *PhotoVerifier) Classify(_ context.Context, photoRef, taskTitle, category string) (string, bool, error) {
	body, err := json.Marshal(classifyRequest{PhotoRef: photoRef})
	if err != nil {
		return "", false, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(v.baseURL + "/classify")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := v.client.DoTimeout(req, resp, v.timeout); err != nil {
		return "", false, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", false, fmt.Errorf("verifier returned status %d", resp.StatusCode())
	}

	var parsed classifyResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", false, err
	}

	expectation := strings.ToLower(taskTitle + " " + category)
	for _, label := range parsed.Labels {
		for _, word := range strings.Fields(strings.ToLower(label)) {
			if len(word) >= 4 && strings.Contains(expectation, word) {
				return label, true, nil
			}
		}
	}
	if len(parsed.Labels) > 0 {
		return parsed.Labels[0], false, nil
	}
	return "", false, nil
}

var _ usecase.PhotoVerifier = (*PhotoVerifier)(nil)
