// Package serverless runs the HTTP handler tree behind AWS API Gateway HTTP APIs.
package serverless

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

// Adapter translates API Gateway payload v2 events into http.Handler calls.
type Adapter struct {
	handler http.Handler
}

// NewAdapter wraps handler.
func NewAdapter(handler http.Handler) *Adapter {
	return &Adapter{handler: handler}
}

// Start hands control to the Lambda runtime. It does not return.
func (a *Adapter) Start() {
	lambda.Start(a.Handle)
}

// Handle serves one API Gateway event.
func (a *Adapter) Handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	req, err := newRequest(ctx, event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	rw := newBufferedResponse()
	a.handler.ServeHTTP(rw, req)

	return rw.toEvent(), nil
}

func newRequest(ctx context.Context, event events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("decode base64 body: %w", err)
		}
		body = decoded
	}

	// RawPath arrives percent-encoded; the request context path is decoded.
	target := &url.URL{Path: event.RequestContext.HTTP.Path, RawQuery: event.RawQueryString}
	if event.RawPath != "" {
		path, err := url.PathUnescape(event.RawPath)
		if err != nil {
			return nil, fmt.Errorf("unescape path %q: %w", event.RawPath, err)
		}
		target.Path = path
		target.RawPath = event.RawPath
	}

	method := event.RequestContext.HTTP.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for key, value := range event.Headers {
		req.Header.Set(key, value)
	}
	if len(event.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(event.Cookies, "; "))
	}
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}
	if ip := event.RequestContext.HTTP.SourceIP; ip != "" {
		req.RemoteAddr = ip + ":0"
	}
	req.ContentLength = int64(len(body))

	return req, nil
}

type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header)}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) toEvent() events.APIGatewayV2HTTPResponse {
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}

	headers := make(map[string]string, len(b.header))
	var cookies []string
	for key, values := range b.header {
		if key == "Set-Cookie" {
			cookies = append(cookies, values...)
			continue
		}
		headers[key] = strings.Join(values, ",")
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Cookies:    cookies,
		Body:       b.body.String(),
	}
}
