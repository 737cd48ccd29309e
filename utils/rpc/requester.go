// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rpc is the JSON-RPC 2.0 client plumbing shared by every endpoint
// client of the node API.
package rpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	rpc "github.com/gorilla/rpc/v2/json2"
)

var _ EndpointRequester = (*endpointRequester)(nil)

// EndpointRequester issues JSON-RPC 2.0 calls against one service of a node
// endpoint.
type EndpointRequester interface {
	SendRequest(ctx context.Context, method string, params interface{}, reply interface{}, options ...Option) error
}

type endpointRequester struct {
	client   *http.Client
	uri      string
	endpoint string
	base     string
}

func NewEndpointRequester(uri, endpoint, base string) EndpointRequester {
	return NewEndpointRequesterWithTimeout(uri, endpoint, base, 0)
}

// NewEndpointRequesterWithTimeout bounds every request by [timeout] in
// addition to any per-call context deadline. Zero disables the bound.
func NewEndpointRequesterWithTimeout(uri, endpoint, base string, timeout time.Duration) EndpointRequester {
	return &endpointRequester{
		client:   &http.Client{Timeout: timeout},
		uri:      uri,
		endpoint: endpoint,
		base:     base,
	}
}

func (e *endpointRequester) SendRequest(
	ctx context.Context,
	method string,
	params interface{},
	reply interface{},
	options ...Option,
) error {
	ops := NewOptions(options)
	return e.sendJSONRPCRequest(
		ctx,
		ops.Headers(),
		ops.QueryParams(),
		fmt.Sprintf("%s.%s", e.base, method),
		params,
		reply,
	)
}

func (e *endpointRequester) sendJSONRPCRequest(
	ctx context.Context,
	headers http.Header,
	queryParams url.Values,
	method string,
	params interface{},
	reply interface{},
) error {
	requestBodyBytes, err := rpc.EncodeClientRequest(method, params)
	if err != nil {
		return fmt.Errorf("failed to encode params for method %q: %w", method, err)
	}

	queryParamsStr := queryParams.Encode()
	if len(queryParamsStr) > 0 {
		queryParamsStr = "?" + queryParamsStr
	}

	url := fmt.Sprintf("%s%s%s", e.uri, e.endpoint, queryParamsStr)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", url, err)
	}

	req.Header = headers
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to issue request to %s: %w", url, err)
	}
	defer cleanlyCloseBody(resp.Body)

	// Return an error for any non successful status code
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("received status code %d", resp.StatusCode)
	}

	return rpc.DecodeClientResponse(resp.Body, reply)
}

// cleanlyCloseBody reads the body to completion before closing so that the
// underlying connection can be reused.
func cleanlyCloseBody(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
