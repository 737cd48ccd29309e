// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"errors"

	"github.com/gorilla/rpc/v2/json2"

	"github.com/veilnet-labs/veilclient/verrs"
)

var (
	errRPCConnection  = verrs.New(verrs.CodeRPCConnection, "node request failed")
	errRPCDeserialize = verrs.New(verrs.CodeRPCDeserialize, "node response deserialization failed")
	errRPCStatus      = verrs.New(verrs.CodeRPCStatus, "node rejected request")
)

// wrapRequestErr splits transport failures (retryable) from explicit node
// rejections (not retryable).
func wrapRequestErr(err error) error {
	if err == nil {
		return nil
	}
	var jsonErr *json2.Error
	if errors.As(err, &jsonErr) {
		return errRPCStatus.WithCause(err)
	}
	return errRPCConnection.WithCause(err)
}
