package apiclient

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RawMessage is an undecoded JSON payload.
type RawMessage = jsoniter.RawMessage
