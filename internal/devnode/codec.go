// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package devnode

import (
	"net/http"
	"strings"

	gorillarpc "github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
)

// methodAliases maps alternative spellings to canonical method names.
var methodAliases = map[string]string{
	"chain_getFinalisedHead":          "chain_getFinalizedHead",
	"chain_subscribeFinalisedHeads":   "chain_subscribeFinalizedHeads",
	"chain_unsubscribeFinalisedHeads": "chain_unsubscribeFinalizedHeads",
	"chain_getHead":                   "chain_getBlockHash",
	"account_nextIndex":               "system_accountNextIndex",
}

func canonicalMethod(method string) string {
	if alias, ok := methodAliases[method]; ok {
		return alias
	}
	return method
}

// serviceMethod converts a module_methodName JSON-RPC method to the
// module.MethodName form of registered services.
func serviceMethod(method string) string {
	module, name, found := strings.Cut(canonicalMethod(method), "_")
	if !found || name == "" {
		return method
	}
	return module + "." + strings.ToUpper(name[:1]) + name[1:]
}

// methodCodec is the JSON-RPC 2.0 codec with Substrate method names.
type methodCodec struct {
	*json2.Codec
}

func newMethodCodec() *methodCodec {
	return &methodCodec{Codec: json2.NewCodec()}
}

func (c *methodCodec) NewRequest(r *http.Request) gorillarpc.CodecRequest {
	return &methodRequest{CodecRequest: c.Codec.NewRequest(r)}
}

type methodRequest struct {
	gorillarpc.CodecRequest
}

func (r *methodRequest) Method() (string, error) {
	method, err := r.CodecRequest.Method()
	if err != nil {
		return "", err
	}
	return serviceMethod(method), nil
}
