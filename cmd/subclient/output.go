// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ChainSafe/subclient/lib/codec"
	"github.com/ChainSafe/subclient/lib/common"
)

// jsonValue converts a decoded value for JSON output: byte slices as hex,
// variants as a single key object or their name when they have no value.
func jsonValue(value any) any {
	switch v := value.(type) {
	case []byte:
		return common.BytesToHex(v)
	case codec.Variant:
		if v.Value == nil {
			return v.Name
		}
		return map[string]any{v.Name: jsonValue(v.Value)}
	case map[string]any:
		converted := make(map[string]any, len(v))
		for key, field := range v {
			converted[key] = jsonValue(field)
		}
		return converted
	case []any:
		converted := make([]any, len(v))
		for i, element := range v {
			converted[i] = jsonValue(element)
		}
		return converted
	default:
		return v
	}
}

func printJSON(w io.Writer, value any) error {
	encoded, err := json.MarshalIndent(jsonValue(value), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
