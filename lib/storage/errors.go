// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"fmt"

	"github.com/ChainSafe/subclient/pkg/errkind"
)

var (
	ErrParamCount    = fmt.Errorf("%w: wrong number of storage key parameters", errkind.ErrInvalidParams)
	ErrParamEncoding = fmt.Errorf("%w: cannot encode storage key parameter", errkind.ErrInvalidParams)
	ErrUnknownHasher = fmt.Errorf("%w: unknown storage hasher", errkind.ErrInvalidParams)
	ErrKeyType       = fmt.Errorf("%w: key type does not match hashers", errkind.ErrMetadataParse)
)
