// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"fmt"

	"github.com/ChainSafe/subclient/lib/common"
	"github.com/ChainSafe/subclient/lib/metadata"
)

// Hash applies the storage hasher to the encoded key parameter.
// Concat hashers append the input to the digest.
func Hash(hasher metadata.Hasher, data []byte) ([]byte, error) {
	switch hasher {
	case metadata.Blake2_128:
		return common.Blake2b128(data), nil
	case metadata.Blake2_256:
		return common.Blake2b256(data).ToBytes(), nil
	case metadata.Blake2_128Concat:
		return append(common.Blake2b128(data), data...), nil
	case metadata.Twox128:
		return common.Twox128(data), nil
	case metadata.Twox256:
		return common.Twox256(data), nil
	case metadata.Twox64Concat:
		return append(common.Twox64(data), data...), nil
	case metadata.Identity:
		return append([]byte{}, data...), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownHasher, hasher)
	}
}

// Transparent tells if the hashed key ends with the plain encoded parameter.
func Transparent(hasher metadata.Hasher) bool {
	switch hasher {
	case metadata.Blake2_128Concat, metadata.Twox64Concat, metadata.Identity:
		return true
	default:
		return false
	}
}

// digestLen returns the digest length preceding the parameter of a transparent hasher.
func digestLen(hasher metadata.Hasher) int {
	switch hasher {
	case metadata.Blake2_128Concat:
		return 16
	case metadata.Twox64Concat:
		return 8
	default:
		return 0
	}
}
