// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

import (
	"fmt"

	"github.com/ChainSafe/subclient/pkg/errkind"
)

// All errors wrap errkind.ErrCodec.
var (
	ErrUnknownType        = fmt.Errorf("%w: unknown type id", errkind.ErrCodec)
	ErrUnknownVariant     = fmt.Errorf("%w: unknown variant", errkind.ErrCodec)
	ErrTypeMismatch       = fmt.Errorf("%w: value does not match type", errkind.ErrCodec)
	ErrOutOfRange         = fmt.Errorf("%w: integer out of range", errkind.ErrCodec)
	ErrLengthMismatch     = fmt.Errorf("%w: length mismatch", errkind.ErrCodec)
	ErrMissingField       = fmt.Errorf("%w: missing field", errkind.ErrCodec)
	ErrUnexpectedField    = fmt.Errorf("%w: unexpected field", errkind.ErrCodec)
	ErrRecursionLimit     = fmt.Errorf("%w: type nesting too deep", errkind.ErrCodec)
	ErrInvalidChar        = fmt.Errorf("%w: invalid char", errkind.ErrCodec)
	ErrUnknownTypeDefKind = fmt.Errorf("%w: unknown type definition kind", errkind.ErrCodec)
)
