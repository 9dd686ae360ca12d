// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package scale

import (
	"fmt"

	"github.com/ChainSafe/subclient/pkg/errkind"
)

// All errors wrap errkind.ErrCodec.
var (
	ErrUnsupportedType        = fmt.Errorf("%w: unsupported type", errkind.ErrCodec)
	ErrUnsupportedDestination = fmt.Errorf("%w: destination must be a non nil pointer", errkind.ErrCodec)
	ErrTruncated              = fmt.Errorf("%w: unexpected end of input", errkind.ErrCodec)
	ErrInvalidOptionByte      = fmt.Errorf("%w: invalid option byte", errkind.ErrCodec)
	ErrInvalidBoolByte        = fmt.Errorf("%w: invalid bool byte", errkind.ErrCodec)
	ErrNegativeCompact        = fmt.Errorf("%w: compact integer is negative", errkind.ErrCodec)
	ErrCompactTooLarge        = fmt.Errorf("%w: compact integer is too large", errkind.ErrCodec)
	ErrLengthTooLarge         = fmt.Errorf("%w: length exceeds remaining input", errkind.ErrCodec)
)
