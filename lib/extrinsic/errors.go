// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package extrinsic

import (
	"fmt"

	"github.com/ChainSafe/subclient/pkg/errkind"
)

var (
	ErrMissingParam  = fmt.Errorf("%w: missing parameter", errkind.ErrInvalidCall)
	ErrUnknownParam  = fmt.Errorf("%w: unknown parameter", errkind.ErrInvalidCall)
	ErrParamEncoding = fmt.Errorf("%w: cannot encode parameter", errkind.ErrInvalidCall)

	ErrUnsupportedScheme    = fmt.Errorf("%w: key scheme not supported by the chain", errkind.ErrSigning)
	ErrSignatureLength      = fmt.Errorf("%w: signature length", errkind.ErrSigning)
	ErrUnsupportedExtension = fmt.Errorf("%w: unsupported signed extension", errkind.ErrSigning)

	ErrInvalidEra         = fmt.Errorf("%w: invalid era", errkind.ErrCodec)
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported extrinsic version", errkind.ErrCodec)
	ErrLengthPrefix       = fmt.Errorf("%w: extrinsic length prefix mismatch", errkind.ErrCodec)
	ErrTrailingBytes      = fmt.Errorf("%w: trailing bytes after call", errkind.ErrCodec)
)
