// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/ChainSafe/subclient/pkg/errkind"
)

var (
	ErrBadMagic           = fmt.Errorf("%w: missing metadata magic prefix", errkind.ErrMetadataParse)
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported metadata version", errkind.ErrMetadataParse)
	ErrInvalidStructure   = fmt.Errorf("%w: invalid structure", errkind.ErrMetadataParse)

	ErrPalletNotFound   = fmt.Errorf("%w: pallet", errkind.ErrNotFound)
	ErrConstantNotFound = fmt.Errorf("%w: constant", errkind.ErrNotFound)
	ErrStorageNotFound  = fmt.Errorf("%w: storage function", errkind.ErrNotFound)
	ErrCallNotFound     = fmt.Errorf("%w: call function", errkind.ErrNotFound)
	ErrEventNotFound    = fmt.Errorf("%w: event", errkind.ErrNotFound)
)
