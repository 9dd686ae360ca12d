// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package crypto

import (
	"fmt"

	"github.com/ChainSafe/subclient/pkg/errkind"
)

var (
	// ErrInvalidKeyLength is returned for key material of the wrong size.
	ErrInvalidKeyLength = fmt.Errorf("%w: invalid key length", errkind.ErrInvalidKey)
	// ErrInvalidMnemonic is returned for a mnemonic failing its checksum.
	ErrInvalidMnemonic = fmt.Errorf("%w: invalid mnemonic", errkind.ErrInvalidKey)
	// ErrInvalidSignatureLength is returned for signatures of the wrong size.
	ErrInvalidSignatureLength = fmt.Errorf("%w: invalid signature length", errkind.ErrSigning)
	// ErrSigningFailed is returned when the signer fails.
	ErrSigningFailed = fmt.Errorf("%w: signing failed", errkind.ErrSigning)
	// ErrSignatureVerificationFailed is returned when a signature does not verify.
	ErrSignatureVerificationFailed = fmt.Errorf("%w: failed to verify signature", errkind.ErrSigning)
)
