/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package codec

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// ClipKey returns a stable, filesystem-safe fingerprint for a clip locator.
// Used to name cached downloads.
func ClipKey(locator string) string {
	sum := blake2b.Sum256([]byte(locator))
	return "KM-" + hex.EncodeToString(sum[:16])
}
