// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"

	apperrors "insightst/cli/internal/errors"
)

// PresentError formats an error for user display with masking. Typed errors
// show only their message; anything else is shown masked.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	if msg := apperrors.UserMessage(err, ""); msg != "" {
		return fmt.Sprintf("%s: %s", context, msg)
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}
