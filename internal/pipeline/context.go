// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import "context"

type ctxKey int

const (
	skipAuthRejectionKey ctxKey = iota
	anonymousKey
)

// SkipAuthRejection marks requests made with ctx as exempt from credential
// rejection handling. Logout uses it: the session is being torn down anyway.
func SkipAuthRejection(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipAuthRejectionKey, true)
}

// Anonymous marks requests made with ctx to be sent without a credential even
// when one is stored. Login and registration must not present an old token.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey, true)
}

func authRejectionSkipped(ctx context.Context) bool {
	v, _ := ctx.Value(skipAuthRejectionKey).(bool)
	return v
}

func anonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey).(bool)
	return v
}
