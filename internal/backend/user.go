// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "insightst/cli/internal/errors"
)

const msgIdentityFailed = "Could not load your account"

// Identity is the account record bound to a token. It is an immutable
// snapshot: a refresh replaces it wholesale.
type Identity struct {
	ID    string
	Name  string
	Email string
	Admin bool
	// Profile holds every other field the service returned.
	Profile map[string]any
}

// UnmarshalJSON accepts numeric or string ids and keeps unknown fields in Profile.
func (i *Identity) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	out := Identity{Profile: map[string]any{}}
	for k, v := range raw {
		switch k {
		case "id", "user_id":
			if out.ID == "" {
				out.ID = scalarString(v)
			}
		case "name":
			out.Name, _ = v.(string)
		case "email":
			out.Email, _ = v.(string)
		case "admin":
			out.Admin, _ = v.(bool)
		default:
			out.Profile[k] = v
		}
	}
	*i = out
	return nil
}

// Account returns the most readable identifier: email, then name, then id.
func (i *Identity) Account() string {
	if i == nil {
		return ""
	}
	for _, v := range []string{i.Email, i.Name, i.ID} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// Me calls GET on the identity route with the stored credential.
func (h *HTTP) Me(ctx context.Context) (*Identity, error) {
	var id Identity
	if err := h.pl.Do(ctx, http.MethodGet, h.endpoints.Me, nil, &id); err != nil {
		return nil, normalize(err, msgIdentityFailed, true)
	}
	if id.Account() == "" {
		return nil, apperrors.New(apperrors.Transport, msgIdentityFailed)
	}
	return &id, nil
}
