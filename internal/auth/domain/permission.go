package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/credstore/internal/errors"
)

// PermissionOperation is a capability checked per path per actor.
type PermissionOperation string

const (
	OperationRead     PermissionOperation = "read"
	OperationWrite    PermissionOperation = "write"
	OperationDelete   PermissionOperation = "delete"
	OperationReadACL  PermissionOperation = "read_acl"
	OperationWriteACL PermissionOperation = "write_acl"
)

// ParsePermissionOperation converts s into a PermissionOperation.
func ParsePermissionOperation(s string) (PermissionOperation, error) {
	switch op := PermissionOperation(s); op {
	case OperationRead, OperationWrite, OperationDelete, OperationReadACL, OperationWriteACL:
		return op, nil
	default:
		return "", apperrors.Wrapf(ErrInvalidOperation, "%q", s)
	}
}

// PermissionEntry grants Operations on every credential matching Path to Actor.
type PermissionEntry struct {
	ID         uuid.UUID
	Actor      string
	Path       string
	Operations []PermissionOperation
	CreatedAt  time.Time
}

// Allows reports whether the entry grants op on path.
func (p *PermissionEntry) Allows(path string, op PermissionOperation) bool {
	if path == "" || op == "" {
		return false
	}
	return matchPath(p.Path, path) && slices.Contains(p.Operations, op)
}

// matchPath checks if the request path matches the permission path pattern.
// Supports three types of wildcards:
//  1. Full wildcard: "*" matches any path
//  2. Trailing wildcard: "prefix/*" matches any path starting with "prefix/" (greedy)
//  3. Mid-path wildcard: "/team/*/db" matches paths with * as single segment
//
// Credential names are case-insensitive, so matching is too.
func matchPath(pattern, requestPath string) bool {
	if pattern == "*" {
		return true
	}

	pattern = strings.ToLower(pattern)
	requestPath = strings.ToLower(requestPath)

	if !strings.Contains(pattern, "*") {
		return pattern == requestPath
	}

	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		return strings.HasPrefix(requestPath, prefix+"/")
	}

	patternParts := strings.Split(pattern, "/")
	requestParts := strings.Split(requestPath, "/")
	if len(patternParts) != len(requestParts) {
		return false
	}
	for i := range patternParts {
		if patternParts[i] != "*" && patternParts[i] != requestParts[i] {
			return false
		}
	}
	return true
}
